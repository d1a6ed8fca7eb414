package penjualan

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/garasi-erp/garasi-erp/internal/pembelian"
	"github.com/garasi-erp/garasi-erp/internal/platform/httpx"
	"github.com/garasi-erp/garasi-erp/internal/shared"
)

// Handler wires HTTP endpoints for sales.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Put("/", h.edit)
		r.Delete("/", h.delete)
		r.Post("/cancel", h.cancel)
		r.Post("/adjustments", h.adjust)
		r.Get("/price-histories", h.priceHistories)
	})
}

type upsertRequest struct {
	Tanggal          string `json:"tanggal" validate:"required"`
	PembelianID      int64  `json:"pembelian_id" validate:"required,gt=0"`
	CompanyID        int64  `json:"company_id" validate:"required,gt=0"`
	HargaJual        int64  `json:"harga_jual" validate:"required,gt=0"`
	MetodePembayaran string `json:"metode_pembayaran" validate:"required,oneof=cash_penuh cash_bertahap kredit"`
	DP               int64  `json:"dp" validate:"gte=0"`
	SubsidiOngkir    int64  `json:"subsidi_ongkir" validate:"gte=0"`
	TitipOngkir      int64  `json:"titip_ongkir" validate:"gte=0"`
}

func (req upsertRequest) toInput() (CreateInput, error) {
	tanggal, err := shared.ParseDisplayDate(req.Tanggal)
	if err != nil {
		return CreateInput{}, err
	}
	return CreateInput{
		Tanggal:          tanggal,
		PembelianID:      req.PembelianID,
		CompanyID:        req.CompanyID,
		HargaJual:        req.HargaJual,
		MetodePembayaran: PaymentMethod(req.MetodePembayaran),
		DP:               req.DP,
		SubsidiOngkir:    req.SubsidiOngkir,
		TitipOngkir:      req.TitipOngkir,
	}, nil
}

type cancelRequest struct {
	Policy  string `json:"policy" validate:"required,oneof=full_forfeit partial_refund"`
	Refund  int64  `json:"refund" validate:"gte=0"`
	Tanggal string `json:"tanggal"`
}

type adjustRequest struct {
	Jenis   string `json:"jenis" validate:"required,oneof=tambah kurang"`
	Amount  int64  `json:"amount" validate:"required,gt=0"`
	Reason  string `json:"reason" validate:"required"`
	Tanggal string `json:"tanggal"`
}

type listResponse struct {
	Data       []Sale            `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter ListFilter
	if raw := q.Get("status"); raw != "" {
		status, err := ParseStatus(raw)
		if err != nil {
			// listing also accepts the UI labels
			status, err = ParseStatusLabel(raw)
			if err != nil {
				httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unknown status")
				return
			}
		}
		filter.Status = status
	}
	filter.CompanyID, _ = strconv.ParseInt(q.Get("company_id"), 10, 64)
	filter.PembelianID, _ = strconv.ParseInt(q.Get("pembelian_id"), 10, 64)
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	if from := q.Get("from"); from != "" {
		t, err := shared.ParseDisplayDate(from)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid from date")
			return
		}
		filter.From = t
	}
	if to := q.Get("to"); to != "" {
		t, err := shared.ParseDisplayDate(to)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid to date")
			return
		}
		filter.To = t
	}

	items, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list penjualan", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	httpx.JSON(w, http.StatusOK, listResponse{
		Data:       items,
		Pagination: shared.NewPagination(filter.Page, filter.Limit, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	sale, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, "get penjualan", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input, err := req.toInput()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid tanggal")
		return
	}
	sale, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondErr(w, "create penjualan", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	var req upsertRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input, err := req.toInput()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid tanggal")
		return
	}
	sale, err := h.service.Edit(r.Context(), id, input)
	if err != nil {
		h.respondErr(w, "edit penjualan", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondErr(w, "delete penjualan", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	var req cancelRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := CancelInput{Policy: CancelPolicy(req.Policy), Refund: req.Refund}
	if req.Tanggal != "" {
		t, err := shared.ParseDisplayDate(req.Tanggal)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid tanggal")
			return
		}
		input.Tanggal = t
	}
	sale, err := h.service.CancelDP(r.Context(), id, input)
	if err != nil {
		h.respondErr(w, "cancel penjualan", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	var req adjustRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := AdjustInput{Jenis: AdjustmentKind(req.Jenis), Amount: req.Amount, Reason: req.Reason}
	if req.Tanggal != "" {
		t, err := shared.ParseDisplayDate(req.Tanggal)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid tanggal")
			return
		}
		input.Tanggal = t
	}
	sale, err := h.service.AdjustSoldPrice(r.Context(), id, input)
	if err != nil {
		h.respondErr(w, "adjust penjualan", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) priceHistories(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	histories, err := h.service.PriceHistories(r.Context(), id)
	if err != nil {
		h.respondErr(w, "list price histories", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": histories})
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, pembelian.ErrNotFound),
		errors.Is(err, shared.ErrCompanyNotFound),
		errors.Is(err, shared.ErrJenisMotorNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", shared.UserSafeMessage(err))
	case errors.Is(err, ErrUnitUnavailable),
		errors.Is(err, ErrNotEditable),
		errors.Is(err, ErrIllegalTransition),
		errors.Is(err, pembelian.ErrIllegalTransition):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrAdjustNotAllowed),
		errors.Is(err, ErrDecreaseExceedsCap),
		errors.Is(err, ErrRefundExceedsDP),
		errors.Is(err, ErrInvalidPolicy):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
