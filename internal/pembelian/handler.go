package pembelian

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/garasi-erp/garasi-erp/internal/platform/httpx"
	"github.com/garasi-erp/garasi-erp/internal/shared"
)

// Handler wires HTTP endpoints for purchases.
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
		r.Put("/", h.update)
		r.Delete("/", h.delete)
		r.Get("/price-histories", h.priceHistories)
		r.Post("/revisions", h.revise)
	})
}

type fundingRequest struct {
	CompanyID int64 `json:"company_id" validate:"required,gt=0"`
	Amount    int64 `json:"amount" validate:"required,gt=0"`
}

type upsertRequest struct {
	Tanggal      string           `json:"tanggal" validate:"required"`
	Cabang       string           `json:"cabang"`
	JenisMotorID int64            `json:"jenis_motor_id" validate:"required,gt=0"`
	Tahun        int              `json:"tahun" validate:"required,gte=1970"`
	Warna        string           `json:"warna"`
	Plat         string           `json:"plat" validate:"required"`
	HargaBeli    int64            `json:"harga_beli" validate:"required,gt=0"`
	Funding      []fundingRequest `json:"funding" validate:"required,min=1,max=2,dive"`
}

func (req upsertRequest) toCreateInput() (CreateInput, error) {
	tanggal, err := shared.ParseDisplayDate(req.Tanggal)
	if err != nil {
		return CreateInput{}, err
	}
	input := CreateInput{
		Tanggal:      tanggal,
		Cabang:       req.Cabang,
		JenisMotorID: req.JenisMotorID,
		Tahun:        req.Tahun,
		Warna:        req.Warna,
		Plat:         req.Plat,
		HargaBeli:    req.HargaBeli,
	}
	for _, f := range req.Funding {
		input.Funding = append(input.Funding, FundingSplit{CompanyID: f.CompanyID, Amount: f.Amount})
	}
	return input, nil
}

type reviseRequest struct {
	Tanggal    string `json:"tanggal"`
	CompanyID  int64  `json:"company_id" validate:"required,gt=0"`
	BiayaPajak int64  `json:"biaya_pajak"`
	BiayaQC    int64  `json:"biaya_qc"`
	BiayaLain  int64  `json:"biaya_lain"`
	Reason     string `json:"reason" validate:"required"`
}

type listResponse struct {
	Data       []Pembelian       `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		Cabang: q.Get("cabang"),
		Search: q.Get("search"),
	}
	if raw := q.Get("status"); raw != "" {
		status, err := ParseStatus(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unknown status")
			return
		}
		filter.Status = status
	}
	filter.JenisMotorID, _ = strconv.ParseInt(q.Get("jenis_motor_id"), 10, 64)
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	items, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list pembelian", slog.Any("error", err))
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
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, "get pembelian", err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
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
	input, err := req.toCreateInput()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid tanggal")
		return
	}
	p, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondErr(w, "create pembelian", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
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
	input, err := req.toCreateInput()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid tanggal")
		return
	}
	p, err := h.service.Update(r.Context(), id, UpdateInput{
		Tanggal:      input.Tanggal,
		Cabang:       input.Cabang,
		JenisMotorID: input.JenisMotorID,
		Tahun:        input.Tahun,
		Warna:        input.Warna,
		Plat:         input.Plat,
		HargaBeli:    input.HargaBeli,
		Funding:      input.Funding,
	})
	if err != nil {
		h.respondErr(w, "update pembelian", err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondErr(w, "delete pembelian", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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

func (h *Handler) revise(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	var req reviseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := ReviseInput{
		CompanyID:  req.CompanyID,
		BiayaPajak: req.BiayaPajak,
		BiayaQC:    req.BiayaQC,
		BiayaLain:  req.BiayaLain,
		Reason:     req.Reason,
	}
	if req.Tanggal != "" {
		t, err := shared.ParseDisplayDate(req.Tanggal)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid tanggal")
			return
		}
		input.Tanggal = t
	}
	p, err := h.service.ReviseCost(r.Context(), id, input)
	if err != nil {
		h.respondErr(w, "revise pembelian", err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, shared.ErrCompanyNotFound), errors.Is(err, shared.ErrJenisMotorNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", shared.UserSafeMessage(err))
	case errors.Is(err, ErrReferenced):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrFundingMismatch),
		errors.Is(err, ErrReasonRequired),
		errors.Is(err, ErrZeroDelta),
		errors.Is(err, ErrNegativeFinal):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
