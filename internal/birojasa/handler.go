package birojasa

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/garasi-erp/garasi-erp/internal/platform/httpx"
	"github.com/garasi-erp/garasi-erp/internal/shared"
)

// Handler wires HTTP endpoints for biro jasa cases.
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
		r.Post("/vendor-dp", h.vendorDP)
		r.Post("/cicilan", h.addCicilan)
		r.Get("/cicilan", h.listCicilan)
		r.Post("/cancel", h.cancel)
	})
}

type createRequest struct {
	Tanggal         string `json:"tanggal" validate:"required"`
	JenisPengurusan string `json:"jenis_pengurusan" validate:"required"`
	NamaCustomer    string `json:"nama_customer" validate:"required"`
	Plat            string `json:"plat"`
	Merk            string `json:"merk"`
	Tahun           int    `json:"tahun"`
	Warna           string `json:"warna"`
	CompanyID       int64  `json:"company_id" validate:"required,gt=0"`
	EstimasiBiaya   int64  `json:"estimasi_biaya" validate:"required,gt=0"`
	DP              int64  `json:"dp" validate:"gte=0"`
}

type updateRequest struct {
	Tanggal         string `json:"tanggal"`
	JenisPengurusan string `json:"jenis_pengurusan" validate:"required"`
	NamaCustomer    string `json:"nama_customer" validate:"required"`
	Plat            string `json:"plat"`
	Merk            string `json:"merk"`
	Tahun           int    `json:"tahun"`
	Warna           string `json:"warna"`
}

type paymentRequest struct {
	Tanggal    string `json:"tanggal"`
	Jumlah     int64  `json:"jumlah" validate:"required,gt=0"`
	Keterangan string `json:"keterangan"`
}

type listResponse struct {
	Data       []Case            `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter ListFilter
	if raw := q.Get("status"); raw != "" {
		status, err := ParseStatus(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unknown status")
			return
		}
		filter.Status = status
	}
	filter.Search = q.Get("search")
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	items, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list biro jasa", slog.Any("error", err))
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
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, "get biro jasa", err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	tanggal, err := shared.ParseDisplayDate(req.Tanggal)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid tanggal")
		return
	}
	c, err := h.service.Create(r.Context(), CreateInput{
		Tanggal:         tanggal,
		JenisPengurusan: req.JenisPengurusan,
		NamaCustomer:    req.NamaCustomer,
		Plat:            req.Plat,
		Merk:            req.Merk,
		Tahun:           req.Tahun,
		Warna:           req.Warna,
		CompanyID:       req.CompanyID,
		EstimasiBiaya:   req.EstimasiBiaya,
		DP:              req.DP,
	})
	if err != nil {
		h.respondErr(w, "create biro jasa", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := UpdateInput{
		JenisPengurusan: req.JenisPengurusan,
		NamaCustomer:    req.NamaCustomer,
		Plat:            req.Plat,
		Merk:            req.Merk,
		Tahun:           req.Tahun,
		Warna:           req.Warna,
	}
	if req.Tanggal != "" {
		t, err := shared.ParseDisplayDate(req.Tanggal)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid tanggal")
			return
		}
		input.Tanggal = t
	}
	c, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.respondErr(w, "update biro jasa", err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondErr(w, "delete biro jasa", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) vendorDP(w http.ResponseWriter, r *http.Request) {
	h.payment(w, r, "vendor dp biro jasa", h.service.VendorDP)
}

func (h *Handler) addCicilan(w http.ResponseWriter, r *http.Request) {
	h.payment(w, r, "cicilan biro jasa", h.service.AddCicilan)
}

func (h *Handler) payment(w http.ResponseWriter, r *http.Request, op string, fn func(ctx context.Context, id int64, input PaymentInput) (Case, error)) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	var req paymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := PaymentInput{Jumlah: req.Jumlah, Keterangan: req.Keterangan}
	if req.Tanggal != "" {
		t, err := shared.ParseDisplayDate(req.Tanggal)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid tanggal")
			return
		}
		input.Tanggal = t
	}
	c, err := fn(r.Context(), id, input)
	if err != nil {
		h.respondErr(w, op, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) listCicilan(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	cicilans, err := h.service.Cicilans(r.Context(), id)
	if err != nil {
		h.respondErr(w, "list cicilan", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": cicilans})
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	c, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		h.respondErr(w, "cancel biro jasa", err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, shared.ErrCompanyNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", shared.UserSafeMessage(err))
	case errors.Is(err, ErrCaseClosed), errors.Is(err, ErrIllegalTransition):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrDPExceedsEstimate):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
