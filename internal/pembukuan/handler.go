package pembukuan

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/garasi-erp/garasi-erp/internal/platform/httpx"
	"github.com/garasi-erp/garasi-erp/internal/shared"
)

// Handler wires HTTP endpoints for the ledger.
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
	r.Post("/", h.post)
}

type postRequest struct {
	Tanggal     string `json:"tanggal" validate:"required"`
	Divisi      string `json:"divisi" validate:"required"`
	Cabang      string `json:"cabang"`
	CompanyID   int64  `json:"company_id" validate:"required,gt=0"`
	PembelianID *int64 `json:"pembelian_id"`
	Debit       int64  `json:"debit" validate:"gte=0"`
	Kredit      int64  `json:"kredit" validate:"gte=0"`
	Keterangan  string `json:"keterangan" validate:"required"`
}

type listResponse struct {
	Data       []Entry           `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		Divisi: q.Get("divisi"),
		Cabang: q.Get("cabang"),
	}
	filter.CompanyID, _ = strconv.ParseInt(q.Get("company_id"), 10, 64)
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	if from := q.Get("from"); from != "" {
		if t, err := shared.ParseDisplayDate(from); err == nil {
			filter.From = t
		} else {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid from date")
			return
		}
	}
	if to := q.Get("to"); to != "" {
		if t, err := shared.ParseDisplayDate(to); err == nil {
			filter.To = t
		} else {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid to date")
			return
		}
	}

	entries, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list pembukuan", slog.Any("error", err))
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
		Data:       entries,
		Pagination: shared.NewPagination(filter.Page, filter.Limit, total),
	})
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	var req postRequest
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
	entry, err := h.service.Post(r.Context(), PostingInput{
		Tanggal:     tanggal,
		Divisi:      req.Divisi,
		Cabang:      req.Cabang,
		CompanyID:   req.CompanyID,
		PembelianID: req.PembelianID,
		Debit:       req.Debit,
		Kredit:      req.Kredit,
		Keterangan:  req.Keterangan,
	})
	if err != nil {
		h.logger.Error("post pembukuan", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", shared.UserSafeMessage(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}
