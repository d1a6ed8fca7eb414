package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/garasi-erp/garasi-erp/internal/birojasa"
	"github.com/garasi-erp/garasi-erp/internal/dashboard"
	"github.com/garasi-erp/garasi-erp/internal/masterdata/companies"
	"github.com/garasi-erp/garasi-erp/internal/masterdata/jenismotor"
	"github.com/garasi-erp/garasi-erp/internal/pembelian"
	"github.com/garasi-erp/garasi-erp/internal/pembukuan"
	"github.com/garasi-erp/garasi-erp/internal/penjualan"
	"github.com/garasi-erp/garasi-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	CompanyHandler   *companies.Handler
	JenisHandler     *jenismotor.Handler
	PembukuanHandler *pembukuan.Handler
	PembelianHandler *pembelian.Handler
	PenjualanHandler *penjualan.Handler
	BiroJasaHandler  *birojasa.Handler
	DashboardHandler *dashboard.Handler
	JobsHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/companies", params.CompanyHandler.MountRoutes)
	r.Route("/jenis-motor", params.JenisHandler.MountRoutes)
	r.Route("/pembukuan", params.PembukuanHandler.MountRoutes)
	r.Route("/pembelian", params.PembelianHandler.MountRoutes)
	r.Route("/penjualan", params.PenjualanHandler.MountRoutes)
	r.Route("/biro-jasa", params.BiroJasaHandler.MountRoutes)
	if params.DashboardHandler != nil {
		r.Route("/dashboard", params.DashboardHandler.MountRoutes)
	}
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	return r
}
