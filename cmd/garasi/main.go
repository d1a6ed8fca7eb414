package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/garasi-erp/garasi-erp/internal/app"
	"github.com/garasi-erp/garasi-erp/internal/birojasa"
	"github.com/garasi-erp/garasi-erp/internal/dashboard"
	"github.com/garasi-erp/garasi-erp/internal/masterdata/companies"
	"github.com/garasi-erp/garasi-erp/internal/masterdata/jenismotor"
	"github.com/garasi-erp/garasi-erp/internal/pembelian"
	"github.com/garasi-erp/garasi-erp/internal/pembukuan"
	"github.com/garasi-erp/garasi-erp/internal/penjualan"
	"github.com/garasi-erp/garasi-erp/internal/platform/cache"
	"github.com/garasi-erp/garasi-erp/internal/platform/db"
	"github.com/garasi-erp/garasi-erp/internal/shared"
	"github.com/garasi-erp/garasi-erp/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, summary cache disabled", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	audit := shared.NewAuditLogger(pool)

	companyService := companies.NewService(companies.NewRepository(pool))
	jenisService := jenismotor.NewService(jenismotor.NewRepository(pool))
	pembukuanService := pembukuan.NewService(pembukuan.NewRepository(pool), audit)
	pembelianService := pembelian.NewService(pembelian.NewRepository(pool), audit)
	penjualanService := penjualan.NewService(penjualan.NewRepository(pool), audit)
	biroJasaService := birojasa.NewService(birojasa.NewRepository(pool), audit)
	dashboardService := dashboard.NewService(
		dashboard.NewRepository(pool),
		dashboard.NewCache(redisClient, cfg.SummaryCacheTTL),
	)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		CompanyHandler:   companies.NewHandler(logger, companyService),
		JenisHandler:     jenismotor.NewHandler(logger, jenisService),
		PembukuanHandler: pembukuan.NewHandler(logger, pembukuanService),
		PembelianHandler: pembelian.NewHandler(logger, pembelianService),
		PenjualanHandler: penjualan.NewHandler(logger, penjualanService),
		BiroJasaHandler:  birojasa.NewHandler(logger, biroJasaService),
		DashboardHandler: dashboard.NewHandler(logger, dashboardService),
		JobsHandler:      jobs.NewHandler(logger, jobsClient),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("http server stopped")
}
