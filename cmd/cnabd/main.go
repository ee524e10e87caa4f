package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/config"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/domain"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/handler"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/infra/cache"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/infra/observability"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/infra/storage"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/infra/supabase"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/port"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("use_supabase", cfg.UseSupabase),
		zap.String("archive_dir", cfg.ArchiveDir),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Int64("max_upload_bytes", cfg.MaxUploadBytes),
		zap.Bool("auth_disabled", cfg.AuthDisabled),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "pj-cnab-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	retornoCache := cache.New[*domain.RetornoResult](cfg.CacheTTL)
	defer retornoCache.Close()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	bulkhead := resilience.NewBulkhead(resilienceCfg.MaxConcurrency)

	// --- Archive ---
	var archive interface {
		port.RemessaArchive
		port.HealthChecker
	}
	if cfg.UseSupabase && cfg.SupabaseURL != "" {
		logger.Info("using Supabase as remessa archive",
			zap.String("supabase_url", cfg.SupabaseURL),
		)
		archive = supabase.NewClient(
			&http.Client{Timeout: cfg.HTTPTimeout},
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			resilience.NewCircuitBreaker("supabase", logger),
			resilienceCfg,
			logger,
		)
	} else {
		logger.Info("using filesystem as remessa archive", zap.String("dir", cfg.ArchiveDir))
		fs, err := storage.NewFilesystem(cfg.ArchiveDir, logger)
		if err != nil {
			logger.Fatal("failed to open archive", zap.Error(err))
		}
		archive = fs
	}

	// --- Services ---
	cnabSvc := service.NewCnabService(archive, retornoCache, bulkhead, metrics, logger)

	var authSvc *service.AuthService
	if cfg.AuthDisabled {
		logger.Warn("auth service: disabled by AUTH_DISABLED")
	} else {
		authSvc = service.NewAuthService(cfg.JWTSecret, cfg.JWTAccessTTL, logger)
		logger.Info("auth service enabled")
	}

	// --- Router ---
	router := handler.NewRouter(cnabSvc, authSvc, archive, metrics, cfg.MaxUploadBytes, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
