package handler

import (
	"net/http"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/infra/observability"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/port"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// A nil authSvc serves /v1 without authentication; archive may be nil when
// there is no dependency to probe.
func NewRouter(svc *service.CnabService, authSvc *service.AuthService, archive port.HealthChecker, metrics *observability.Metrics, maxUploadBytes int64, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(archive, logger))
	r.Get("/readyz", readyzHandler(svc))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		if authSvc != nil {
			r.Use(JWTAuthMiddleware(authSvc, logger))
		} else {
			logger.Warn("auth disabled: /v1 routes are public")
		}

		// Remessa
		r.Post("/remessas", generateRemessaHandler(svc, maxUploadBytes, logger))
		r.Get("/remessas/{id}", getRemessaHandler(svc, logger))

		// Retorno
		r.Post("/retornos", decodeRetornoHandler(svc, maxUploadBytes, logger))

		// Catalog & metrics
		r.Get("/banks", banksHandler(svc))
		r.Get("/metrics/cnab", cnabMetricsHandler(metrics))
	})

	return r
}
