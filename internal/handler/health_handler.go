package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/domain"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/infra/observability"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/port"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/service"

	"go.uber.org/zap"
)

func healthzHandler(archive port.HealthChecker, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "cnab-api", Status: "healthy", LastChecked: now},
		}

		if archive != nil {
			start := time.Now()
			err := archive.Ping(r.Context())
			status := "healthy"
			if err != nil {
				logger.Warn("healthz: archive unreachable", zap.Error(err))
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "archive", Status: status,
				LatencyMs: time.Since(start).Milliseconds(), LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler(svc *service.CnabService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func cnabMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetCnabSnapshot())
	}
}
