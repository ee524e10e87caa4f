package observability

import (
	"time"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the CNAB service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration    *prometheus.HistogramVec
	externalErrors     *prometheus.CounterVec
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
	remessasRendered   *prometheus.CounterVec
	detailsRendered    *prometheus.CounterVec
	retornosDecoded    *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cnab_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cnab_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cnab_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cnab_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		remessasRendered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cnab_remessas_rendered_total",
				Help: "Total remessa files rendered.",
			},
			[]string{"bank"},
		),
		detailsRendered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cnab_details_rendered_total",
				Help: "Total titles rendered into remessa files.",
			},
			[]string{"bank"},
		),
		retornosDecoded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cnab_retornos_decoded_total",
				Help: "Total retorno files decoded.",
			},
			[]string{"bank"},
		),
		validationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cnab_validation_failures_total",
				Help: "Total rejected inputs by record kind.",
			},
			[]string{"record"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordRemessa counts a rendered remessa and its titles.
func (m *Metrics) RecordRemessa(bank string, details int) {
	m.remessasRendered.WithLabelValues(bank).Inc()
	m.detailsRendered.WithLabelValues(bank).Add(float64(details))
}

// IncrRetorno counts a decoded retorno file.
func (m *Metrics) IncrRetorno(bank string) {
	m.retornosDecoded.WithLabelValues(bank).Inc()
}

// IncrValidationFailure counts a rejected input. Request-level failures
// use the "request" label.
func (m *Metrics) IncrValidationFailure(record string) {
	if record == "" {
		record = "request"
	}
	m.validationFailures.WithLabelValues(record).Inc()
}

// GetCnabSnapshot returns a snapshot of CNAB metrics suitable for the
// GET /v1/metrics/cnab endpoint.
func (m *Metrics) GetCnabSnapshot() *domain.CnabMetrics {
	hits := sumCounter(m.cacheHits)
	misses := sumCounter(m.cacheMisses)
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.CnabMetrics{
		RemessasRendered:   int64(sumCounter(m.remessasRendered)),
		DetailsRendered:    int64(sumCounter(m.detailsRendered)),
		RetornosDecoded:    int64(sumCounter(m.retornosDecoded)),
		ValidationFailures: countersByLabel(m.validationFailures),
		CacheHitRate:       hitRate,
		ExternalErrors:     int64(sumCounter(m.externalErrors)),
		Period:             "all_time",
	}
}

// collect gathers every child counter of a CounterVec.
func collect(cv *prometheus.CounterVec) []*dto.Metric {
	ch := make(chan prometheus.Metric)
	go func() {
		cv.Collect(ch)
		close(ch)
	}()

	var out []*dto.Metric
	for metric := range ch {
		m := &dto.Metric{}
		if err := metric.Write(m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out
}

func sumCounter(cv *prometheus.CounterVec) float64 {
	total := float64(0)
	for _, m := range collect(cv) {
		if m.Counter != nil && m.Counter.Value != nil {
			total += *m.Counter.Value
		}
	}
	return total
}

func countersByLabel(cv *prometheus.CounterVec) map[string]int64 {
	out := map[string]int64{}
	for _, m := range collect(cv) {
		if m.Counter == nil || m.Counter.Value == nil || len(m.Label) == 0 {
			continue
		}
		out[m.Label[0].GetValue()] = int64(*m.Counter.Value)
	}
	return out
}
