package domain

// ============================================================
// Health & Metrics API Responses
// ============================================================

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, degraded, unhealthy
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth represents the health of an individual dependency.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}

// CnabMetrics is returned by GET /v1/metrics/cnab.
type CnabMetrics struct {
	RemessasRendered   int64            `json:"remessasRendered"`
	DetailsRendered    int64            `json:"detailsRendered"`
	RetornosDecoded    int64            `json:"retornosDecoded"`
	ValidationFailures map[string]int64 `json:"validationFailures"`
	CacheHitRate       float64          `json:"cacheHitRate"`
	ExternalErrors     int64            `json:"externalErrors"`
	Period             string           `json:"period"`
}
