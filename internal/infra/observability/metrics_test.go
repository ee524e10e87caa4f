package observability_test

import (
	"testing"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/infra/observability"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := observability.NewMetrics()

	m.RecordRemessa("341", 3)
	m.RecordRemessa("104", 2)
	m.IncrRetorno("001")
	m.IncrValidationFailure("segmento_p")
	m.IncrValidationFailure("segmento_p")
	m.IncrValidationFailure("")
	m.IncrCacheHit("retorno")
	m.IncrCacheMiss("retorno")
	m.IncrCacheMiss("retorno")
	m.IncrExternalError("archive")

	s := m.GetCnabSnapshot()
	if s.RemessasRendered != 2 {
		t.Errorf("expected 2 remessas, got %d", s.RemessasRendered)
	}
	if s.DetailsRendered != 5 {
		t.Errorf("expected 5 details, got %d", s.DetailsRendered)
	}
	if s.RetornosDecoded != 1 {
		t.Errorf("expected 1 retorno, got %d", s.RetornosDecoded)
	}
	if s.ValidationFailures["segmento_p"] != 2 || s.ValidationFailures["request"] != 1 {
		t.Errorf("unexpected failures %v", s.ValidationFailures)
	}
	if s.CacheHitRate < 0.33 || s.CacheHitRate > 0.34 {
		t.Errorf("expected hit rate 1/3, got %f", s.CacheHitRate)
	}
	if s.ExternalErrors != 1 {
		t.Errorf("expected 1 external error, got %d", s.ExternalErrors)
	}
}

func TestMetrics_EmptySnapshot(t *testing.T) {
	s := observability.NewMetrics().GetCnabSnapshot()
	if s.RemessasRendered != 0 || s.CacheHitRate != 0 || len(s.ValidationFailures) != 0 {
		t.Errorf("expected zero snapshot, got %+v", s)
	}
}
