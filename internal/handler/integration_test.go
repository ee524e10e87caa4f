package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/cnab/bank"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/cnab/cnabtest"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/domain"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/handler"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/infra/cache"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/infra/observability"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/infra/supabase"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/service"

	"go.uber.org/zap"
)

// postgrest is an in-memory cnab_remessas table.
type postgrest struct {
	mu   sync.Mutex
	rows map[string]json.RawMessage
}

func (p *postgrest) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch r.Method {
	case http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		var row struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(body, &row); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		p.rows[row.ID] = body
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, "[%s]", body)
	case http.MethodGet:
		id := strings.TrimPrefix(r.URL.Query().Get("id"), "eq.")
		if row, ok := p.rows[id]; ok {
			fmt.Fprintf(w, "[%s]", row)
			return
		}
		io.WriteString(w, "[]")
	}
}

// TestIntegration_FullFlow drives the API against a PostgREST-backed archive
// with authentication on.
func TestIntegration_FullFlow(t *testing.T) {
	backend := httptest.NewServer(&postgrest{rows: map[string]json.RawMessage{}})
	defer backend.Close()

	logger := zap.NewNop()
	cfg := resilience.Config{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxConcurrency: 4}
	archive := supabase.NewClient(backend.Client(), backend.URL, "anon", "service",
		resilience.NewCircuitBreaker("integration", logger), cfg, logger)

	metrics := observability.NewMetrics()
	retornos := cache.New[*domain.RetornoResult](time.Minute)
	defer retornos.Close()

	svc := service.NewCnabService(archive, retornos, resilience.NewBulkhead(cfg.MaxConcurrency), metrics, logger)
	auth := service.NewAuthService("integration-secret", time.Minute, logger)
	srv := httptest.NewServer(handler.NewRouter(svc, auth, archive, metrics, 1<<20, logger))
	defer srv.Close()

	tok, err := auth.IssueAccessToken(context.Background(), "erp")
	if err != nil {
		t.Fatal(err)
	}
	call := func(method, path, contentType string, body io.Reader) *http.Response {
		t.Helper()
		req, err := http.NewRequest(method, srv.URL+path, body)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	// --- Health ---
	resp := call(http.MethodGet, "/healthz", "", nil)
	var health domain.HealthStatus
	json.NewDecoder(resp.Body).Decode(&health)
	if health.Status != "healthy" || len(health.Services) != 2 {
		t.Errorf("expected healthy, got %+v", health)
	}

	// --- Render and archive a remessa ---
	raw, _ := json.Marshal(cnabtest.RemessaRequest(bank.CEF, 3))
	resp = call(http.MethodPost, "/v1/remessas", "application/json", bytes.NewReader(raw))
	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, b)
	}
	var created domain.RemessaResult
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.Titles != 3 || created.Bank != bank.CEF {
		t.Errorf("unexpected result %+v", created)
	}

	// --- Fetch it back from the archive ---
	resp = call(http.MethodGet, "/v1/remessas/"+created.ID, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	content, _ := io.ReadAll(resp.Body)
	lines := strings.Split(strings.TrimSuffix(string(content), "\r\n"), "\r\n")
	if len(lines) != created.Records {
		t.Errorf("expected %d lines, got %d", created.Records, len(lines))
	}
	if !strings.HasPrefix(lines[0], "104") {
		t.Errorf("expected CEF header, got %q", lines[0][:3])
	}

	// --- Decode two retornos in one upload ---
	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	for _, code := range []int{bank.Itau, bank.Santander} {
		fw, _ := mw.CreateFormFile("files", fmt.Sprintf("%03d.ret", code))
		fw.Write(cnabtest.Retorno(t, code, "", cnabtest.Title{Movement: 6, NossoNumero: "1", Paid: "100.00"}))
	}
	mw.Close()

	resp = call(http.MethodPost, "/v1/retornos", mw.FormDataContentType(), &form)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, b)
	}
	var batch []domain.RetornoBatchResult
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		t.Fatal(err)
	}
	if len(batch) != 2 || batch[0].Name != "341.ret" || batch[1].Name != "033.ret" {
		t.Fatalf("unexpected batch %+v", batch)
	}
	for _, b := range batch {
		if b.Error != "" || b.Result == nil || b.Result.Totals.WriteOffs != 1 {
			t.Errorf("unexpected entry %+v", b)
		}
	}

	// --- Counters ---
	resp = call(http.MethodGet, "/v1/metrics/cnab", "", nil)
	var snap domain.CnabMetrics
	json.NewDecoder(resp.Body).Decode(&snap)
	if snap.RemessasRendered != 1 || snap.DetailsRendered != 3 || snap.RetornosDecoded != 2 {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	// --- Without a token ---
	plain, err := http.Get(srv.URL + "/v1/banks")
	if err != nil {
		t.Fatal(err)
	}
	plain.Body.Close()
	if plain.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", plain.StatusCode)
	}
}
