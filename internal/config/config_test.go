package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "CACHE_TTL", "USE_SUPABASE", "MAX_UPLOAD_BYTES"} {
		t.Setenv(k, "")
	}

	cfg := config.Load()
	if cfg.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("expected 5m cache TTL, got %s", cfg.CacheTTL)
	}
	if cfg.UseSupabase {
		t.Error("expected filesystem archive by default")
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("unexpected upload limit %d", cfg.MaxUploadBytes)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("MAX_RETRIES", "not-a-number")
	t.Setenv("AUTH_DISABLED", "true")

	cfg := config.Load()
	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("expected 30s, got %s", cfg.CacheTTL)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("expected fallback 3 for invalid value, got %d", cfg.MaxRetries)
	}
	if !cfg.AuthDisabled {
		t.Error("expected auth disabled")
	}
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "ARCHIVE_DIR=/tmp/from-dotenv\nLOG_LEVEL=debug\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("ARCHIVE_DIR", "")
	os.Unsetenv("ARCHIVE_DIR")

	if err := config.LoadDotEnv(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("ARCHIVE_DIR") })

	cfg := config.Load()
	if cfg.LogLevel != "warn" {
		t.Errorf("expected env to win, got %s", cfg.LogLevel)
	}
	if cfg.ArchiveDir != "/tmp/from-dotenv" {
		t.Errorf("expected value from .env, got %s", cfg.ArchiveDir)
	}
}
