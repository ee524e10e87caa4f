package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/domain"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/infra/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func TestFilesystem_StoreAndGet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "archive")
	fs, err := storage.NewFilesystem(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	content := "line one\r\nline two\r\n"
	a := &domain.RemessaArchive{
		ID:          uuid.NewString(),
		Bank:        341,
		Titles:      1,
		Records:     7,
		TotalAmount: decimal.RequireFromString("150.75"),
		CreatedAt:   time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC),
		Content:     content,
	}
	if err := fs.Store(context.Background(), a); err != nil {
		t.Fatalf("store: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, a.ID+".rem"))
	if err != nil {
		t.Fatalf("read content: %v", err)
	}
	if string(raw) != content {
		t.Errorf("content file differs from rendered text: %q", raw)
	}

	got, err := fs.Get(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Content != content {
		t.Errorf("unexpected content %q", got.Content)
	}
	if got.Bank != 341 || got.Records != 7 || !got.TotalAmount.Equal(a.TotalAmount) {
		t.Errorf("unexpected metadata %+v", got)
	}
	if !got.CreatedAt.Equal(a.CreatedAt) {
		t.Errorf("expected %s, got %s", a.CreatedAt, got.CreatedAt)
	}
}

func TestFilesystem_GetNotFound(t *testing.T) {
	fs, err := storage.NewFilesystem(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{uuid.NewString(), "../etc/passwd", ""} {
		_, err := fs.Get(context.Background(), id)
		var nf *domain.ErrNotFound
		if !errors.As(err, &nf) {
			t.Errorf("id %q: expected ErrNotFound, got %v", id, err)
		}
	}
}

func TestFilesystem_StoreRejectsNonUUID(t *testing.T) {
	fs, err := storage.NewFilesystem(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	err = fs.Store(context.Background(), &domain.RemessaArchive{ID: "../escape"})
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestFilesystem_Ping(t *testing.T) {
	dir := t.TempDir()
	fs, err := storage.NewFilesystem(dir, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if err := fs.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	if err := fs.Ping(context.Background()); err == nil {
		t.Fatal("expected error after directory removal")
	}
}
