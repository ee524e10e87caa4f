// Package storage provides a filesystem archive for rendered remessa files.
// Each remessa is written as <dir>/<id>.rem holding exactly the rendered
// bytes, next to a <id>.json sidecar with its metadata.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("storage")

const (
	contentExt = ".rem"
	sidecarExt = ".json"
)

// Filesystem stores remessas under a single directory.
type Filesystem struct {
	dir    string
	logger *zap.Logger
}

// NewFilesystem creates the archive directory if needed.
func NewFilesystem(dir string, logger *zap.Logger) (*Filesystem, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure archive dir: %w", err)
	}
	return &Filesystem{dir: dir, logger: logger}, nil
}

// Store writes the content file first and the sidecar last, so a sidecar
// always points at a complete content file.
func (s *Filesystem) Store(ctx context.Context, a *domain.RemessaArchive) error {
	_, span := tracer.Start(ctx, "Filesystem.Store")
	defer span.End()
	span.SetAttributes(attribute.String("remessa.id", a.ID))

	if _, err := uuid.Parse(a.ID); err != nil {
		return &domain.ErrValidation{Field: "id", Message: "must be a UUID"}
	}

	meta, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("storage: encode sidecar: %w", err)
	}

	if err := os.WriteFile(s.path(a.ID, contentExt), []byte(a.Content), 0o644); err != nil {
		s.logger.Error("storage: failed to write remessa", zap.String("id", a.ID), zap.Error(err))
		return fmt.Errorf("storage: write %s: %w", a.ID, err)
	}
	if err := os.WriteFile(s.path(a.ID, sidecarExt), meta, 0o644); err != nil {
		s.logger.Error("storage: failed to write sidecar", zap.String("id", a.ID), zap.Error(err))
		return fmt.Errorf("storage: write sidecar %s: %w", a.ID, err)
	}

	s.logger.Debug("storage: remessa archived",
		zap.String("id", a.ID),
		zap.Int("bytes", len(a.Content)),
	)
	return nil
}

// Get reads an archived remessa. Unknown or malformed ids are not found.
func (s *Filesystem) Get(ctx context.Context, id string) (*domain.RemessaArchive, error) {
	_, span := tracer.Start(ctx, "Filesystem.Get")
	defer span.End()
	span.SetAttributes(attribute.String("remessa.id", id))

	if _, err := uuid.Parse(id); err != nil {
		return nil, &domain.ErrNotFound{Resource: "remessa", ID: id}
	}

	meta, err := os.ReadFile(s.path(id, sidecarExt))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &domain.ErrNotFound{Resource: "remessa", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read sidecar %s: %w", id, err)
	}

	var a domain.RemessaArchive
	if err := json.Unmarshal(meta, &a); err != nil {
		return nil, fmt.Errorf("storage: decode sidecar %s: %w", id, err)
	}

	content, err := os.ReadFile(s.path(id, contentExt))
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", id, err)
	}
	a.Content = string(content)
	return &a, nil
}

// Ping checks that the archive directory is still a directory.
func (s *Filesystem) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("storage: %s is not a directory", s.dir)
	}
	return nil
}

func (s *Filesystem) path(id, ext string) string {
	return filepath.Join(s.dir, id+ext)
}
