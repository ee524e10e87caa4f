// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/domain"
)

// RemessaArchive persists rendered remessa files.
// Implemented by the filesystem store and the Supabase adapter.
type RemessaArchive interface {
	Store(ctx context.Context, a *domain.RemessaArchive) error
	Get(ctx context.Context, id string) (*domain.RemessaArchive, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
