// Package storage persists validation sessions. Backends implement
// SessionStore and are constructed through the factory so callers depend on
// the interface only.
package storage

import (
	"context"

	"github.com/dataprobe/dataprobe/internal/storage/postgres"
	"github.com/dataprobe/dataprobe/internal/storage/redis"
	"github.com/dataprobe/dataprobe/pkg/models"
)

// SessionStore persists and retrieves validation sessions. Implementations
// must be safe for concurrent use.
type SessionStore interface {
	// Save persists a session, overwriting any existing session with the
	// same ID.
	Save(ctx context.Context, session *models.CheckSession) error

	// Get returns the session with the given ID, or errors.ErrSessionNotFound.
	Get(ctx context.Context, id string) (*models.CheckSession, error)

	// List returns up to limit sessions ordered by creation time descending,
	// skipping offset sessions. limit <= 0 means no limit.
	List(ctx context.Context, limit, offset int) ([]*models.CheckSession, error)

	// Delete removes the session with the given ID, or returns
	// errors.ErrSessionNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// Supported backend names.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config selects and configures a session store backend.
type Config struct {
	Backend  string          `json:"backend" yaml:"backend"`
	Postgres postgres.Config `json:"postgres" yaml:"postgres"`
	Redis    redis.Config    `json:"redis" yaml:"redis"`
}

// DefaultConfig returns the in-memory backend configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend:  BackendMemory,
		Postgres: postgres.DefaultConfig(),
		Redis:    redis.DefaultConfig(),
	}
}
