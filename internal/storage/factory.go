package storage

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dataprobe/dataprobe/internal/storage/memory"
	"github.com/dataprobe/dataprobe/internal/storage/postgres"
	"github.com/dataprobe/dataprobe/internal/storage/redis"
	"github.com/dataprobe/dataprobe/pkg/errors"
)

// Compile-time interface checks for all backends.
var (
	_ SessionStore = (*memory.Store)(nil)
	_ SessionStore = (*postgres.Store)(nil)
	_ SessionStore = (*redis.Store)(nil)
)

// NewSessionStore creates the backend named by config. A nil config selects
// the in-memory backend.
func NewSessionStore(ctx context.Context, config *Config, logger *logrus.Logger) (SessionStore, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}

	switch config.Backend {
	case "", BackendMemory:
		logger.WithFields(logrus.Fields{
			"backend": BackendMemory,
		}).Info("Session store ready")
		return memory.NewStore(), nil
	case BackendPostgres:
		return postgres.NewStore(ctx, config.Postgres, logger)
	case BackendRedis:
		return redis.NewStore(ctx, config.Redis, logger)
	default:
		return nil, errors.NewStorageError("UNSUPPORTED_BACKEND",
			fmt.Sprintf("Session store backend '%s' is not supported", config.Backend))
	}
}
