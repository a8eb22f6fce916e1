// Package redis persists sessions in Redis. Each session is a JSON value
// under a prefixed key; a sorted set scored by creation time provides
// newest-first listing.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/dataprobe/dataprobe/pkg/errors"
	"github.com/dataprobe/dataprobe/pkg/models"
)

// Config holds configuration for the Redis backend.
type Config struct {
	Addr         string        `json:"addr" yaml:"addr"`
	Password     string        `json:"password" yaml:"password"`
	DB           int           `json:"db" yaml:"db"`
	DialTimeout  time.Duration `json:"dial_timeout" yaml:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
	PoolSize     int           `json:"pool_size" yaml:"pool_size"`
	KeyPrefix    string        `json:"key_prefix" yaml:"key_prefix"`
	TTL          time.Duration `json:"ttl" yaml:"ttl"`
}

// DefaultConfig returns settings for a local single-node Redis.
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		KeyPrefix:    "dataprobe",
	}
}

// Store is a Redis-backed session store.
type Store struct {
	config Config
	client *goredis.Client
	logger *logrus.Logger
}

// NewStore connects to Redis and verifies connectivity.
func NewStore(ctx context.Context, config Config, logger *logrus.Logger) (*Store, error) {
	if config.Addr == "" {
		return nil, errors.NewStorageError("INVALID_CONFIG", "redis address is required")
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "dataprobe"
	}
	if logger == nil {
		logger = logrus.New()
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		PoolSize:     config.PoolSize,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, "PING_FAILED", "Failed to reach redis")
	}

	logger.WithFields(logrus.Fields{
		"backend": "redis",
		"addr":    config.Addr,
	}).Info("Session store connected")

	return &Store{config: config, client: client, logger: logger}, nil
}

func (s *Store) sessionKey(id string) string {
	return fmt.Sprintf("%s:session:%s", s.config.KeyPrefix, id)
}

func (s *Store) indexKey() string {
	return fmt.Sprintf("%s:sessions", s.config.KeyPrefix)
}

// Save persists a session, overwriting any existing session with the same ID.
func (s *Store) Save(ctx context.Context, session *models.CheckSession) error {
	if session == nil || session.ID == "" {
		return errors.NewStorageError("INVALID_SESSION", "session must have an ID")
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, "ENCODE_FAILED", "Failed to encode session")
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.sessionKey(session.ID), payload, s.config.TTL)
	pipe.ZAdd(ctx, s.indexKey(), &goredis.Z{
		Score:  float64(session.CreatedAt.UnixNano()),
		Member: session.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, "WRITE_FAILED", "Failed to save session")
	}
	return nil
}

// Get returns the session with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*models.CheckSession, error) {
	payload, err := s.client.Get(ctx, s.sessionKey(id)).Bytes()
	if err == goredis.Nil {
		return nil, errors.ErrSessionNotFound
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, "READ_FAILED", "Failed to read session")
	}

	var session models.CheckSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, "DECODE_FAILED", "Failed to decode session payload")
	}
	return &session, nil
}

// List returns sessions ordered by creation time descending. Index entries
// whose value has expired are skipped.
func (s *Store) List(ctx context.Context, limit, offset int) ([]*models.CheckSession, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(offset + limit - 1)
	}

	ids, err := s.client.ZRevRange(ctx, s.indexKey(), int64(offset), stop).Result()
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, "READ_FAILED", "Failed to list sessions")
	}

	sessions := make([]*models.CheckSession, 0, len(ids))
	for _, id := range ids {
		session, err := s.Get(ctx, id)
		if err == errors.ErrSessionNotFound {
			s.client.ZRem(ctx, s.indexKey(), id)
			continue
		}
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// Delete removes the session with the given ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	removed, err := s.client.Del(ctx, s.sessionKey(id)).Result()
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, "DELETE_FAILED", "Failed to delete session")
	}
	s.client.ZRem(ctx, s.indexKey(), id)
	if removed == 0 {
		return errors.ErrSessionNotFound
	}
	return nil
}

// Close closes the Redis client.
func (s *Store) Close() error { return s.client.Close() }
