// Package postgres persists sessions in PostgreSQL. Issue lists and derived
// results are stored as JSONB payloads keyed by session ID.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/dataprobe/dataprobe/pkg/errors"
	"github.com/dataprobe/dataprobe/pkg/models"
)

// Config holds configuration for the PostgreSQL backend.
type Config struct {
	DSN             string        `json:"dsn" yaml:"dsn"`
	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

// DefaultConfig returns conservative pool settings; the DSN must be supplied.
func DefaultConfig() Config {
	return Config{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS check_sessions (
	id         TEXT PRIMARY KEY,
	filename   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	payload    JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_check_sessions_created_at
	ON check_sessions (created_at DESC);
`

// Store is a PostgreSQL-backed session store.
type Store struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewStore opens a connection pool, verifies connectivity, and ensures the
// schema exists.
func NewStore(ctx context.Context, config Config, logger *logrus.Logger) (*Store, error) {
	if config.DSN == "" {
		return nil, errors.NewStorageError("INVALID_CONFIG", "postgres DSN is required")
	}
	if logger == nil {
		logger = logrus.New()
	}

	db, err := sql.Open("postgres", config.DSN)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, "OPEN_FAILED", "Failed to open postgres connection")
	}

	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, "PING_FAILED", "Failed to reach postgres")
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, "SCHEMA_FAILED", "Failed to create session schema")
	}

	logger.WithFields(logrus.Fields{
		"backend": "postgres",
	}).Info("Session store connected")

	return &Store{db: db, logger: logger}, nil
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

	const query = `
		INSERT INTO check_sessions (id, filename, created_at, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET filename = EXCLUDED.filename,
		    created_at = EXCLUDED.created_at,
		    payload = EXCLUDED.payload`

	if _, err := s.db.ExecContext(ctx, query, session.ID, session.Filename, session.CreatedAt, payload); err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, "WRITE_FAILED", "Failed to save session")
	}
	return nil
}

// Get returns the session with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*models.CheckSession, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM check_sessions WHERE id = $1`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errors.ErrSessionNotFound
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, "READ_FAILED", "Failed to read session")
	}

	return decodeSession(payload)
}

// List returns sessions ordered by creation time descending.
func (s *Store) List(ctx context.Context, limit, offset int) ([]*models.CheckSession, error) {
	query := `SELECT payload FROM check_sessions ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, "READ_FAILED", "Failed to list sessions")
	}
	defer rows.Close()

	var sessions []*models.CheckSession
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, errors.WrapError(err, errors.ErrorTypeStorage, "READ_FAILED", "Failed to scan session row")
		}
		session, err := decodeSession(payload)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, "READ_FAILED", "Failed to iterate session rows")
	}
	return sessions, nil
}

// Delete removes the session with the given ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM check_sessions WHERE id = $1`, id)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, "DELETE_FAILED", "Failed to delete session")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return errors.ErrSessionNotFound
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error { return s.db.Close() }

func decodeSession(payload []byte) (*models.CheckSession, error) {
	var session models.CheckSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, "DECODE_FAILED", "Failed to decode session payload")
	}
	return &session, nil
}
