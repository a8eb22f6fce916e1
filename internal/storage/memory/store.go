// Package memory provides an in-process session store, the default backend
// for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dataprobe/dataprobe/pkg/errors"
	"github.com/dataprobe/dataprobe/pkg/models"
)

// Store keeps sessions in a map guarded by a RWMutex. Sessions are copied on
// write and read so callers cannot mutate stored state.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*models.CheckSession
}

// NewStore creates an empty in-memory session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*models.CheckSession),
	}
}

// Save persists a session, overwriting any existing session with the same ID.
func (s *Store) Save(_ context.Context, session *models.CheckSession) error {
	if session == nil || session.ID == "" {
		return errors.NewStorageError("INVALID_SESSION", "session must have an ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = copySession(session)
	return nil
}

// Get returns the session with the given ID.
func (s *Store) Get(_ context.Context, id string) (*models.CheckSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, errors.ErrSessionNotFound
	}
	return copySession(session), nil
}

// List returns sessions ordered by creation time descending.
func (s *Store) List(_ context.Context, limit, offset int) ([]*models.CheckSession, error) {
	s.mu.RLock()
	all := make([]*models.CheckSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		all = append(all, copySession(session))
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// Delete removes the session with the given ID.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return errors.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Close is a no-op for the in-memory backend.
func (s *Store) Close() error { return nil }

func copySession(in *models.CheckSession) *models.CheckSession {
	out := *in
	if in.Issues != nil {
		out.Issues = append([]models.Issue(nil), in.Issues...)
	}
	if in.Summary != nil {
		summary := *in.Summary
		out.Summary = &summary
	}
	if in.Readiness != nil {
		readiness := *in.Readiness
		readiness.Recommendations = append([]string(nil), in.Readiness.Recommendations...)
		out.Readiness = &readiness
	}
	return &out
}
