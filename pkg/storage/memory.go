package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mindtrailco/mindtrail/pkg/chat"
)

// MemoryStore is an in-memory Store, used when no database path is
// configured and in tests. Records are held in serialized form so that
// callers get the same copy semantics and corrupt-record tolerance as the
// SQLite implementation.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]string
	current string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]string),
	}
}

// Save upserts the session record and marks it current.
func (s *MemoryStore) Save(_ context.Context, session *chat.Session) error {
	if session == nil {
		return errors.New("cannot save nil session")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[session.ID] = string(data)
	s.current = session.ID
	return nil
}

// Load retrieves a session by id.
func (s *MemoryStore) Load(_ context.Context, id string) (*chat.Session, error) {
	s.mu.RLock()
	data, ok := s.records[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound{ID: id}
	}

	var session chat.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, ErrNotFound{ID: id}
	}

	return &session, nil
}

// ListAll returns all loadable sessions, most recently updated first.
func (s *MemoryStore) ListAll(ctx context.Context) ([]*chat.Session, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sessions := make([]*chat.Session, 0, len(ids))
	for _, id := range ids {
		session, err := s.Load(ctx, id)
		if err != nil {
			continue
		}
		sessions = append(sessions, session)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].UpdatedAt != sessions[j].UpdatedAt {
			return sessions[i].UpdatedAt > sessions[j].UpdatedAt
		}
		return sessions[i].ID < sessions[j].ID
	})

	return sessions, nil
}

// CurrentSessionID returns the current-session pointer, or "" when unset.
func (s *MemoryStore) CurrentSessionID(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

// Delete removes the session and clears a matching current-session pointer.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, id)
	if s.current == id {
		s.current = ""
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
