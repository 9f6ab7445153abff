// Package storage persists conversation sessions in a local key-value medium.
// Sessions are stored whole as serialized records, alongside an index of
// session ids and a pointer to the current session.
package storage

import (
	"context"

	"github.com/mindtrailco/mindtrail/pkg/chat"
)

// Store defines the interface for persisting and retrieving sessions.
// Consistency between the session index and the stored records is best
// effort: a Load miss for an indexed id reads as absence, never as an error,
// and records that fail to deserialize are treated as missing.
type Store interface {
	// Save upserts the session record, indexes its id, and marks it as the
	// current session.
	Save(ctx context.Context, session *chat.Session) error

	// Load retrieves a session by id. Returns ErrNotFound if the session
	// doesn't exist or its stored record is corrupt.
	Load(ctx context.Context, id string) (*chat.Session, error)

	// ListAll returns every loadable session, most recently updated first.
	// Indexed sessions that fail to load are skipped.
	ListAll(ctx context.Context) ([]*chat.Session, error)

	// CurrentSessionID returns the id of the current session, or the empty
	// string when no current session is set.
	CurrentSessionID(ctx context.Context) (string, error)

	// Delete removes the session record and its index entry. If it was the
	// current session, the current-session pointer is cleared.
	Delete(ctx context.Context, id string) error

	// Close closes the store and releases any resources.
	Close() error
}

// ErrNotFound is returned when a session doesn't exist in the store.
type ErrNotFound struct {
	ID string
}

func (e ErrNotFound) Error() string {
	if e.ID == "" {
		return "session not found"
	}

	return "session not found: " + e.ID
}
