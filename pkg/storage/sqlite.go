package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mindtrailco/mindtrail/pkg/chat"
)

// currentSessionKey is the meta-table key holding the current-session pointer.
const currentSessionKey = "current_session"

// SQLiteStore is a Store backed by a local SQLite database. Each session is a
// single row holding its serialized JSON record, so individual saves are
// atomic at the row level.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite-backed store at the given path.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at DESC)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}

// Save upserts the session record, which also serves as its index entry, and
// points the current-session pointer at it.
func (s *SQLiteStore) Save(ctx context.Context, session *chat.Session) error {
	if session == nil {
		return errors.New("cannot save nil session")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		session.ID, string(data), session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		currentSessionKey, session.ID,
	)
	if err != nil {
		return fmt.Errorf("set current session: %w", err)
	}

	return nil
}

// Load retrieves a session by id. Missing rows and rows whose record no
// longer parses both read as ErrNotFound.
func (s *SQLiteStore) Load(ctx context.Context, id string) (*chat.Session, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM sessions WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session chat.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, ErrNotFound{ID: id}
	}

	return &session, nil
}

// ListAll returns all loadable sessions, most recently updated first.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]*chat.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM sessions ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*chat.Session, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}

		var session chat.Session
		if err := json.Unmarshal([]byte(data), &session); err != nil {
			// Corrupt record: skip it rather than failing the listing.
			continue
		}
		sessions = append(sessions, &session)
	}

	return sessions, rows.Err()
}

// CurrentSessionID returns the current-session pointer, or "" when unset.
func (s *SQLiteStore) CurrentSessionID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = ?`, currentSessionKey).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load current session: %w", err)
	}

	return id, nil
}

// Delete removes the session record and clears the current-session pointer
// if it points at the deleted id. Deleting an absent session is a no-op.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM meta WHERE key = ? AND value = ?`, currentSessionKey, id)
	if err != nil {
		return fmt.Errorf("clear current session: %w", err)
	}

	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
