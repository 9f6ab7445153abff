// Package session owns the authoritative in-memory turn sequence for the
// active conversation and drives the pending→resolved turn lifecycle.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mindtrailco/mindtrail/pkg/chat"
	"github.com/mindtrailco/mindtrail/pkg/completion"
	"github.com/mindtrailco/mindtrail/pkg/storage"
)

// ErrEmptyQuery is returned when a submitted query is empty after trimming.
// No turn is created and nothing is persisted.
var ErrEmptyQuery = errors.New("query is empty")

// DefaultFirstMessageDelay is how long after the first submission the
// first-message flag flips. The flag exists to drive the intro animation in
// the presentation layer; the delay lets the pending node render first.
const DefaultFirstMessageDelay = 100 * time.Millisecond

// failureMessage is the user-facing text stored on a turn whose completion
// request failed.
const failureMessage = "Failed to get response. Please try again."

// Manager mediates every mutation of the active session. Submissions append
// a pending turn synchronously and resolve asynchronously; each append and
// each resolution rewrites the whole session in the store.
//
// Persistence is best effort: a failing store is logged and ignored, and the
// in-memory sequence stays the source of truth for the process lifetime.
//
// Concurrent submissions are not serialized. Two in-flight requests may
// resolve out of order; turns keep their submission order regardless, so a
// later turn can visibly resolve before an earlier one. Resolutions locate
// their turn by id, which also makes a resolution arriving after ClearChat a
// no-op.
type Manager struct {
	store     storage.Store
	completer completion.Completer
	logger    *zap.Logger

	firstMessageDelay time.Duration
	onChange          func()

	mu               sync.Mutex
	messages         []chat.Turn
	currentSession   string
	sessionCreatedAt int64
	selectedNode     string
	loading          bool
	firstMessage     bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithFirstMessageDelay overrides the first-message flag delay.
func WithFirstMessageDelay(d time.Duration) Option {
	return func(m *Manager) {
		m.firstMessageDelay = d
	}
}

// WithObserver registers a callback invoked after every state change. The
// callback runs outside the manager's lock and must not call back into the
// Manager's mutating operations.
func WithObserver(fn func()) Option {
	return func(m *Manager) {
		m.onChange = fn
	}
}

// NewManager creates a Manager backed by the given store and completer.
func NewManager(store storage.Store, completer completion.Completer, logger *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:             store,
		completer:         completer,
		logger:            logger,
		firstMessageDelay: DefaultFirstMessageDelay,
		firstMessage:      true,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Restore loads the persisted current session, if any. Intended for startup;
// a missing or corrupt stored session leaves the manager empty.
func (m *Manager) Restore(ctx context.Context) {
	id, err := m.store.CurrentSessionID(ctx)
	if err != nil {
		m.logger.Warn("failed to read current session pointer", zap.Error(err))
		return
	}
	if id == "" {
		return
	}

	if err := m.LoadSession(ctx, id); err != nil {
		m.logger.Warn("failed to restore session", zap.String("session_id", id), zap.Error(err))
	}
}

// SendMessage submits a query. The pending turn is appended and persisted
// before this method returns; the completion request runs asynchronously and
// transitions the turn to complete or error when it resolves.
//
// Queries that are empty after trimming are rejected with ErrEmptyQuery and
// cause no side effects.
func (m *Manager) SendMessage(ctx context.Context, query string) (*chat.Turn, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	m.mu.Lock()

	if m.currentSession == "" {
		m.currentSession = chat.NewSessionID()
		m.sessionCreatedAt = time.Now().UnixMilli()
	}
	sessionID := m.currentSession

	// Context for the completion request is the history before this turn.
	history := make([]chat.Turn, len(m.messages))
	copy(history, m.messages)

	turn := chat.NewTurn(query)
	m.messages = append(m.messages, turn)
	m.loading = true

	if m.firstMessage {
		time.AfterFunc(m.firstMessageDelay, m.clearFirstMessage)
	}

	m.persistLocked(ctx)
	m.mu.Unlock()
	m.notify()

	go m.resolve(turn.ID, query, sessionID, history)

	return &turn, nil
}

// resolve runs the completion request for a pending turn and applies the
// outcome. The turn is located by id: if it is gone by the time the request
// resolves (the chat was cleared), the result is discarded.
func (m *Manager) resolve(turnID, query, sessionID string, history []chat.Turn) {
	// Detached from the submitting request's context: an in-flight
	// completion outlives the submission call. The client enforces its own
	// timeout.
	ctx := context.Background()

	result, err := m.completer.Complete(ctx, query, sessionID, history)

	m.mu.Lock()
	m.loading = false

	idx := m.indexOf(turnID)
	if idx < 0 {
		m.mu.Unlock()
		m.logger.Debug("discarding resolution for cleared turn", zap.String("message_id", turnID))
		return
	}

	if err != nil {
		m.logger.Error("completion request failed", zap.String("message_id", turnID), zap.Error(err))
		if err := m.messages[idx].Fail(failureMessage); err != nil {
			m.logger.Warn("could not fail turn", zap.String("message_id", turnID), zap.Error(err))
		}
	} else {
		if err := m.messages[idx].Resolve(result.Response); err != nil {
			m.logger.Warn("could not resolve turn", zap.String("message_id", turnID), zap.Error(err))
		}
	}

	m.persistLocked(ctx)
	m.mu.Unlock()
	m.notify()
}

// SelectNode highlights the given turn in the presentation layer. Pass the
// empty string to clear the selection.
func (m *Manager) SelectNode(id string) {
	m.mu.Lock()
	m.selectedNode = id
	m.mu.Unlock()
	m.notify()
}

// ClearChat resets the in-memory conversation: no messages, no active
// session, no selection. Persisted sessions are untouched.
func (m *Manager) ClearChat() {
	m.mu.Lock()
	m.messages = nil
	m.currentSession = ""
	m.sessionCreatedAt = 0
	m.selectedNode = ""
	m.firstMessage = true
	m.mu.Unlock()
	m.notify()
}

// LoadSession replaces the in-memory state with a stored session. If the id
// is not found the current state is left unchanged and the error returned.
func (m *Manager) LoadSession(ctx context.Context, id string) error {
	session, err := m.store.Load(ctx, id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.messages = append([]chat.Turn(nil), session.Messages...)
	m.currentSession = session.ID
	m.sessionCreatedAt = session.CreatedAt
	m.selectedNode = ""
	m.firstMessage = len(session.Messages) == 0

	// Re-save so the current-session pointer follows the loaded session and
	// a restart resumes it.
	m.persistLocked(ctx)
	m.mu.Unlock()
	m.notify()

	return nil
}

// Messages returns a copy of the current turn sequence in submission order.
func (m *Manager) Messages() []chat.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]chat.Turn(nil), m.messages...)
}

// CurrentSession returns the active session id, or "" when no session is
// active.
func (m *Manager) CurrentSession() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentSession
}

// SelectedNode returns the highlighted turn id, or "" when nothing is
// selected.
func (m *Manager) SelectedNode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selectedNode
}

// IsLoading reports whether a completion request is in flight.
func (m *Manager) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// IsFirstMessage reports whether the conversation is still in its pristine
// state. It flips to false shortly after the first submission and returns to
// true only through ClearChat or loading an empty session.
func (m *Manager) IsFirstMessage() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.firstMessage
}

func (m *Manager) clearFirstMessage() {
	m.mu.Lock()
	changed := m.firstMessage
	m.firstMessage = false
	m.mu.Unlock()

	if changed {
		m.notify()
	}
}

// persistLocked writes the whole session to the store. Storage failures are
// logged and swallowed; the in-memory state is authoritative either way.
// Callers must hold m.mu.
func (m *Manager) persistLocked(ctx context.Context) {
	if m.currentSession == "" || len(m.messages) == 0 {
		return
	}

	session := &chat.Session{
		ID:        m.currentSession,
		Title:     chat.TitleFor(m.messages[0].Query),
		Messages:  append([]chat.Turn(nil), m.messages...),
		CreatedAt: m.sessionCreatedAt,
		UpdatedAt: time.Now().UnixMilli(),
	}

	if err := m.store.Save(ctx, session); err != nil {
		m.logger.Warn("failed to persist session",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
	}
}

// indexOf returns the position of a turn in the current sequence, or -1.
// Callers must hold m.mu.
func (m *Manager) indexOf(id string) int {
	for i := range m.messages {
		if m.messages[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) notify() {
	if m.onChange != nil {
		m.onChange()
	}
}
