// Package chat provides the internal representations of conversation turns,
// sessions, and completion-service requests and responses.
package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a Turn.
type Status string

const (
	// StatusPending is the initial state: the query has been submitted but
	// the completion service has not resolved yet.
	StatusPending Status = "pending"

	// StatusComplete is terminal: the completion service returned a response.
	StatusComplete Status = "complete"

	// StatusError is terminal: the completion service failed.
	StatusError Status = "error"
)

// ErrNotPending is returned when a terminal turn is asked to transition again.
var ErrNotPending = errors.New("turn is not pending")

// Turn represents a single query/response pair in a conversation.
// ID, Query and Timestamp are fixed at creation; only Status, Response and
// Error change afterwards, and only through Resolve and Fail.
type Turn struct {
	ID        string `json:"id"`
	Query     string `json:"query"`
	Response  string `json:"response"`
	Timestamp int64  `json:"timestamp"` // Unix milliseconds
	Status    Status `json:"status"`
	Error     string `json:"error,omitempty"` // Set only when Status is StatusError
}

// NewTurn creates a pending turn for the given query.
func NewTurn(query string) Turn {
	return Turn{
		ID:        NewTurnID(),
		Query:     query,
		Timestamp: time.Now().UnixMilli(),
		Status:    StatusPending,
	}
}

// NewTurnID generates a unique message identifier.
func NewTurnID() string {
	return fmt.Sprintf("msg_%d_%s", time.Now().UnixMilli(), shortID())
}

// Resolve transitions a pending turn to complete with the given response.
func (t *Turn) Resolve(response string) error {
	if t.Status != StatusPending {
		return ErrNotPending
	}

	t.Response = response
	t.Status = StatusComplete
	return nil
}

// Fail transitions a pending turn to error with a user-facing message.
// The response stays empty.
func (t *Turn) Fail(message string) error {
	if t.Status != StatusPending {
		return ErrNotPending
	}

	t.Error = message
	t.Status = StatusError
	return nil
}

// shortID returns a compact random suffix for identifiers.
func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}
