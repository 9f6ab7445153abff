// Package completion talks to the external completion service that produces
// response text for submitted queries.
package completion

import (
	"context"

	"github.com/mindtrailco/mindtrail/pkg/chat"
)

// Result is a successful completion.
type Result struct {
	Response  string
	MessageID string
	Timestamp int64
}

// Completer obtains generated response text for a query, given the session it
// belongs to and the prior turns as context. Every failure path surfaces as a
// returned error so the caller can mark the turn failed.
type Completer interface {
	Complete(ctx context.Context, query, sessionID string, history []chat.Turn) (*Result, error)
}

// Func adapts a plain function to the Completer interface.
type Func func(ctx context.Context, query, sessionID string, history []chat.Turn) (*Result, error)

func (f Func) Complete(ctx context.Context, query, sessionID string, history []chat.Turn) (*Result, error) {
	return f(ctx, query, sessionID, history)
}
