package chat

import (
	"fmt"
	"time"
)

// DefaultTitle is used for sessions whose first query is empty.
const DefaultTitle = "New Chat"

// titleLimit is the maximum title length in runes.
const titleLimit = 50

// Session is an ordered collection of turns plus metadata. It is the unit of
// persistence: the whole session is serialized and rewritten on every change.
type Session struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Messages  []Turn `json:"messages"`
	CreatedAt int64  `json:"createdAt"` // Unix milliseconds
	UpdatedAt int64  `json:"updatedAt"` // Unix milliseconds
}

// NewSessionID generates a unique session identifier.
func NewSessionID() string {
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), shortID())
}

// TitleFor derives a session title from its first query, truncated to a
// displayable length. Empty input falls back to DefaultTitle.
func TitleFor(query string) string {
	if query == "" {
		return DefaultTitle
	}

	runes := []rune(query)
	if len(runes) > titleLimit {
		return string(runes[:titleLimit])
	}
	return query
}
