package chat

// CompletionRequest is the body sent to the completion service.
type CompletionRequest struct {
	Query     string `json:"query"`     // The user's submitted text
	SessionID string `json:"sessionId"` // Session the query belongs to
	Context   []Turn `json:"context"`   // Prior turns, oldest first
}
