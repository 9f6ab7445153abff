package chat

// CompletionResponse is the body returned by the completion service on success.
type CompletionResponse struct {
	Response  string `json:"response"`  // Generated response text
	MessageID string `json:"messageId"` // Service-side identifier for the reply
	Timestamp int64  `json:"timestamp"` // Unix milliseconds
}
