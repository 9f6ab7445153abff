package chat

// ErrorResponse represents an error body from the HTTP API.
type ErrorResponse struct {
	Error string `json:"error"`
}
