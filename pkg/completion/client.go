package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mindtrailco/mindtrail/pkg/chat"
)

// DefaultTimeout bounds a single completion request so a turn can't stay
// pending indefinitely.
const DefaultTimeout = 2 * time.Minute

// Client is an HTTP Completer. It POSTs the query plus conversation context
// to the service's /api/chat endpoint and decodes the JSON reply.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Complete sends the query to the completion service and returns its result.
func (c *Client) Complete(ctx context.Context, query, sessionID string, history []chat.Turn) (*Result, error) {
	reqBody, err := json.Marshal(chat.CompletionRequest{
		Query:     query,
		SessionID: sessionID,
		Context:   history,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		var errResp chat.ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("completion service returned %d: %s", httpResp.StatusCode, errResp.Error)
		}
		return nil, fmt.Errorf("completion service returned %d", httpResp.StatusCode)
	}

	var resp chat.CompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Response == "" {
		return nil, fmt.Errorf("completion service returned an empty response")
	}

	return &Result{
		Response:  resp.Response,
		MessageID: resp.MessageID,
		Timestamp: resp.Timestamp,
	}, nil
}
