package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/mindtrailco/mindtrail/pkg/chat"
)

// mockOpeners are the canned response openers the mock completion service
// rotates through. A real model backend replaces this endpoint wholesale.
var mockOpeners = []string{
	"I'd be happy to help you with that! Based on your query, here's what I can tell you...",
	"That's a great question! Let me break this down for you step by step.",
	"Here's a detailed explanation of what you're asking about:",
	"I understand what you're looking for. Here's my analysis:",
	"Based on the information provided, I can suggest the following approach:",
}

// completionRequestBody mirrors chat.CompletionRequest but leaves the query
// untyped so a missing or non-string value can be rejected explicitly.
type completionRequestBody struct {
	Query     any             `json:"query"`
	SessionID string          `json:"sessionId"`
	Context   json.RawMessage `json:"context"`
}

// handleCompletion is the mock completion service: it validates the request,
// waits an artificial thinking delay, and returns a canned response built
// from the query.
func (s *Server) handleCompletion(c *fiber.Ctx) error {
	var req completionRequestBody
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(chat.ErrorResponse{Error: "invalid request body"})
	}

	query, ok := req.Query.(string)
	if !ok || query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(chat.ErrorResponse{Error: "Query is required and must be a string"})
	}

	delay := s.thinkingDelay()
	s.logger.Debug("mock completion request",
		zap.String("session_id", req.SessionID),
		zap.String("query_preview", truncate(query, 50)),
		zap.Duration("delay", delay),
	)

	if delay > 0 {
		time.Sleep(delay)
	}

	return c.JSON(chat.CompletionResponse{
		Response:  s.mockResponse(query),
		MessageID: chat.NewTurnID(),
		Timestamp: time.Now().UnixMilli(),
	})
}

// thinkingDelay picks a random delay within the configured bounds.
func (s *Server) thinkingDelay() time.Duration {
	min := s.config.MinResponseDelay.Duration
	max := s.config.MaxResponseDelay.Duration
	if max <= min {
		return min
	}

	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return min + time.Duration(s.rng.Int63n(int64(max-min)))
}

// mockResponse builds a canned response that echoes the query.
func (s *Server) mockResponse(query string) string {
	s.rngMu.Lock()
	opener := mockOpeners[s.rng.Intn(len(mockOpeners))]
	s.rngMu.Unlock()

	return fmt.Sprintf("%s\n\nRegarding %q, I would say that this is an interesting topic "+
		"that requires careful consideration. Here are a few key points:\n\n"+
		"1. First, it's important to understand the context\n"+
		"2. Second, we should consider multiple perspectives\n"+
		"3. Finally, we can draw conclusions based on the evidence\n\n"+
		"Let me know if you'd like me to elaborate on any of these points!",
		opener, truncate(query, 50))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
