// Package server exposes the flowchart chat API: message submission, the
// positioned conversation graph, session management, and the mock completion
// endpoint standing in for a real model backend.
package server

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/mindtrailco/mindtrail/pkg/chat"
	"github.com/mindtrailco/mindtrail/pkg/completion"
	"github.com/mindtrailco/mindtrail/pkg/layout"
	"github.com/mindtrailco/mindtrail/pkg/session"
	"github.com/mindtrailco/mindtrail/pkg/storage"
)

// Server is the chat HTTP server. It owns the session manager and the
// persistence store; the layout engine is invoked per request since it is a
// pure function of the turn sequence.
type Server struct {
	config  Config
	store   storage.Store
	manager *session.Manager
	logger  *zap.Logger
	server  *fiber.App

	// rand.Rand is not safe for concurrent use and fiber runs handlers on
	// multiple goroutines, so every draw takes rngMu.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates a new Server.
func New(config Config, logger *zap.Logger) (*Server, error) {
	var store storage.Store
	var err error

	if config.DBPath != "" {
		store, err = storage.NewSQLiteStore(config.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite store: %w", err)
		}
		logger.Info("using SQLite storage", zap.String("path", config.DBPath))
	} else {
		store = storage.NewMemoryStore()
		logger.Info("using in-memory storage")
	}

	completionURL := config.CompletionURL
	if completionURL == "" {
		completionURL = selfURL(config.ListenAddr)
		logger.Info("using built-in mock completion service", zap.String("url", completionURL))
	}

	manager := session.NewManager(store, completion.NewClient(completionURL), logger)
	manager.Restore(context.Background())

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})

	s := &Server{
		config:  config,
		store:   store,
		manager: manager,
		logger:  logger,
		server:  app,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	s.routes(app)

	return s, nil
}

// routes registers all HTTP handlers.
func (s *Server) routes(app *fiber.App) {
	// Mock completion service (the "AI" backend)
	app.Post("/api/chat", s.handleCompletion)

	// Conversation state
	app.Post("/api/messages", s.handleSendMessage)
	app.Get("/api/messages", s.handleGetMessages)
	app.Delete("/api/messages", s.handleClearChat)
	app.Get("/api/graph", s.handleGetGraph)
	app.Put("/api/selection", s.handleSelectNode)
	app.Get("/api/selection", s.handleGetSelection)

	// Session management
	app.Get("/api/sessions", s.handleListSessions)
	app.Get("/api/sessions/:id", s.handleGetSession)
	app.Delete("/api/sessions/:id", s.handleDeleteSession)
	app.Post("/api/sessions/:id/activate", s.handleActivateSession)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting chat server",
		zap.String("listen", s.config.ListenAddr),
	)

	return s.server.Listen(s.config.ListenAddr)
}

// Close shuts down the server and releases resources.
func (s *Server) Close() error {
	return s.store.Close()
}

// SendMessageRequest is the body of POST /api/messages.
type SendMessageRequest struct {
	Query string `json:"query"`
}

// StateResponse is the conversation state returned by GET /api/messages.
type StateResponse struct {
	Messages       []chat.Turn `json:"messages"`
	CurrentSession string      `json:"currentSession,omitempty"`
	SelectedNode   string      `json:"selectedNode,omitempty"`
	IsLoading      bool        `json:"isLoading"`
	IsFirstMessage bool        `json:"isFirstMessage"`
}

// SelectionRequest is the body of PUT /api/selection. An empty id clears the
// selection.
type SelectionRequest struct {
	ID string `json:"id"`
}

// handleSendMessage submits a query. The response carries the new pending
// turn; its resolution is observable through subsequent state reads.
func (s *Server) handleSendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(chat.ErrorResponse{Error: "invalid request body"})
	}

	turn, err := s.manager.SendMessage(c.Context(), req.Query)
	if err != nil {
		if err == session.ErrEmptyQuery {
			return c.Status(fiber.StatusBadRequest).JSON(chat.ErrorResponse{Error: "query must not be empty"})
		}
		s.logger.Error("failed to send message", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(chat.ErrorResponse{Error: "failed to send message"})
	}

	return c.Status(fiber.StatusAccepted).JSON(turn)
}

// handleGetMessages returns the current turn sequence and UI flags.
func (s *Server) handleGetMessages(c *fiber.Ctx) error {
	return c.JSON(s.state())
}

// handleClearChat resets the in-memory conversation. Persisted sessions are
// untouched.
func (s *Server) handleClearChat(c *fiber.Ctx) error {
	s.manager.ClearChat()
	return c.JSON(s.state())
}

// handleGetGraph returns the positioned flowchart for the current turns.
func (s *Server) handleGetGraph(c *fiber.Ctx) error {
	return c.JSON(layout.Layout(s.manager.Messages()))
}

// handleSelectNode sets the highlighted turn.
func (s *Server) handleSelectNode(c *fiber.Ctx) error {
	var req SelectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(chat.ErrorResponse{Error: "invalid request body"})
	}

	s.manager.SelectNode(req.ID)
	return c.JSON(SelectionRequest{ID: s.manager.SelectedNode()})
}

// handleGetSelection returns the highlighted turn id, if any.
func (s *Server) handleGetSelection(c *fiber.Ctx) error {
	return c.JSON(SelectionRequest{ID: s.manager.SelectedNode()})
}

// handleListSessions returns all stored sessions, most recently updated
// first.
func (s *Server) handleListSessions(c *fiber.Ctx) error {
	sessions, err := s.store.ListAll(c.Context())
	if err != nil {
		s.logger.Error("failed to list sessions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(chat.ErrorResponse{Error: "failed to list sessions"})
	}

	current, err := s.store.CurrentSessionID(c.Context())
	if err != nil {
		s.logger.Warn("failed to read current session pointer", zap.Error(err))
	}

	return c.JSON(map[string]any{
		"count":          len(sessions),
		"currentSession": current,
		"sessions":       sessions,
	})
}

// handleGetSession returns a single stored session.
func (s *Server) handleGetSession(c *fiber.Ctx) error {
	id := c.Params("id")

	sess, err := s.store.Load(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(chat.ErrorResponse{Error: "session not found"})
	}

	return c.JSON(sess)
}

// handleDeleteSession removes a stored session. The in-memory conversation
// keeps running even if it belonged to the deleted session.
func (s *Server) handleDeleteSession(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := s.store.Delete(c.Context(), id); err != nil {
		s.logger.Error("failed to delete session", zap.String("session_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(chat.ErrorResponse{Error: "failed to delete session"})
	}

	return c.JSON(map[string]string{"deleted": id})
}

// handleActivateSession loads a stored session into the manager.
func (s *Server) handleActivateSession(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := s.manager.LoadSession(c.Context(), id); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(chat.ErrorResponse{Error: "session not found"})
	}

	return c.JSON(s.state())
}

func (s *Server) state() StateResponse {
	return StateResponse{
		Messages:       s.manager.Messages(),
		CurrentSession: s.manager.CurrentSession(),
		SelectedNode:   s.manager.SelectedNode(),
		IsLoading:      s.manager.IsLoading(),
		IsFirstMessage: s.manager.IsFirstMessage(),
	}
}

// selfURL converts a listen address into a base URL the completion client
// can dial.
func selfURL(listenAddr string) string {
	if strings.HasPrefix(listenAddr, ":") {
		return "http://127.0.0.1" + listenAddr
	}
	return "http://" + listenAddr
}
