// Package http provides the HTTP transport for the pizzabot service.
package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/oventide/pizzabot/internal/domain"
	"github.com/oventide/pizzabot/internal/service"
	"github.com/oventide/pizzabot/internal/stream"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service

	// Pacing for the streaming endpoint; zero means the stream package
	// defaults apply.
	CallDelay    time.Duration
	ContentDelay time.Duration
}

// NewHandler creates a new handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		service: svc,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/agent", h.ProcessMessage)
	e.POST("/api/agent/stream", h.ProcessMessageStream)
	e.DELETE("/api/agent", h.DeleteThread)

	e.GET("/api/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// ProcessMessage runs one turn and returns the resolved response.
// POST /api/agent
func (h *Handler) ProcessMessage(c echo.Context) error {
	var req domain.MessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: "invalid request body"})
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: "message is required"})
	}

	ctx := c.Request().Context()

	result, err := h.service.ProcessMessage(ctx, req.Message, req.ThreadID)
	if err != nil {
		log.Printf("ERROR: failed to process message: %v", err)
		return c.JSON(http.StatusInternalServerError, domain.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, domain.MessageResponse{
		Response:        result.Message.Content,
		ThreadID:        result.ThreadID,
		AuthorName:      result.AuthorName,
		FunctionCalls:   result.FunctionCalls,
		FunctionResults: result.FunctionResults,
	})
}

// ProcessMessageStream runs one turn and streams its events as
// newline-delimited JSON.
// POST /api/agent/stream
func (h *Handler) ProcessMessageStream(c echo.Context) error {
	var req domain.MessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: "invalid request body"})
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: "message is required"})
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "application/json")
	resp.WriteHeader(http.StatusOK)

	var flush func()
	if flusher, ok := resp.Writer.(http.Flusher); ok {
		flush = flusher.Flush
	}

	enc := stream.NewEncoder(resp, flush)
	if h.CallDelay > 0 {
		enc.CallDelay = h.CallDelay
	}
	if h.ContentDelay > 0 {
		enc.ContentDelay = h.ContentDelay
	}

	ctx := c.Request().Context()
	turn := func(ctx context.Context) (*service.TurnResult, error) {
		return h.service.ProcessMessage(ctx, req.Message, req.ThreadID)
	}

	if err := enc.Run(ctx, turn); err != nil {
		// The response is already committed; all we can do is log.
		log.Printf("ERROR: stream aborted: %v", err)
	}
	return nil
}

// DeleteThread removes a conversation thread.
// DELETE /api/agent?threadId=...
func (h *Handler) DeleteThread(c echo.Context) error {
	threadID := c.QueryParam("threadId")
	if threadID == "" {
		return c.JSON(http.StatusBadRequest, domain.ErrorResponse{Error: "threadId is required"})
	}

	if !h.service.DeleteThread(threadID) {
		return c.JSON(http.StatusNotFound, domain.ErrorResponse{Error: "thread not found"})
	}

	return c.JSON(http.StatusOK, domain.DeleteResponse{Success: true})
}
