// Package service is the orchestrator façade: it owns the thread
// store, routes each inbound message to a responder, drives the
// responder's turn, and hands back the final message with its thread.
package service

import (
	"context"
	"fmt"

	"github.com/oventide/pizzabot/internal/agent"
	"github.com/oventide/pizzabot/internal/domain"
	"github.com/oventide/pizzabot/internal/router"
	"github.com/oventide/pizzabot/internal/thread"
)

// TurnResult is what one complete turn produces.
type TurnResult struct {
	Message         domain.Message
	ThreadID        string
	AuthorName      string
	FunctionCalls   []domain.FunctionCall
	FunctionResults []domain.FunctionResult
}

// Service orchestrates turns across responders.
type Service struct {
	threads    *thread.Store
	router     *router.Router
	responders map[router.ResponderID]*agent.Agent
}

// New creates a Service. The responders map must cover every id the
// router can return.
func New(threads *thread.Store, rt *router.Router, responders map[router.ResponderID]*agent.Agent) *Service {
	return &Service{
		threads:    threads,
		router:     rt,
		responders: responders,
	}
}

// ProcessMessage runs one turn: get or create the thread, select the
// responder, drive it to completion. An empty message is an input error
// and never enters the responder loop.
func (s *Service) ProcessMessage(ctx context.Context, text, threadID string) (*TurnResult, error) {
	if text == "" {
		return nil, fmt.Errorf("message is required")
	}

	th, _ := s.threads.GetOrCreate(threadID)

	id := s.router.Select(text)
	responder, ok := s.responders[id]
	if !ok {
		return nil, fmt.Errorf("no responder registered for %q", id)
	}

	result := responder.ProcessMessage(ctx, th, text)

	return &TurnResult{
		Message:         result.Message,
		ThreadID:        th.ID,
		AuthorName:      responder.Name,
		FunctionCalls:   result.FunctionCalls,
		FunctionResults: result.FunctionResults,
	}, nil
}

// DeleteThread removes a thread, reporting whether it existed.
func (s *Service) DeleteThread(id string) bool {
	return s.threads.Delete(id)
}
