// Package stream implements the wire protocol for streamed turns: an
// ordered sequence of typed JSON objects on the server side, and a
// framing decoder on the client side that recovers those objects from
// arbitrarily-chunked bytes.
package stream

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/oventide/pizzabot/internal/domain"
	"github.com/oventide/pizzabot/internal/service"
)

// Pacing defaults between events, giving a UI the chance to render
// progressively.
const (
	DefaultCallDelay    = 100 * time.Millisecond
	DefaultContentDelay = 50 * time.Millisecond
)

// contentChunkWords is the reveal granularity of the final text.
const contentChunkWords = 3

// initPlaceholder seeds the client display while the turn resolves.
const initPlaceholder = "Thinking..."

// TurnFunc resolves one orchestrator turn.
type TurnFunc func(ctx context.Context) (*service.TurnResult, error)

// Encoder serializes one turn as newline-delimited JSON events.
type Encoder struct {
	w     io.Writer
	flush func()

	// CallDelay paces functionCall/functionResult events; ContentDelay
	// paces content chunks. Tests set both to zero.
	CallDelay    time.Duration
	ContentDelay time.Duration
}

// NewEncoder creates an Encoder writing to w. flush may be nil; when
// set it is called after every event so chunks reach the client
// immediately.
func NewEncoder(w io.Writer, flush func()) *Encoder {
	return &Encoder{
		w:            w,
		flush:        flush,
		CallDelay:    DefaultCallDelay,
		ContentDelay: DefaultContentDelay,
	}
}

// Run drives one turn and emits its events in the fixed order: init,
// metadata (once, after the turn has fully resolved), the recorded
// call/result pairs, cumulative content prefixes in three-word steps,
// and a terminal done, or a single error event if the turn fails.
func (e *Encoder) Run(ctx context.Context, turn TurnFunc) error {
	if err := e.write(domain.StreamEvent{Type: domain.EventTypeInit, Content: initPlaceholder}); err != nil {
		return err
	}

	result, err := turn(ctx)
	if err != nil {
		return e.write(domain.StreamEvent{Type: domain.EventTypeError, Error: err.Error()})
	}

	if err := e.write(domain.StreamEvent{Type: domain.EventTypeMetadata, ThreadID: result.ThreadID}); err != nil {
		return err
	}

	for i := range result.FunctionCalls {
		call := result.FunctionCalls[i]
		if err := e.pause(ctx, e.CallDelay); err != nil {
			return err
		}
		if err := e.write(domain.StreamEvent{Type: domain.EventTypeFunctionCall, FunctionCall: &call}); err != nil {
			return err
		}
		if i < len(result.FunctionResults) {
			fnResult := result.FunctionResults[i]
			if err := e.pause(ctx, e.CallDelay); err != nil {
				return err
			}
			if err := e.write(domain.StreamEvent{Type: domain.EventTypeFunctionResult, FunctionResult: &fnResult}); err != nil {
				return err
			}
		}
	}

	words := strings.Fields(result.Message.Content)
	prefix := ""
	if result.AuthorName != "" {
		prefix = "[" + result.AuthorName + "] "
	}
	for i := 0; i < len(words); i += contentChunkWords {
		end := i + contentChunkWords
		if end > len(words) {
			end = len(words)
		}
		accumulated := prefix + strings.Join(words[:end], " ")
		if err := e.write(domain.StreamEvent{Type: domain.EventTypeContent, Content: accumulated}); err != nil {
			return err
		}
		if err := e.pause(ctx, e.ContentDelay); err != nil {
			return err
		}
	}

	return e.write(domain.StreamEvent{Type: domain.EventTypeDone})
}

func (e *Encoder) write(event domain.StreamEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(append(data, '\n')); err != nil {
		return err
	}
	if e.flush != nil {
		e.flush()
	}
	return nil
}

func (e *Encoder) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
