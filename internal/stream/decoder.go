package stream

import (
	"encoding/json"
	"log"

	"github.com/oventide/pizzabot/internal/domain"
)

// View is the client-side state a decoded stream builds up: the text to
// display, the thread id once known, and the call/result side channel.
type View struct {
	ThreadID        string
	Placeholder     string
	Content         string
	FunctionCalls   []domain.FunctionCall
	FunctionResults []domain.FunctionResult
	Done            bool
	Err             string
}

// Text returns what the display should currently show: the content if
// any has arrived, otherwise the placeholder.
func (v *View) Text() string {
	if v.Content != "" {
		return v.Content
	}
	return v.Placeholder
}

// Decoder recovers discrete JSON event objects from a byte stream whose
// chunk boundaries carry no meaning: a chunk may hold zero, one, or
// several whole or partial objects, split anywhere including mid-escape.
// State carries across Feed calls.
type Decoder struct {
	view *View

	// Framing state. buf holds the partial object in progress; depth,
	// inString and escaped continue exactly where the previous chunk
	// stopped.
	buf      []byte
	depth    int
	inString bool
	escaped  bool

	aborted bool
}

// NewDecoder creates a decoder with an empty view.
func NewDecoder() *Decoder {
	return &Decoder{view: &View{}}
}

// View exposes the accumulated client state.
func (d *Decoder) View() *View {
	return d.view
}

// Abort stops all further dispatch and discards any in-progress partial
// object.
func (d *Decoder) Abort() {
	d.aborted = true
	d.buf = nil
	d.depth = 0
	d.inString = false
	d.escaped = false
}

// Feed consumes one transport chunk. Syntactically valid objects are
// dispatched in order; malformed fragments are logged and dropped
// without aborting the stream.
func (d *Decoder) Feed(chunk []byte) {
	if d.aborted || len(chunk) == 0 {
		return
	}

	// Fast path: the chunk is exactly one whole object and nothing is
	// carried over from the previous chunk.
	if d.depth == 0 && len(d.buf) == 0 {
		var event domain.StreamEvent
		if err := json.Unmarshal(chunk, &event); err == nil {
			d.dispatch(event)
			return
		}
	}

	for _, c := range chunk {
		if d.depth > 0 {
			d.buf = append(d.buf, c)
			if d.escaped {
				d.escaped = false
				continue
			}
			switch c {
			case '\\':
				if d.inString {
					d.escaped = true
				}
			case '"':
				d.inString = !d.inString
			case '{':
				if !d.inString {
					d.depth++
				}
			case '}':
				if !d.inString {
					d.depth--
					if d.depth == 0 {
						d.parseAndDispatch(d.buf)
						d.buf = d.buf[:0]
					}
				}
			}
			continue
		}

		// Outside any object: only an opening brace starts one; other
		// bytes (newlines, stray separators) are skipped.
		if c == '{' {
			d.depth = 1
			d.inString = false
			d.escaped = false
			d.buf = append(d.buf[:0], c)
		}
	}
}

func (d *Decoder) parseAndDispatch(raw []byte) {
	var event domain.StreamEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		log.Printf("WARN: dropping malformed stream fragment: %v", err)
		return
	}
	d.dispatch(event)
}

func (d *Decoder) dispatch(event domain.StreamEvent) {
	switch event.Type {
	case domain.EventTypeMetadata:
		// The thread id is set exactly once; later metadata is ignored.
		if d.view.ThreadID == "" {
			d.view.ThreadID = event.ThreadID
		}
	case domain.EventTypeInit:
		d.view.Placeholder = event.Content
	case domain.EventTypeFunctionCall:
		if event.FunctionCall != nil {
			d.view.FunctionCalls = append(d.view.FunctionCalls, *event.FunctionCall)
		}
	case domain.EventTypeFunctionResult:
		if event.FunctionResult != nil {
			d.view.FunctionResults = append(d.view.FunctionResults, *event.FunctionResult)
		}
	case domain.EventTypeContent:
		// Payloads are cumulative prefixes, so replace rather than append.
		d.view.Content = event.Content
	case domain.EventTypeDone:
		d.view.Done = true
	case domain.EventTypeError:
		d.view.Err = event.Error
		d.view.Done = true
	default:
		// Forward compatibility: an unknown type carrying content is
		// treated as a content event.
		if event.Content != "" {
			d.view.Content = event.Content
		}
	}
}
