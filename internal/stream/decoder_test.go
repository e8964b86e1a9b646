package stream

import (
	"bytes"
	"context"
	"testing"
)

func encodedTurn(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := newTestEncoder(&buf)
	if err := enc.Run(context.Background(), successTurn()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return buf.Bytes()
}

func checkView(t *testing.T, view *View) {
	t.Helper()
	if view.ThreadID != "thread_ab12cd34" {
		t.Fatalf("thread id: %q", view.ThreadID)
	}
	if view.Content != "[MenuAgent] We have five pizzas on the menu today" {
		t.Fatalf("content: %q", view.Content)
	}
	if len(view.FunctionCalls) != 1 || view.FunctionCalls[0].Name != "get_pizzas" {
		t.Fatalf("calls: %+v", view.FunctionCalls)
	}
	if len(view.FunctionResults) != 1 {
		t.Fatalf("results: %+v", view.FunctionResults)
	}
	if !view.Done {
		t.Fatal("view should be done")
	}
	if view.Err != "" {
		t.Fatalf("unexpected error: %q", view.Err)
	}
}

func TestDecoderWholeStream(t *testing.T) {
	d := NewDecoder()
	d.Feed(encodedTurn(t))
	checkView(t, d.View())
}

// Fidelity must not depend on where the transport cuts the byte stream:
// feeding the exact same bytes split at every possible boundary has to
// produce the identical view.
func TestDecoderEveryChunkBoundary(t *testing.T) {
	data := encodedTurn(t)

	for cut := 1; cut < len(data); cut++ {
		d := NewDecoder()
		d.Feed(data[:cut])
		d.Feed(data[cut:])
		checkView(t, d.View())
	}
}

func TestDecoderByteAtATime(t *testing.T) {
	data := encodedTurn(t)

	d := NewDecoder()
	for i := range data {
		d.Feed(data[i : i+1])
	}
	checkView(t, d.View())
}

func TestDecoderMalformedFragmentDropped(t *testing.T) {
	d := NewDecoder()
	d.Feed([]byte(`{"type": "init", "content": "Thinking..."}` + "\n"))
	d.Feed([]byte(`{"type": }` + "\n"))
	d.Feed([]byte(`{"type": "content", "content": "hello"}` + "\n"))

	view := d.View()
	if view.Placeholder != "Thinking..." {
		t.Fatalf("placeholder lost: %q", view.Placeholder)
	}
	if view.Content != "hello" {
		t.Fatalf("later events must still dispatch, got %q", view.Content)
	}
}

func TestDecoderMetadataSetOnce(t *testing.T) {
	d := NewDecoder()
	d.Feed([]byte(`{"type": "metadata", "threadId": "thread_first"}` + "\n"))
	d.Feed([]byte(`{"type": "metadata", "threadId": "thread_second"}` + "\n"))

	if got := d.View().ThreadID; got != "thread_first" {
		t.Fatalf("thread id must be set once, got %q", got)
	}
}

func TestDecoderUnknownTypeWithContent(t *testing.T) {
	d := NewDecoder()
	d.Feed([]byte(`{"type": "partial", "content": "forward compatible"}` + "\n"))

	if got := d.View().Content; got != "forward compatible" {
		t.Fatalf("unknown type with content should update content, got %q", got)
	}
}

func TestDecoderErrorEvent(t *testing.T) {
	d := NewDecoder()
	d.Feed([]byte(`{"type": "error", "error": "backend unavailable"}` + "\n"))

	view := d.View()
	if view.Err != "backend unavailable" || !view.Done {
		t.Fatalf("error event must terminate the view: %+v", view)
	}
}

func TestDecoderAbortDiscardsPartialState(t *testing.T) {
	d := NewDecoder()
	d.Feed([]byte(`{"type": "content", "con`))
	d.Abort()
	d.Feed([]byte(`tent": "late"}` + "\n"))
	d.Feed([]byte(`{"type": "done"}` + "\n"))

	view := d.View()
	if view.Content != "" || view.Done {
		t.Fatalf("nothing may dispatch after abort: %+v", view)
	}
}

func TestDecoderBracesInsideStrings(t *testing.T) {
	d := NewDecoder()
	payload := `{"type": "content", "content": "set {a} and \"q\" }{"}` + "\n"
	half := len(payload) / 2
	d.Feed([]byte(payload[:half]))
	d.Feed([]byte(payload[half:]))

	if got := d.View().Content; got != `set {a} and "q" }{` {
		t.Fatalf("string-aware framing failed: %q", got)
	}
}

func TestViewTextFallsBackToPlaceholder(t *testing.T) {
	v := &View{Placeholder: "Thinking..."}
	if v.Text() != "Thinking..." {
		t.Fatalf("unexpected text: %q", v.Text())
	}
	v.Content = "[MenuAgent] hi"
	if v.Text() != "[MenuAgent] hi" {
		t.Fatalf("unexpected text: %q", v.Text())
	}
}

func TestDecoderIgnoresInterObjectNoise(t *testing.T) {
	d := NewDecoder()
	d.Feed([]byte("\n\n  " + `{"type": "done"}` + "  \n"))
	if !d.View().Done {
		t.Fatal("object surrounded by noise should still dispatch")
	}
}
