package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/youruser/ragchat/internal/api"
)

type stubSessions struct{ id string }

func (s stubSessions) GetOrCreate(ctx context.Context) string { return s.id }

// recordingGate records the moment AwaitIdle returns, optionally blocking
// until released first.
type recordingGate struct {
	mu       sync.Mutex
	release  chan struct{} // nil means never blocks
	returned time.Time
}

func (g *recordingGate) AwaitIdle(ctx context.Context) error {
	if g.release != nil {
		select {
		case <-g.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	g.mu.Lock()
	g.returned = time.Now()
	g.mu.Unlock()
	return nil
}

// fakeClient scripts the streaming body and records call times.
type fakeClient struct {
	mu         sync.Mutex
	body       string
	streamErr  error
	resp       *api.PromptResponse
	promptErr  error
	requests   []api.PromptRequest
	streamedAt time.Time
	started    chan struct{} // if set, closed when PromptStream is entered
	release    chan struct{} // if set, PromptStream blocks until closed
}

func (f *fakeClient) PromptStream(ctx context.Context, req api.PromptRequest) (io.ReadCloser, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.streamedAt = time.Now()
	started := f.started
	release := f.release
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		<-release
	}
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return io.NopCloser(strings.NewReader(f.body)), nil
}

func (f *fakeClient) Prompt(ctx context.Context, req api.PromptRequest) (*api.PromptResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.promptErr != nil {
		return nil, f.promptErr
	}
	return f.resp, nil
}

func newController(client *fakeClient) *Controller {
	return NewController(NewLog(), stubSessions{id: "sess-1"}, &recordingGate{}, client)
}

func TestSubmitAppendsUserAndPlaceholderWithSameTimestamp(t *testing.T) {
	client := &fakeClient{body: "data: Hello"}
	c := newController(client)

	if err := c.Submit(context.Background(), "  what is up?  ", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs := c.Log().Messages()
	if len(msgs) != 2 {
		t.Fatalf("len(messages) = %d, want 2", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Content != "what is up?" {
		t.Errorf("user message = %+v, want trimmed prompt", msgs[0])
	}
	if msgs[0].Placeholder {
		t.Error("user message must be finalized immediately")
	}
	if msgs[1].Role != RoleAssistant {
		t.Errorf("second message role = %q, want assistant", msgs[1].Role)
	}
	if msgs[0].Timestamp != msgs[1].Timestamp {
		t.Errorf("timestamps differ: %q vs %q", msgs[0].Timestamp, msgs[1].Timestamp)
	}
	if client.requests[0].Timestamp != msgs[0].Timestamp {
		t.Errorf("request timestamp %q != message timestamp %q", client.requests[0].Timestamp, msgs[0].Timestamp)
	}
	if client.requests[0].Prompt != "what is up?" {
		t.Errorf("request prompt = %q, want trimmed", client.requests[0].Prompt)
	}
	if client.requests[0].SessionID != "sess-1" {
		t.Errorf("request session = %q, want sess-1", client.requests[0].SessionID)
	}
}

func TestSubmitEmptyPrompt(t *testing.T) {
	client := &fakeClient{body: "data: never"}
	c := newController(client)

	for _, prompt := range []string{"", "   ", "\n\t"} {
		if err := c.Submit(context.Background(), prompt, nil); !errors.Is(err, ErrEmptyPrompt) {
			t.Errorf("Submit(%q) = %v, want ErrEmptyPrompt", prompt, err)
		}
	}

	if c.Log().Len() != 0 {
		t.Errorf("log length = %d, want 0", c.Log().Len())
	}
	if len(client.requests) != 0 {
		t.Errorf("network calls = %d, want 0", len(client.requests))
	}
}

func TestSubmitStreamsIntoPlaceholder(t *testing.T) {
	client := &fakeClient{body: "data: Hello world"}
	c := newController(client)

	var sawPlaceholderClear bool
	err := c.Submit(context.Background(), "hi", func(m Message) {
		if m.Content != "" && !m.Placeholder {
			sawPlaceholderClear = true
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	final := c.Log().Messages()[1]
	if final.Content != "Hello world" {
		t.Errorf("content = %q, want %q", final.Content, "Hello world")
	}
	if final.Placeholder {
		t.Error("placeholder should be resolved")
	}
	if !sawPlaceholderClear {
		t.Error("placeholder never observed clearing during streaming")
	}
	if c.Loading() {
		t.Error("Loading = true after completion")
	}
}

func TestSubmitWaitsForUploads(t *testing.T) {
	gate := &recordingGate{release: make(chan struct{})}
	client := &fakeClient{body: "data: ok"}
	c := NewController(NewLog(), stubSessions{id: "sess-1"}, gate, client)

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background(), "hi", nil) }()

	// The streaming call must not be issued while the gate is closed.
	time.Sleep(50 * time.Millisecond)
	client.mu.Lock()
	calls := len(client.requests)
	client.mu.Unlock()
	if calls != 0 {
		t.Fatal("streaming call issued before uploads finished")
	}

	close(gate.release)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gate.mu.Lock()
	gateReturned := gate.returned
	gate.mu.Unlock()
	client.mu.Lock()
	streamedAt := client.streamedAt
	client.mu.Unlock()

	if streamedAt.Before(gateReturned) {
		t.Error("streaming call issued before upload gate opened")
	}
}

func TestSubmitFailureMarksPlaceholderFailed(t *testing.T) {
	client := &fakeClient{streamErr: errors.New("backend down")}
	c := newController(client)

	err := c.Submit(context.Background(), "hi", nil)
	if err == nil {
		t.Fatal("expected error")
	}

	msgs := c.Log().Messages()
	if len(msgs) != 2 {
		t.Fatalf("log length = %d, want 2 (no rollback message)", len(msgs))
	}
	assistant := msgs[1]
	if assistant.Placeholder {
		t.Error("failed turn must not leave an unresolved placeholder")
	}
	if !assistant.Failed {
		t.Error("assistant message should be marked failed")
	}
	if c.Loading() {
		t.Error("Loading must clear after a failure")
	}
}

func TestSubmitRejectsConcurrentTurn(t *testing.T) {
	client := &fakeClient{
		body:    "data: slow",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	c := newController(client)

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background(), "first", nil) }()
	<-client.started

	if err := c.Submit(context.Background(), "second", nil); !errors.Is(err, ErrBusy) {
		t.Errorf("second Submit = %v, want ErrBusy", err)
	}
	if !c.Loading() {
		t.Error("Loading = false while a turn is in flight")
	}

	close(client.release)
	if err := <-done; err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}

	// Log holds only the first turn's pair plus nothing from the rejected one.
	if got := c.Log().Len(); got != 2 {
		t.Errorf("log length = %d, want 2", got)
	}
}

func TestSubmitWaitAppliesAtomicReply(t *testing.T) {
	client := &fakeClient{resp: &api.PromptResponse{
		LLMResponse: "full answer",
		Timestamp:   "2026-01-02T15:04:06Z",
	}}
	c := newController(client)

	updates := 0
	err := c.SubmitWait(context.Background(), "hi", func(Message) { updates++ })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assistant := c.Log().Messages()[1]
	if assistant.Content != "full answer" {
		t.Errorf("content = %q, want %q", assistant.Content, "full answer")
	}
	if assistant.Timestamp != "2026-01-02T15:04:06Z" {
		t.Errorf("timestamp = %q, want backend value", assistant.Timestamp)
	}
	if assistant.Placeholder {
		t.Error("placeholder should be resolved")
	}
	if updates != 1 {
		t.Errorf("updates = %d, want single atomic apply", updates)
	}
}

func TestSubmitEmptyStreamResolvesEmptyMessage(t *testing.T) {
	client := &fakeClient{body: ""}
	c := newController(client)

	if err := c.Submit(context.Background(), "hi", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assistant := c.Log().Messages()[1]
	if assistant.Placeholder {
		t.Error("zero-chunk stream should still resolve the placeholder")
	}
	if assistant.Content != "" {
		t.Errorf("content = %q, want empty", assistant.Content)
	}
	if assistant.Failed {
		t.Error("empty stream is not a failure")
	}
}
