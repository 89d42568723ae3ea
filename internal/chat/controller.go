package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/youruser/ragchat/internal/api"
	"github.com/youruser/ragchat/internal/logging"
	"github.com/youruser/ragchat/internal/stream"
)

var (
	ErrEmptyPrompt = errors.New("empty prompt")
	ErrBusy        = errors.New("a prompt is already in flight")

	log = logging.Get()
)

// turnState tracks the single outstanding turn.
type turnState int

const (
	stateIdle turnState = iota
	stateSubmitting
	stateAwaitingUploads
	stateStreaming
)

// PromptClient issues prompt calls against the backend. Implemented by
// api.Client.
type PromptClient interface {
	PromptStream(ctx context.Context, req api.PromptRequest) (io.ReadCloser, error)
	Prompt(ctx context.Context, req api.PromptRequest) (*api.PromptResponse, error)
}

// Sessions supplies the session identifier for outgoing requests.
type Sessions interface {
	GetOrCreate(ctx context.Context) string
}

// UploadGate blocks a turn until no upload is in flight.
type UploadGate interface {
	AwaitIdle(ctx context.Context) error
}

// UpdateFunc is invoked with the current assistant message after each
// streamed chunk and once on finalization.
type UpdateFunc func(Message)

// Controller orchestrates one conversation turn end to end: validate,
// append the user/placeholder pair, wait for uploads, stream the reply
// into the placeholder, finalize. Only one turn may run at a time; this is
// enforced here, not just by UI disablement.
type Controller struct {
	log      *Log
	sessions Sessions
	uploads  UploadGate
	client   PromptClient

	mu    sync.Mutex
	state turnState
}

// NewController wires a controller over its collaborators.
func NewController(convLog *Log, sessions Sessions, uploads UploadGate, client PromptClient) *Controller {
	return &Controller{
		log:      convLog,
		sessions: sessions,
		uploads:  uploads,
		client:   client,
	}
}

// Log returns the conversation log the controller mutates.
func (c *Controller) Log() *Log {
	return c.log
}

// Loading reports whether a turn is in flight. Drives input disablement.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != stateIdle
}

// begin moves Idle -> Submitting; any other state rejects the turn.
func (c *Controller) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateIdle {
		return false
	}
	c.state = stateSubmitting
	return true
}

func (c *Controller) setState(s turnState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// start validates the prompt, claims the single turn slot, and appends the
// user message and assistant placeholder, both stamped with the same
// timestamp that the request body will carry.
func (c *Controller) start(prompt string) (trimmed, ts string, h Handle, err error) {
	trimmed = strings.TrimSpace(prompt)
	if trimmed == "" {
		return "", "", 0, ErrEmptyPrompt
	}
	if !c.begin() {
		return "", "", 0, ErrBusy
	}

	ts = time.Now().UTC().Format(time.RFC3339)

	c.log.Append(Message{Role: RoleUser, Content: trimmed, Timestamp: ts})
	h = c.log.Append(Message{Role: RoleAssistant, Content: "", Timestamp: ts, Placeholder: true})
	return trimmed, ts, h, nil
}

// Submit runs one streaming turn. onUpdate (optional) observes the
// assistant message as it grows. On failure the placeholder is resolved
// and marked failed in place; the log length does not change and partial
// content is kept.
func (c *Controller) Submit(ctx context.Context, prompt string, onUpdate UpdateFunc) error {
	trimmed, ts, h, err := c.start(prompt)
	if err != nil {
		return err
	}
	defer c.setState(stateIdle)

	sessionID := c.sessions.GetOrCreate(ctx)
	if sessionID == "" {
		// First request of a fresh install can race session creation; the
		// request proceeds with an absent identifier rather than blocking.
		log.Debug("prompt issued before session was ready")
	}

	c.setState(stateAwaitingUploads)
	if err := c.uploads.AwaitIdle(ctx); err != nil {
		log.Error("wait for uploads failed: %v", err)
		c.fail(h, onUpdate)
		return err
	}

	c.setState(stateStreaming)
	body, err := c.client.PromptStream(ctx, api.PromptRequest{
		SessionID: sessionID,
		Prompt:    trimmed,
		Timestamp: ts,
	})
	if err != nil {
		log.Error("prompt stream failed: %v", err)
		c.fail(h, onUpdate)
		return err
	}
	defer body.Close()

	var asm stream.Assembler
	err = asm.Consume(ctx, body, func(accumulated string) {
		c.log.SetContent(h, accumulated)
		if onUpdate != nil {
			onUpdate(c.log.Get(h))
		}
	})
	if err != nil {
		log.Error("prompt stream aborted: %v", err)
		c.fail(h, onUpdate)
		return err
	}

	// Zero-chunk streams finalize to an empty, non-placeholder message.
	c.log.Resolve(h)
	if onUpdate != nil {
		onUpdate(c.log.Get(h))
	}
	return nil
}

// SubmitWait runs one non-streaming turn against the plain prompt
// endpoint. The reply is applied as a single atomic content update of the
// placeholder, stamped with the backend's timestamp.
func (c *Controller) SubmitWait(ctx context.Context, prompt string, onUpdate UpdateFunc) error {
	trimmed, ts, h, err := c.start(prompt)
	if err != nil {
		return err
	}
	defer c.setState(stateIdle)

	sessionID := c.sessions.GetOrCreate(ctx)

	c.setState(stateAwaitingUploads)
	if err := c.uploads.AwaitIdle(ctx); err != nil {
		log.Error("wait for uploads failed: %v", err)
		c.fail(h, onUpdate)
		return err
	}

	c.setState(stateStreaming)
	resp, err := c.client.Prompt(ctx, api.PromptRequest{
		SessionID: sessionID,
		Prompt:    trimmed,
		Timestamp: ts,
	})
	if err != nil {
		log.Error("prompt failed: %v", err)
		c.fail(h, onUpdate)
		return err
	}

	c.log.SetContent(h, resp.LLMResponse)
	c.log.SetTimestamp(h, resp.Timestamp)
	if onUpdate != nil {
		onUpdate(c.log.Get(h))
	}
	return nil
}

func (c *Controller) fail(h Handle, onUpdate UpdateFunc) {
	c.log.MarkFailed(h)
	if onUpdate != nil {
		onUpdate(c.log.Get(h))
	}
}
