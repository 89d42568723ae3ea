package chat

import (
	"sync"

	"github.com/google/uuid"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in the conversation. An assistant message starts as
// a placeholder and is resolved when content arrives or the turn ends.
type Message struct {
	ID          string `json:"id"`
	Role        string `json:"role"`
	Content     string `json:"content"`
	Timestamp   string `json:"timestamp"`
	Placeholder bool   `json:"isPlaceholder"`
	Failed      bool   `json:"failed,omitempty"`
}

// Handle is a stable reference to one log entry, so streaming updates
// target the entry they were issued for rather than whatever is last.
type Handle int

// Log is the append-only conversation log. Entries are never removed for
// the lifetime of the process.
type Log struct {
	mu   sync.Mutex
	msgs []Message
}

// NewLog creates an empty conversation log.
func NewLog() *Log {
	return &Log{}
}

// Append adds a message and returns its handle. An id is assigned if the
// message has none.
func (l *Log) Append(m Message) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	l.msgs = append(l.msgs, m)
	return Handle(len(l.msgs) - 1)
}

// SetContent replaces the entry's content. The placeholder flag clears on
// the first update; content only ever grows during a turn.
func (l *Log) SetContent(h Handle, content string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.valid(h) {
		return
	}
	l.msgs[h].Content = content
	l.msgs[h].Placeholder = false
}

// SetTimestamp updates the entry's timestamp, used when the backend
// returns the authoritative time for a completed reply.
func (l *Log) SetTimestamp(h Handle, ts string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.valid(h) || ts == "" {
		return
	}
	l.msgs[h].Timestamp = ts
}

// Resolve finalizes the entry, clearing the placeholder flag without
// touching content. Used at end of stream, including zero-chunk streams.
func (l *Log) Resolve(h Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.valid(h) {
		return
	}
	l.msgs[h].Placeholder = false
}

// MarkFailed resolves the entry and flags it as failed, leaving whatever
// content had already streamed in place.
func (l *Log) MarkFailed(h Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.valid(h) {
		return
	}
	l.msgs[h].Placeholder = false
	l.msgs[h].Failed = true
}

// Get returns a copy of the entry at h.
func (l *Log) Get(h Handle) Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.valid(h) {
		return Message{}
	}
	return l.msgs[h]
}

// Messages returns a snapshot of the log in display order.
func (l *Log) Messages() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Message, len(l.msgs))
	copy(out, l.msgs)
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.msgs)
}

func (l *Log) valid(h Handle) bool {
	return h >= 0 && int(h) < len(l.msgs)
}
