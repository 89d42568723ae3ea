package upload

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/youruser/ragchat/internal/logging"
)

var log = logging.Get()

// Status of an upload entry.
type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusDone      Status = "done"
	StatusFailed    Status = "failed"
)

// Entry tracks one attempted upload. Entries are kept for the life of the
// process so the file list reflects history, not just successes.
type Entry struct {
	ID       string
	FileName string
	Status   Status
}

// Uploader sends a file to the backend. Implemented by api.Client.
type Uploader interface {
	Upload(ctx context.Context, sessionID, fileName string, r io.Reader) error
}

// Sessions supplies the identifier attached to each upload.
type Sessions interface {
	GetOrCreate(ctx context.Context) string
}

// Coordinator owns the upload entry set. Any number of uploads may be in
// flight at once, each tracked independently; the in-flight signal is
// computed over the whole set.
type Coordinator struct {
	uploader Uploader
	sessions Sessions

	mu       sync.Mutex
	entries  []*Entry
	inflight int
	idleCh   chan struct{} // closed when inflight drops to zero
}

// New creates a coordinator.
func New(uploader Uploader, sessions Sessions) *Coordinator {
	return &Coordinator{uploader: uploader, sessions: sessions}
}

// Submit records the file immediately, then uploads it against the current
// session. The entry appears as pending before any network traffic so the
// attempt is visible even if the upload stalls. Blocks until the upload
// finishes; run it in a goroutine to upload concurrently.
func (c *Coordinator) Submit(ctx context.Context, fileName string, r io.Reader) error {
	e := &Entry{ID: uuid.NewString(), FileName: fileName, Status: StatusPending}

	c.mu.Lock()
	c.entries = append(c.entries, e)
	c.mu.Unlock()

	sessionID := c.sessions.GetOrCreate(ctx)

	c.begin(e)
	err := c.uploader.Upload(ctx, sessionID, fileName, r)
	c.finish(e, err)

	if err != nil {
		log.Error("upload failed for %s: %v", fileName, err)
		return err
	}

	log.Info("uploaded %s", fileName)
	return nil
}

// SubmitFile opens a local file and submits it under its base name.
func (c *Coordinator) SubmitFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		log.Error("cannot open %s: %v", path, err)
		return err
	}
	defer f.Close()

	return c.Submit(ctx, filepath.Base(path), f)
}

func (c *Coordinator) begin(e *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e.Status = StatusUploading
	c.inflight++
	if c.inflight == 1 {
		c.idleCh = make(chan struct{})
	}
}

func (c *Coordinator) finish(e *Entry, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		e.Status = StatusFailed
	} else {
		e.Status = StatusDone
	}

	c.inflight--
	if c.inflight == 0 {
		close(c.idleCh)
	}
}

// InFlight reports whether at least one entry is currently uploading.
func (c *Coordinator) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

// AwaitIdle blocks until no upload is in flight. Failed uploads count as
// finished, so a waiting prompt is never wedged by a bad file.
func (c *Coordinator) AwaitIdle(ctx context.Context) error {
	for {
		c.mu.Lock()
		if c.inflight == 0 {
			c.mu.Unlock()
			return nil
		}
		ch := c.idleCh
		c.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Entries returns a snapshot of all upload entries in submission order.
func (c *Coordinator) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = *e
	}
	return out
}
