// Package watch turns a local drop directory into the upload entry point:
// files dropped into the directory are forwarded to the upload coordinator
// the way a dropped file is in a browser chat window.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/youruser/ragchat/internal/logging"
)

var log = logging.Get()

// Sink receives dropped files. Implemented by upload.Coordinator.
type Sink interface {
	SubmitFile(ctx context.Context, path string) error
}

// Watcher monitors one directory for dropped files. A burst of files
// appearing within the settle window counts as a single drop gesture, and
// only the gesture's first file is forwarded; the rest are ignored.
type Watcher struct {
	watcher *fsnotify.Watcher
	sink    Sink
	settle  time.Duration
}

// DefaultSettle is the burst window delimiting one drop gesture.
const DefaultSettle = 500 * time.Millisecond

// New creates a watcher forwarding dropped files to sink.
func New(sink Sink, settle time.Duration) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{watcher: w, sink: sink, settle: settle}, nil
}

// Run watches dir until the context is canceled. Blocking; run it in its
// own goroutine alongside the chat loop.
func (w *Watcher) Run(ctx context.Context, dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	log.Info("watching drop directory %s", dir)

	var gestureEnd time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !eligible(event.Name) {
				continue
			}

			now := time.Now()
			inGesture := now.Before(gestureEnd)
			gestureEnd = now.Add(w.settle)

			if inGesture {
				log.Debug("ignoring %s (same drop gesture)", event.Name)
				continue
			}

			log.Debug("drop detected: %s", event.Name)
			go func(path string) {
				if err := w.sink.SubmitFile(ctx, path); err != nil {
					log.Error("dropped file %s not uploaded: %v", path, err)
				}
			}(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("drop watcher: %v", err)
		}
	}
}

// Stop closes the underlying watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// eligible filters out dotfiles and anything that is not a regular file
// (editors and file managers create temp entries and directories too).
func eligible(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
