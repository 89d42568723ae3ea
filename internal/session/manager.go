package session

import (
	"context"
	"sync"

	"github.com/youruser/ragchat/internal/logging"
)

var log = logging.Get()

// Creator issues the remote "create session" call.
type Creator interface {
	CreateSession(ctx context.Context) (string, error)
}

// Manager owns the single session identifier: lazily created remotely,
// cached in the Store, reused until the store is cleared externally.
type Manager struct {
	store   Store
	creator Creator

	mu sync.Mutex // serializes remote creation
}

// NewManager creates a session manager over the given store and creator.
func NewManager(store Store, creator Creator) *Manager {
	return &Manager{store: store, creator: creator}
}

// Ensure returns the cached identifier if present; otherwise it issues one
// remote create call, persists the result, and returns it. On failure
// nothing is stored and the error is returned; no retry is attempted.
func (m *Manager) Ensure(ctx context.Context) (string, error) {
	if id, ok := m.store.Get(); ok {
		return id, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another caller may have won the race while we waited.
	if id, ok := m.store.Get(); ok {
		return id, nil
	}

	id, err := m.creator.CreateSession(ctx)
	if err != nil {
		log.Error("session creation failed: %v", err)
		return "", err
	}

	if err := m.store.Set(id); err != nil {
		// The id is still usable for this process; only persistence failed.
		log.Error("failed to persist session id: %v", err)
	}

	log.Info("session created: %s", id)
	return id, nil
}

// GetOrCreate is the synchronous read used on hot paths. If no identifier
// is stored it triggers creation in the background and returns whatever is
// present right now, usually the empty string on the first call. Callers
// must tolerate a transient absent session; requests may carry an empty id
// until creation completes.
func (m *Manager) GetOrCreate(ctx context.Context) string {
	if id, ok := m.store.Get(); ok {
		return id
	}

	log.Debug("no session stored, creating one in the background")
	go func() {
		_, _ = m.Ensure(context.WithoutCancel(ctx))
	}()

	id, _ := m.store.Get()
	return id
}

// Clear drops the stored identifier so the next call mints a fresh one.
func (m *Manager) Clear() error {
	return m.store.Clear()
}
