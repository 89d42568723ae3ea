package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Store is the durable home of the single session identifier, the
// localStorage analog. Absence of an id is not an error.
type Store interface {
	Get() (string, bool)
	Set(id string) error
	Clear() error
}

// storeFile is the on-disk shape: one key, no expiry.
type storeFile struct {
	SessionID string `json:"session_id"`
}

// FileStore persists the session identifier in a small JSON file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns ~/.ragchat/session.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ragchat", "session.json"), nil
}

// Get reads the stored identifier. Returns false if the file is absent,
// unreadable, or holds no id.
func (s *FileStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}

	var f storeFile
	if err := json.Unmarshal(data, &f); err != nil {
		return "", false
	}
	if f.SessionID == "" {
		return "", false
	}
	return f.SessionID, true
}

// Set writes the identifier, creating the parent directory if needed.
func (s *FileStore) Set(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(storeFile{SessionID: id}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

// Clear removes the stored identifier. Missing file is not an error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu sync.Mutex
	id string
	ok bool
}

func (s *MemStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, s.ok
}

func (s *MemStore) Set(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
	s.ok = id != ""
	return nil
}

func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = ""
	s.ok = false
	return nil
}
