// Package session holds the admin bearer credential. There is exactly one
// credential slot; it is written on login and removed on logout or when the
// backend answers 401.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenKey is the fixed name the credential is persisted under.
const TokenKey = "admin_token"

// Store is the credential cell shared by the API client and the auth manager.
type Store interface {
	Token() string
	Set(token string) error
	Clear() error
}

// FileStore persists the credential as <dir>/admin_token. The file is read
// lazily on first access.
type FileStore struct {
	dir string

	once    sync.Once
	mu      sync.Mutex
	token   string
	loadErr error
}

// NewFileStore returns a store rooted at dir (usually <home>/state).
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the credential file location.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, TokenKey)
}

// Err reports a failure to read the persisted credential, if any.
func (s *FileStore) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
	return s.loadErr
}

func (s *FileStore) load() {
	s.once.Do(func() {
		data, err := os.ReadFile(s.Path())
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				s.loadErr = fmt.Errorf("session: read %s: %w", s.Path(), err)
			}
			return
		}
		s.token = strings.TrimSpace(string(data))
	})
}

// Token returns the current credential or "".
func (s *FileStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
	return s.token
}

// Set replaces the credential. An empty token clears it.
func (s *FileStore) Set(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.Clear()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("session: ensure state dir: %w", err)
	}
	if err := os.WriteFile(s.Path(), []byte(token), 0o600); err != nil {
		return fmt.Errorf("session: write credential: %w", err)
	}
	s.token = token
	return nil
}

// Clear drops the credential in memory and on disk.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
	s.token = ""
	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session: remove credential: %w", err)
	}
	return nil
}

// MemoryStore keeps the credential in process memory only.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore returns a store seeded with token (may be empty).
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: strings.TrimSpace(token)}
}

func (s *MemoryStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = strings.TrimSpace(token)
	return nil
}

func (s *MemoryStore) Clear() error {
	return s.Set("")
}
