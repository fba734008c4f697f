package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Context is the identity a single request runs under. Exactly one of the
// two keys resolves per request; an authenticated user id always wins over
// the anonymous session token. The value is threaded explicitly into every
// engine call instead of being read from ambient storage.
type Context struct {
	UserID    string
	SessionID string
}

// Key returns the conversation partition key for this identity.
func (c Context) Key() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.SessionID
}

// TokenStore persists the anonymous session token between runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
}

// Manager resolves and rotates the anonymous session identity. Resolve is
// idempotent until Reset is called.
type Manager struct {
	mu     sync.Mutex
	store  TokenStore
	userID string
	token  string
}

// NewManager creates a manager backed by the given token store. userID may
// be empty for anonymous use.
func NewManager(store TokenStore, userID string) *Manager {
	return &Manager{
		store:  store,
		userID: userID,
	}
}

// Resolve returns the current session context, generating and persisting a
// fresh anonymous token on first use.
func (m *Manager) Resolve() (Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token == "" {
		stored, err := m.store.Load()
		if err != nil {
			return Context{}, fmt.Errorf("failed to load session token: %w", err)
		}
		m.token = stored
	}

	if m.token == "" {
		if err := m.rotate(); err != nil {
			return Context{}, err
		}
	}

	return Context{UserID: m.userID, SessionID: m.token}, nil
}

// Reset unconditionally generates and persists a new anonymous token,
// abandoning continuity with prior history.
func (m *Manager) Reset() (Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.rotate(); err != nil {
		return Context{}, err
	}
	return Context{UserID: m.userID, SessionID: m.token}, nil
}

func (m *Manager) rotate() error {
	token := NewToken()
	if err := m.store.Save(token); err != nil {
		return fmt.Errorf("failed to persist session token: %w", err)
	}
	m.token = token
	return nil
}

// NewToken generates a random unique session token.
func NewToken() string {
	return "anon-" + uuid.New().String()
}

// FileStore keeps the token in a dotfile so the CLI conversation survives
// restarts.
type FileStore struct {
	Path string
}

// DefaultFileStore stores the token under the user's config directory.
func DefaultFileStore() FileStore {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return FileStore{Path: filepath.Join(home, ".config", "agri-shokti", "session")}
}

func (f FileStore) Load() (string, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (f FileStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(f.Path, []byte(token+"\n"), 0o600)
}

// MemoryStore is a non-durable token store for servers and tests.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}
