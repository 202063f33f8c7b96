package labclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/afero"
)

var (
	ErrNoSession      = errors.New("not logged in")
	ErrSessionExpired = errors.New("session expired, log in again")
)

// Session is the persisted login state.
type Session struct {
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expiresAt"`
	User       User      `json:"user"`
	Privileges []string  `json:"privileges"`
}

// HasPrivilege reports whether the session holds code.
func (s *Session) HasPrivilege(code string) bool {
	for _, p := range s.Privileges {
		if p == code {
			return true
		}
	}
	return false
}

// SessionStore persists a single session.
type SessionStore interface {
	Load() (*Session, error)
	Save(s *Session) error
	Clear() error
}

// MemoryStore keeps the session in memory only.
type MemoryStore struct {
	mu      sync.Mutex
	session *Session
}

func (m *MemoryStore) Load() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, ErrNoSession
	}
	s := *m.session
	return &s, nil
}

func (m *MemoryStore) Save(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *s
	m.session = &c
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

// FileStore keeps the session as a JSON file readable only by its owner.
type FileStore struct {
	fs   afero.Fs
	path string
}

func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{fs: fs, path: path}
}

// DefaultSessionPath is <user config dir>/labinv/session.json.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "labinv", "session.json"), nil
}

func (f *FileStore) Load() (*Session, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("corrupt session file %s: %w", f.path, err)
	}
	return &s, nil
}

func (f *FileStore) Save(s *Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := f.fs.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	return afero.WriteFile(f.fs, f.path, data, 0o600)
}

func (f *FileStore) Clear() error {
	err := f.fs.Remove(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// SessionManager is the single owner of the current session. Every client
// call reads the token through it.
type SessionManager struct {
	store   SessionStore
	mu      sync.Mutex
	current *Session
	loaded  bool
	now     func() time.Time
	refresh func(ctx context.Context, token string) (*Profile, error)
}

func NewSessionManager(store SessionStore) *SessionManager {
	return &SessionManager{store: store, now: time.Now}
}

// Load reads the persisted session, replacing whatever is held in memory.
func (m *SessionManager) Load() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked()
}

func (m *SessionManager) loadLocked() (*Session, error) {
	s, err := m.store.Load()
	m.loaded = true
	if err != nil {
		m.current = nil
		return nil, err
	}
	m.current = s
	return s, nil
}

// Save makes s the current session and persists it. A zero ExpiresAt is
// taken from the token's exp claim.
func (m *SessionManager) Save(s *Session) error {
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = tokenExpiry(s.Token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Save(s); err != nil {
		return err
	}
	m.current = s
	m.loaded = true
	return nil
}

// Clear forgets the session in memory and in the store.
func (m *SessionManager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	m.loaded = true
	return m.store.Clear()
}

// Current returns the live session, loading it from the store on first use.
func (m *SessionManager) Current() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		if _, err := m.loadLocked(); err != nil && !errors.Is(err, ErrNoSession) {
			return nil, err
		}
	}
	if m.current == nil || m.current.Token == "" {
		return nil, ErrNoSession
	}
	if !m.current.ExpiresAt.IsZero() && !m.now().Before(m.current.ExpiresAt) {
		return nil, ErrSessionExpired
	}
	s := *m.current
	return &s, nil
}

// Refresh revalidates the token with the server and updates the cached
// user. A rejected token clears the session.
func (m *SessionManager) Refresh(ctx context.Context) (*Session, error) {
	s, err := m.Current()
	if err != nil {
		return nil, err
	}
	if m.refresh == nil {
		return s, nil
	}

	profile, err := m.refresh(ctx, s.Token)
	if err != nil {
		if StatusOf(err) == http.StatusUnauthorized {
			if clearErr := m.Clear(); clearErr != nil {
				return nil, clearErr
			}
			return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
		}
		return nil, err
	}

	s.User = profile.User
	s.Privileges = profile.Privileges
	if err := m.Save(s); err != nil {
		return nil, err
	}
	return s, nil
}

// tokenExpiry reads the exp claim without verifying the signature. The
// server remains the authority on validity.
func tokenExpiry(token string) time.Time {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
