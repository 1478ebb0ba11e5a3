// Package session owns the client's authenticated session: it validates
// credentials through a SessionProvider and persists the resulting token and
// display name to a state file so the session survives restarts until an
// explicit logout.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/cloudvault/cloudvault/internal/models"
	"github.com/cloudvault/cloudvault/internal/provider"
)

// Store is the client-side session store.
type Store struct {
	provider provider.SessionProvider
	path     string

	mu      sync.Mutex
	current *models.Session
}

// DefaultStatePath returns the session state file location under the user's
// config directory.
func DefaultStatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cloudvault", "session.json"), nil
}

// NewStore builds a session store persisting to statePath. An existing state
// file is restored so the user is not re-prompted for credentials; a file
// missing either field is discarded as corrupt rather than half-restored.
func NewStore(p provider.SessionProvider, statePath string) *Store {
	s := &Store{provider: p, path: statePath}

	data, err := os.ReadFile(statePath)
	if err != nil {
		return s
	}
	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return s
	}
	if sess.Token == "" || sess.DisplayName == "" {
		return s
	}
	s.current = &sess
	return s
}

// Login validates credentials against the provider and persists the session.
// A failed login leaves any stored session untouched.
func (s *Store) Login(ctx context.Context, username, password string) (models.Session, error) {
	creds, err := s.provider.Login(ctx, username, password)
	if err != nil {
		return models.Session{}, err
	}

	sess := models.Session{Token: creds.Token, DisplayName: creds.Username}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persist(sess); err != nil {
		return models.Session{}, err
	}
	s.current = &sess
	return sess, nil
}

// Logout clears the persisted session. Calling it while already logged out
// is a no-op success.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.provider.Logout(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Current reports the stored session, if any.
func (s *Store) Current() (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.Session{}, false
	}
	return *s.current, true
}

// Token exposes the bearer token for attaching to file store calls. Empty
// when logged out.
func (s *Store) Token() string {
	sess, ok := s.Current()
	if !ok {
		return ""
	}
	return sess.Token
}

func (s *Store) persist(sess models.Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
