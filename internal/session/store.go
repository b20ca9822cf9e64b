// Package session manages the authenticated session lifecycle: login,
// restore from local storage, logout, and forced logout when the server
// reports an expired token.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/existflow/pmdesk/internal/api"
	"github.com/existflow/pmdesk/internal/db"
	"github.com/existflow/pmdesk/internal/logger"
	"github.com/existflow/pmdesk/internal/model"
)

// ErrBadCredentials is returned by Login when the server rejects the
// credentials without a message of its own. When the server does send a
// detail, Login returns the gateway error carrying it instead.
var ErrBadCredentials = errors.New("incorrect username or password")

// Storage is the persistence surface the store needs. *db.DB satisfies it.
type Storage interface {
	Get(key string) (string, error)
	Put(key, value string) error
	Delete(key string) error
}

// Store holds the current session. The token lives in the API client;
// the store guarantees the user and the token are set or cleared together.
type Store struct {
	client  *api.Client
	storage Storage

	mu        sync.RWMutex
	user      *model.UserSummary
	listeners []func()
}

// New creates a session store bound to the given client and storage.
// It registers itself for the client's session-expired signal so an
// expired token clears the session without the caller's involvement.
func New(client *api.Client, storage Storage) *Store {
	s := &Store{client: client, storage: storage}
	client.OnSessionExpired(func() {
		logger.Info("session expired, clearing credentials")
		s.clear()
		s.notify()
	})
	return s
}

// OnSessionExpired registers fn to run after a forced logout. Listeners
// run on the goroutine that observed the expired token.
func (s *Store) OnSessionExpired(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) notify() {
	s.mu.RLock()
	fns := make([]func(), len(s.listeners))
	copy(fns, s.listeners)
	s.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

// User returns the current user, or nil when logged out
func (s *Store) User() *model.UserSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Authenticated reports whether a session is active
func (s *Store) Authenticated() bool {
	return s.User() != nil
}

// Login exchanges credentials for a token, loads the user profile, and
// persists both. On failure the session is left logged out.
func (s *Store) Login(ctx context.Context, username, password string) (*model.UserSummary, error) {
	token, err := s.client.Login(ctx, username, password)
	if err != nil {
		var authErr *api.AuthError
		if errors.As(err, &authErr) && authErr.Detail == "" {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	s.client.SetToken(token)
	user, err := s.client.Me(ctx)
	if err != nil {
		// Token installed but profile fetch failed; roll back so the
		// user/token invariant holds.
		s.client.ClearToken()
		return nil, err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	s.persist(token, user)

	logger.Info("logged in", logger.F("user", user.Name), logger.F("role", user.Role.Name))
	return user, nil
}

// Logout ends the session. Safe to call when already logged out.
func (s *Store) Logout() {
	if s.Authenticated() || s.client.Token() != "" {
		logger.Info("logged out")
	}
	s.clear()
}

// Restore loads a persisted session. Missing or corrupt stored data
// leaves the store logged out without error; the caller just sees an
// unauthenticated session.
func (s *Store) Restore() bool {
	token, err := s.storage.Get(db.KeyToken)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			logger.Warn("failed to read stored token", logger.F("error", err))
		}
		s.clear()
		return false
	}

	raw, err := s.storage.Get(db.KeyUser)
	if err != nil {
		logger.Warn("stored token without user, discarding", logger.F("error", err))
		s.clear()
		return false
	}

	var user model.UserSummary
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		logger.Warn("corrupt stored user, discarding", logger.F("error", err))
		s.clear()
		return false
	}

	s.client.SetToken(token)
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	logger.Info("session restored", logger.F("user", user.Name))
	return true
}

// Refresh refetches the current user's profile from the server and
// updates the persisted copy. No-op when logged out.
func (s *Store) Refresh(ctx context.Context) error {
	if !s.Authenticated() {
		return nil
	}
	user, err := s.client.Me(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	s.persist(s.client.Token(), user)
	return nil
}

// ChangePassword changes the current user's password and ends the
// session, forcing a fresh login with the new credentials.
func (s *Store) ChangePassword(ctx context.Context, current, updated string) error {
	if err := s.client.ChangePassword(ctx, current, updated); err != nil {
		return err
	}
	logger.Info("password changed, ending session")
	s.clear()
	return nil
}

func (s *Store) persist(token string, user *model.UserSummary) {
	if s.storage == nil {
		return
	}
	if err := s.storage.Put(db.KeyToken, token); err != nil {
		logger.Warn("failed to persist token", logger.F("error", err))
	}
	raw, err := json.Marshal(user)
	if err == nil {
		err = s.storage.Put(db.KeyUser, string(raw))
	}
	if err != nil {
		logger.Warn("failed to persist user", logger.F("error", err))
	}
}

func (s *Store) clear() {
	s.client.ClearToken()
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	if s.storage != nil {
		s.storage.Delete(db.KeyToken)
		s.storage.Delete(db.KeyUser)
	}
}
