package session

import (
	"fmt"
	"sync"

	"github.com/jrsteele09/go-flexcrew-dashboard/credentials"
	apperrors "github.com/jrsteele09/go-flexcrew-dashboard/internal/errors"
	"github.com/rs/zerolog/log"
)

// Manager owns the session. It is the only component that mutates token or role
// state; every mutation is persisted to the credential store before it returns.
type Manager struct {
	mu        sync.RWMutex
	store     credentials.Store
	current   Session
	observers []func(Session)
}

// NewManager hydrates a manager from the store. A store that cannot be read
// yields a logged out manager together with the load error.
func NewManager(store credentials.Store) (*Manager, error) {
	m := &Manager{store: store}

	record, err := store.Load()
	if err != nil {
		return m, fmt.Errorf("[session NewManager] load credentials: %w", err)
	}
	m.current = fromRecord(record)
	return m, nil
}

// Login installs a fully populated session. Any empty argument leaves the
// session untouched and returns ErrIncompleteCredentials.
func (m *Manager) Login(accessToken, refreshToken, email, role string) error {
	next := Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserEmail:    email,
		Role:         role,
	}
	if !next.record().Complete() {
		return fmt.Errorf("[session Login] %w", apperrors.ErrIncompleteCredentials)
	}

	m.transition(func(Session) Session { return next }, func() error {
		return m.store.Save(next.record())
	})
	log.Info().Str("email", email).Str("role", role).Msg("Session started")
	return nil
}

// Logout drops every session field and clears the durable slots
func (m *Manager) Logout() {
	m.transition(func(Session) Session { return Session{} }, m.store.Clear)
	log.Info().Msg("Session ended")
}

// UpdateAccessToken replaces the access token only. Refresh token, email and role
// are left as they are.
func (m *Manager) UpdateAccessToken(token string) {
	m.transition(func(s Session) Session {
		s.AccessToken = token
		return s
	}, func() error {
		return m.store.SetAccessToken(token)
	})
}

// Snapshot returns a copy of the current session
func (m *Manager) Snapshot() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Manager) IsAuthenticated() bool {
	return m.Snapshot().IsAuthenticated()
}

func (m *Manager) Role() string {
	return m.Snapshot().Role
}

// Store exposes the credential store the manager persists to
func (m *Manager) Store() credentials.Store {
	return m.store
}

// Subscribe registers an observer invoked synchronously after every transition,
// before the mutating call returns.
func (m *Manager) Subscribe(observer func(Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, observer)
}

// transition applies next and persist under the write lock so readers observe
// either the old or the new session. Observers run after the lock is released.
func (m *Manager) transition(next func(Session) Session, persist func() error) {
	m.transitionIf(func(Session) bool { return true }, next, persist)
}

// transitionIf is transition gated on the session held when the lock is taken.
// It reports whether the transition ran.
func (m *Manager) transitionIf(holds func(Session) bool, next func(Session) Session, persist func() error) bool {
	m.mu.Lock()
	if !holds(m.current) {
		m.mu.Unlock()
		return false
	}
	m.current = next(m.current)
	if err := persist(); err != nil {
		log.Err(err).Msg("Failed to persist session credentials")
	}
	snapshot := m.current
	observers := append([]func(Session){}, m.observers...)
	m.mu.Unlock()

	for _, observer := range observers {
		observer(snapshot)
	}
	return true
}

// startedFrom reports whether s is still the session a refresh using
// refreshToken belongs to. A session holding no refresh token in memory was
// hydrated before the store was written and still counts.
func startedFrom(s Session, refreshToken string) bool {
	return s.RefreshToken == "" || s.RefreshToken == refreshToken
}

// logoutFrom ends the session unless a login with another refresh token
// replaced it.
func (m *Manager) logoutFrom(refreshToken string) bool {
	ended := m.transitionIf(func(s Session) bool {
		return startedFrom(s, refreshToken)
	}, func(Session) Session { return Session{} }, m.store.Clear)
	if ended {
		log.Info().Msg("Session ended")
	}
	return ended
}

// updateAccessTokenFrom installs token unless a login with another refresh token
// replaced the session.
func (m *Manager) updateAccessTokenFrom(refreshToken, token string) bool {
	return m.transitionIf(func(s Session) bool {
		return startedFrom(s, refreshToken)
	}, func(s Session) Session {
		s.AccessToken = token
		return s
	}, func() error {
		return m.store.SetAccessToken(token)
	})
}

// storedRefreshToken reads the refresh token straight from durable storage
func (m *Manager) storedRefreshToken() string {
	record, err := m.store.Load()
	if err != nil {
		log.Err(err).Msg("Failed to read refresh token from credential store")
		return ""
	}
	return record.RefreshToken
}
