// Package auth manages the OAuth credential used against the email provider.
package auth

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Manager owns the provider credential. It implements oauth2.TokenSource so
// API clients always read the current token through it; callers must not
// cache a token beyond the single operation they fetched it for.
type Manager struct {
	mu        sync.Mutex
	source    oauth2.TokenSource
	current   *oauth2.Token
	onRefresh func(*oauth2.Token)
	logger    *zap.Logger
}

// NewManager creates a manager around a refreshing token source. initial may
// be nil when no token has been issued yet.
func NewManager(source oauth2.TokenSource, initial *oauth2.Token, logger *zap.Logger) *Manager {
	m := &Manager{
		source: source,
		logger: logger,
	}
	if initial != nil {
		m.current = cloneToken(initial)
	}
	return m
}

// OnRefresh registers a callback invoked synchronously whenever the provider
// issues a new token pair, e.g. to persist it.
func (m *Manager) OnRefresh(fn func(*oauth2.Token)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRefresh = fn
}

// Token returns the current credential, refreshing it first when it is
// expired or about to expire. The returned token is never expired at the
// instant of return and is always a copy.
func (m *Manager) Token() (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.Valid() {
		return cloneToken(m.current), nil
	}

	fresh, err := m.source.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh credential: %w", err)
	}

	m.adopt(fresh)
	return cloneToken(m.current), nil
}

// Invalidate discards the cached token so the next Token call forces a
// refresh. Used after the provider rejects a request with 401.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		// A zero expiry means "never expires" to oauth2, so mark the token
		// as already expired instead
		m.current.Expiry = time.Now().Add(-time.Minute)
	}
	m.logger.Debug("Credential invalidated, next use will refresh")
}

// Credential returns a copy of the currently held token without refreshing,
// or nil when none is held.
func (m *Manager) Credential() *oauth2.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneToken(m.current)
}

// adopt replaces the held token with a freshly issued one. The previous
// refresh token is preserved when the provider did not rotate it; a stale
// refresh never overwrites a newer token. Callers must hold m.mu.
func (m *Manager) adopt(fresh *oauth2.Token) {
	if fresh == nil {
		return
	}

	if m.current != nil {
		if m.current.Valid() && !fresh.Expiry.After(m.current.Expiry) {
			// A concurrent refresh already produced a newer token
			return
		}
		if fresh.RefreshToken == "" {
			fresh.RefreshToken = m.current.RefreshToken
		}
	}

	m.current = cloneToken(fresh)
	m.logger.Debug("Credential refreshed", zap.Time("expiry", m.current.Expiry))

	if m.onRefresh != nil {
		m.onRefresh(cloneToken(m.current))
	}
}

func cloneToken(t *oauth2.Token) *oauth2.Token {
	if t == nil {
		return nil
	}
	copied := *t
	return &copied
}
