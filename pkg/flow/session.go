package flow

import (
	"errors"
	"sync"

	"github.com/meridianapps/meridian/pkg/authsdk"
)

// ErrNoAccessToken rejects session construction from a response that is
// missing its access token.
var ErrNoAccessToken = errors.New("session requires an access token")

// Session is the product of a successful login or MFA verification.
// Flows hand it to their success callback and to the SessionStore; they
// never hold on to it themselves.
type Session struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int
}

// NewSession builds a Session from a token response.
func NewSession(tokens *authsdk.TokenResponse) (Session, error) {
	if tokens == nil || tokens.AccessToken == "" {
		return Session{}, ErrNoAccessToken
	}
	return Session{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
		ExpiresIn:    tokens.ExpiresIn,
	}, nil
}

// SessionStore holds the process-wide current session. Flows write
// through this interface rather than module-level state so tests can
// swap in a double.
type SessionStore interface {
	// Set replaces the current session.
	Set(s Session)

	// Current returns the session and whether one is set.
	Current() (Session, bool)

	// Clear drops the current session, on logout or expiry.
	Clear()
}

// MemoryStore is the default in-memory SessionStore. Safe for
// concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	session Session
	set     bool
}

// NewMemoryStore initialises an empty session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Set(s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = s
	m.set = true
}

func (m *MemoryStore) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session, m.set
}

func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = Session{}
	m.set = false
}
