package app

import (
	"crypto/subtle"
	"sync"

	"live-quiz-engine/internal/domain"
)

// Authorizer tracks connections authorized as hosts. Authorization belongs to
// the connection, not to a session, and lasts until Revoke.
type Authorizer struct {
	secret string

	mu    sync.RWMutex
	hosts map[string]struct{}
}

func NewAuthorizer(secret string) *Authorizer {
	return &Authorizer{secret: secret, hosts: make(map[string]struct{})}
}

// Authorize grants host rights to connID when candidate matches the secret.
// Repeated attempts are allowed.
func (a *Authorizer) Authorize(connID, candidate string) error {
	if candidate == "" {
		return domain.ErrMissingPassword
	}
	if a.secret == "" || subtle.ConstantTimeCompare([]byte(candidate), []byte(a.secret)) != 1 {
		return domain.ErrInvalidPassword
	}
	a.mu.Lock()
	a.hosts[connID] = struct{}{}
	a.mu.Unlock()
	return nil
}

// IsAuthorized reports whether connID holds host rights.
func (a *Authorizer) IsAuthorized(connID string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.hosts[connID]
	return ok
}

// Revoke drops host rights for connID.
func (a *Authorizer) Revoke(connID string) {
	a.mu.Lock()
	delete(a.hosts, connID)
	a.mu.Unlock()
}
