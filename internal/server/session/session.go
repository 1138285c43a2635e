package session

import (
	"sync"
	"time"

	"github.com/openmined/dirbox/internal/utils"
)

// DefaultTTL is how long a session stays valid after login.
const DefaultTTL = 24 * time.Hour

// tokenBytes gives 128 bits of entropy per token.
const tokenBytes = 16

type record struct {
	identity string
	expires  time.Time
}

// Registry holds all live sessions in process memory. A restart drops
// every session, which is fine for this design. All methods are safe for
// concurrent use; validation mutates (expired entries are evicted on
// read) so everything goes through one mutex.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]record
	ttl      time.Duration
	now      func() time.Time
}

func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		sessions: make(map[string]record),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create issues a new opaque token bound to identity, expiring after the
// registry TTL.
func (r *Registry) Create(identity string) string {
	token := utils.TokenHex(tokenBytes)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[token] = record{
		identity: identity,
		expires:  r.now().Add(r.ttl),
	}
	return token
}

// Validate returns the identity bound to token. An unknown token, or one
// past its expiry, yields ("", false); expired tokens are evicted.
func (r *Registry) Validate(token string) (string, bool) {
	if token == "" {
		return "", false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[token]
	if !ok {
		return "", false
	}
	if r.now().After(rec.expires) {
		delete(r.sessions, token)
		return "", false
	}
	return rec.identity, true
}

// Delete removes a session. Deleting an unknown token is a no-op.
func (r *Registry) Delete(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
}

// Len reports the number of live (possibly expired but unevicted) sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// TTL returns the configured session lifetime.
func (r *Registry) TTL() time.Duration {
	return r.ttl
}

// SetClock overrides the registry's time source. Test hook.
func (r *Registry) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}
