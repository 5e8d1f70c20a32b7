package session

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// VerifyCache remembers recently verified tokens so the console does not
// call the backend's verify endpoint on every request. Entries expire on
// a short TTL; an expired entry forces a fresh verification, which keeps
// the "Authenticated iff last confirmed by the server" invariant honest
// within the TTL window.
type VerifyCache struct {
	cache *gocache.Cache
}

// NewVerifyCache creates a cache whose entries live for ttl.
func NewVerifyCache(ttl time.Duration) *VerifyCache {
	return &VerifyCache{
		cache: gocache.New(ttl, 2*ttl),
	}
}

// MarkVerified records that the token was just confirmed by the backend.
func (c *VerifyCache) MarkVerified(token string) {
	c.cache.Set(token, struct{}{}, gocache.DefaultExpiration)
}

// RecentlyVerified reports whether the token was confirmed within the TTL.
func (c *VerifyCache) RecentlyVerified(token string) bool {
	_, found := c.cache.Get(token)
	return found
}

// Forget drops a token, forcing re-verification on the next request.
// Called on logout so a revoked identity cannot ride out the TTL.
func (c *VerifyCache) Forget(token string) {
	c.cache.Delete(token)
}
