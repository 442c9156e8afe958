package usecase

import (
	"sync"
	"time"

	"github.com/secmon-lab/grc-risk/pkg/domain/model"
)

const (
	authCacheTTL = 5 * time.Minute
)

type cachedActor struct {
	actor     *model.Stub
	expiresAt time.Time
}

// authCache remembers verified tokens until the earlier of the token
// expiration and authCacheTTL
type authCache struct {
	cache sync.Map
}

func newAuthCache() *authCache {
	return &authCache{}
}

func (c *authCache) get(token string, now time.Time) (*model.Stub, bool) {
	val, ok := c.cache.Load(token)
	if !ok {
		return nil, false
	}

	cached := val.(*cachedActor)
	if !now.Before(cached.expiresAt) {
		c.cache.Delete(token)
		return nil, false
	}

	actor := *cached.actor
	return &actor, true
}

func (c *authCache) set(token string, actor *model.Stub, tokenExpiry, now time.Time) {
	expiresAt := now.Add(authCacheTTL)
	if !tokenExpiry.IsZero() && tokenExpiry.Before(expiresAt) {
		expiresAt = tokenExpiry
	}

	copied := *actor
	c.cache.Store(token, &cachedActor{
		actor:     &copied,
		expiresAt: expiresAt,
	})
}
