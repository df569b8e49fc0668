package client

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/janisto/account-settings/internal/dialog"
)

// UserFetcher loads the signed-in user's snapshot.
type UserFetcher interface {
	GetUser(ctx context.Context) (*dialog.User, error)
}

// UserCache holds the current user snapshot. Concurrent refetches share one request.
type UserCache struct {
	fetcher UserFetcher
	group   singleflight.Group

	mu   sync.RWMutex
	user *dialog.User
}

// NewUserCache creates an empty cache; call Refetch to load it.
func NewUserCache(fetcher UserFetcher) *UserCache {
	return &UserCache{fetcher: fetcher}
}

// Current returns the cached snapshot, or nil before the first successful Refetch.
func (c *UserCache) Current() *dialog.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// Refetch reloads the snapshot. On failure the previous snapshot is kept.
func (c *UserCache) Refetch(ctx context.Context) error {
	ch := c.group.DoChan("user", func() (any, error) {
		u, err := c.fetcher.GetUser(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.user = u
		c.mu.Unlock()
		return u, nil
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Compile-time interface check
var _ dialog.UserCache = (*UserCache)(nil)
