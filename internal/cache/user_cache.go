// Package cache keeps a short-lived Redis copy of validated users so
// server-rendered requests don't pay a backend round trip each time. The
// cache is advisory: every miss or Redis failure falls through to the
// backend, and a 401 invalidates the entry.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/legaltech/webgate/internal/backend"
	"github.com/legaltech/webgate/internal/model"
)

const keyPrefix = "webgate:me:"

// DefaultTTL bounds how stale a cached user may be. A revoked session can
// survive in cache for at most this long before the backend is consulted
// again.
const DefaultTTL = 30 * time.Second

type UserCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *UserCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &UserCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached user for a session token, or (nil, false) on miss
// or any Redis error.
func (c *UserCache) Get(ctx context.Context, token string) (*model.User, bool) {
	data, err := c.rdb.Get(ctx, keyFor(token)).Bytes()
	if err != nil {
		return nil, false
	}
	var u model.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, false
	}
	return &u, true
}

// Set stores the user under the token's digest. Failures are ignored; the
// cache must never make an otherwise-successful fetch fail.
func (c *UserCache) Set(ctx context.Context, token string, u *model.User) {
	data, err := json.Marshal(u)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, keyFor(token), data, c.ttl).Err()
}

// Invalidate drops the entry for a token, used after logout and on 401.
func (c *UserCache) Invalidate(ctx context.Context, token string) {
	_ = c.rdb.Del(ctx, keyFor(token)).Err()
}

// FetchFunc mirrors the backend client's FetchMe shape.
type FetchFunc func(ctx context.Context, token string) (*model.User, error)

// Wrap layers the cache over a fetch function. A nil cache returns the fetch
// unchanged so callers can compose unconditionally.
func Wrap(c *UserCache, fetch FetchFunc) FetchFunc {
	if c == nil {
		return fetch
	}
	return func(ctx context.Context, token string) (*model.User, error) {
		if u, ok := c.Get(ctx, token); ok {
			return u, nil
		}
		u, err := fetch(ctx, token)
		if err != nil {
			if errors.Is(err, backend.ErrUnauthenticated) {
				c.Invalidate(ctx, token)
			}
			return nil, err
		}
		c.Set(ctx, token, u)
		return u, nil
	}
}

func keyFor(token string) string {
	h := sha256.Sum256([]byte(token))
	return keyPrefix + hex.EncodeToString(h[:])
}
