package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/legaltech/webgate/internal/backend"
	"github.com/legaltech/webgate/internal/model"
)

func testCache(t *testing.T) (*UserCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, 30*time.Second), mr
}

func TestWrapCachesSuccessfulFetch(t *testing.T) {
	c, _ := testCache(t)

	calls := 0
	fetch := Wrap(c, func(ctx context.Context, token string) (*model.User, error) {
		calls++
		return &model.User{ID: "3", OrgType: model.OrgTypeSolo, OrgID: "7"}, nil
	})

	for i := 0; i < 3; i++ {
		u, err := fetch(context.Background(), "tok")
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if u.ID != "3" || u.OrgID != "7" {
			t.Fatalf("fetch %d: unexpected user %+v", i, u)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one upstream call, got %d", calls)
	}
}

func TestWrapExpiryForcesRefetch(t *testing.T) {
	c, mr := testCache(t)

	calls := 0
	fetch := Wrap(c, func(ctx context.Context, token string) (*model.User, error) {
		calls++
		return &model.User{ID: "3"}, nil
	})

	if _, err := fetch(context.Background(), "tok"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	mr.FastForward(time.Minute)
	if _, err := fetch(context.Background(), "tok"); err != nil {
		t.Fatalf("fetch after expiry: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected refetch after TTL, got %d calls", calls)
	}
}

func TestWrapInvalidatesOn401(t *testing.T) {
	c, _ := testCache(t)
	c.Set(context.Background(), "tok", &model.User{ID: "3"})

	fetch := Wrap(c, func(ctx context.Context, token string) (*model.User, error) {
		return nil, backend.ErrUnauthenticated
	})

	// Cached entry is served first; a later miss surfaces the 401 and
	// clears the entry.
	c.Invalidate(context.Background(), "tok")
	_, err := fetch(context.Background(), "tok")
	if !errors.Is(err, backend.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, ok := c.Get(context.Background(), "tok"); ok {
		t.Fatalf("expected entry invalidated after 401")
	}
}

func TestWrapNilCachePassesThrough(t *testing.T) {
	calls := 0
	fetch := Wrap(nil, func(ctx context.Context, token string) (*model.User, error) {
		calls++
		return &model.User{ID: token}, nil
	})
	u, err := fetch(context.Background(), "tok")
	if err != nil || u.ID != "tok" {
		t.Fatalf("unexpected result u=%+v err=%v", u, err)
	}
	if calls != 1 {
		t.Fatalf("expected passthrough call, got %d", calls)
	}
}
