package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/legaltech/webgate/internal/backend"
	"github.com/legaltech/webgate/internal/model"
)

func countingFetch(calls *atomic.Int64, user *model.User, err error) FetchFunc {
	return func(ctx context.Context) (*model.User, error) {
		calls.Add(1)
		return user, err
	}
}

func TestInitIsIdempotent(t *testing.T) {
	var calls atomic.Int64
	s := NewStore(countingFetch(&calls, &model.User{ID: "1"}, nil))

	s.Init(context.Background())
	s.Init(context.Background())

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly one fetch, got %d", got)
	}
	st := s.Snapshot()
	if !st.Initialized || st.Loading || st.User == nil {
		t.Fatalf("unexpected state after init: %+v", st)
	}
}

func TestFetchMeWhileLoadingIsNoOp(t *testing.T) {
	var calls atomic.Int64
	started := make(chan struct{})
	release := make(chan struct{})
	s := NewStore(func(ctx context.Context) (*model.User, error) {
		calls.Add(1)
		close(started)
		<-release
		return &model.User{ID: "1"}, nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.FetchMe(context.Background())
	}()

	<-started
	if st := s.Snapshot(); !st.Loading {
		t.Fatalf("expected loading=true while fetch in flight, got %+v", st)
	}
	// Second caller must return immediately, without a second request.
	doneCh := make(chan struct{})
	go func() {
		s.FetchMe(context.Background())
		close(doneCh)
	}()
	select {
	case <-doneCh:
	case <-time.After(2 * time.Second):
		t.Fatalf("concurrent FetchMe blocked instead of no-op")
	}

	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one fetch, got %d", got)
	}
}

func TestFetchMeAuthFailureEndsInitializedWithoutUser(t *testing.T) {
	var calls atomic.Int64
	s := NewStore(countingFetch(&calls, nil, backend.ErrUnauthenticated))

	s.Init(context.Background())

	st := s.Snapshot()
	if st.User != nil || !st.Initialized || st.Loading {
		t.Fatalf("expected {user:nil, initialized:true, loading:false}, got %+v", st)
	}
	if st.Kind != ErrKindAuth {
		t.Fatalf("expected auth error kind, got %q", st.Kind)
	}
}

func TestFetchMeTransportFailureIsDistinguishable(t *testing.T) {
	var calls atomic.Int64
	s := NewStore(countingFetch(&calls, nil, errors.New("dial tcp: connection refused")))

	s.Init(context.Background())

	st := s.Snapshot()
	if st.Kind != ErrKindTransport {
		t.Fatalf("expected transport error kind, got %q", st.Kind)
	}
	if !st.Initialized {
		t.Fatalf("transport failure must still complete initialization")
	}
}

func TestSetUserHydratesWithoutNetworkCall(t *testing.T) {
	var calls atomic.Int64
	s := NewStore(countingFetch(&calls, nil, backend.ErrUnauthenticated))

	s.SetUser(&model.User{ID: "7", OrgType: model.OrgTypeSolo})

	st := s.Snapshot()
	if st.User == nil || st.User.ID != "7" || !st.Initialized || st.Loading {
		t.Fatalf("unexpected state after SetUser: %+v", st)
	}
	if calls.Load() != 0 {
		t.Fatalf("SetUser must not fetch")
	}

	// Hydrated sessions skip the fetch entirely.
	s.Init(context.Background())
	if calls.Load() != 0 {
		t.Fatalf("Init after SetUser must be a no-op, got %d fetches", calls.Load())
	}
}

func TestLogoutAllowsReinitialization(t *testing.T) {
	var calls atomic.Int64
	s := NewStore(countingFetch(&calls, &model.User{ID: "1"}, nil))

	s.Init(context.Background())
	s.Logout()

	st := s.Snapshot()
	if st.User != nil || st.Initialized {
		t.Fatalf("expected cleared session after logout, got %+v", st)
	}

	s.Init(context.Background())
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected re-init to fetch again, got %d fetches", got)
	}
}

func TestSubscribeObservesTerminalState(t *testing.T) {
	s := NewStore(countingFetch(new(atomic.Int64), &model.User{ID: "1"}, nil))

	ch, cancel := s.Subscribe()
	defer cancel()

	s.Init(context.Background())

	var last State
	for {
		select {
		case st := <-ch:
			last = st
			if st.Initialized {
				if st.User == nil {
					t.Fatalf("expected user in terminal state, got %+v", st)
				}
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("no terminal notification, last seen %+v", last)
		}
	}
}

func TestManagerIsolatesAndEvictsSessions(t *testing.T) {
	m := NewManager(func(ctx context.Context, token string) (*model.User, error) {
		return &model.User{ID: token}, nil
	})

	a := m.Get("tok-a")
	b := m.Get("tok-b")
	if a == b {
		t.Fatalf("expected distinct stores per token")
	}
	if m.Get("tok-a") != a {
		t.Fatalf("expected stable store for same token")
	}

	a.Init(context.Background())
	if st := a.Snapshot(); st.User == nil || st.User.ID != "tok-a" {
		t.Fatalf("fetch not bound to token: %+v", st)
	}
	if st := b.Snapshot(); st.Initialized {
		t.Fatalf("sibling session must stay untouched: %+v", st)
	}

	m.Drop("tok-a")
	if m.Len() != 1 {
		t.Fatalf("expected 1 entry after drop, got %d", m.Len())
	}

	if dropped := m.Sweep(time.Now().Add(time.Hour)); dropped != 1 {
		t.Fatalf("expected janitor to evict 1 idle entry, got %d", dropped)
	}
	if m.Len() != 0 {
		t.Fatalf("expected empty manager after sweep, got %d", m.Len())
	}
}
