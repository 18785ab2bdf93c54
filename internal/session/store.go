// Package session holds the per-browser-session authentication state the
// dashboard shell renders from: who the user is, whether the one fetch of
// the current user has happened yet, and how it failed if it failed.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/legaltech/webgate/internal/backend"
	"github.com/legaltech/webgate/internal/model"
)

// ErrKind distinguishes a clean 401 from an infrastructure failure. Routing
// treats them differently: auth failures redirect to sign-in, transport
// failures must never masquerade as "please sign in".
type ErrKind string

const (
	ErrKindNone      ErrKind = ""
	ErrKindAuth      ErrKind = "auth"
	ErrKindTransport ErrKind = "transport"
)

// State is a point-in-time snapshot of one session.
//
// Lifecycle: a fresh session is {nil, false, false}. FetchMe moves it through
// loading=true to initialized=true exactly once per initialization cycle;
// Logout clears user and initialized so the cycle can run again.
type State struct {
	User        *model.User
	Loading     bool
	Initialized bool
	Err         string
	Kind        ErrKind
}

// FetchFunc retrieves the current user. It follows the backend client
// contract: ErrUnauthenticated for a 401, any other error for transport or
// unexpected-status failures.
type FetchFunc func(ctx context.Context) (*model.User, error)

// Store is the session state machine. It is an injectable value, not a
// package-level singleton, so tests and requests own isolated sessions.
type Store struct {
	mu    sync.Mutex
	state State
	fetch FetchFunc

	subs    map[int]chan State
	nextSub int
}

func NewStore(fetch FetchFunc) *Store {
	return &Store{
		fetch: fetch,
		subs:  make(map[int]chan State),
	}
}

// Snapshot returns a consistent copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Init runs FetchMe unless the session is already initialized. It is safe to
// call on every request; once initialized it does nothing.
func (s *Store) Init(ctx context.Context) {
	s.mu.Lock()
	if s.state.Initialized {
		s.mu.Unlock()
		return
	}
	s.fetchMeLocked(ctx)
}

// FetchMe performs the one fetch of the current user. If a fetch is already
// in flight, or a user is already present, it returns immediately without
// starting a second request.
func (s *Store) FetchMe(ctx context.Context) {
	s.mu.Lock()
	if s.state.User != nil && s.state.Initialized {
		s.mu.Unlock()
		return
	}
	s.fetchMeLocked(ctx)
}

// fetchMeLocked is entered holding mu and releases it around the network
// call. The Loading flag is the single-flight guard: concurrent callers see
// it and return without fetching.
func (s *Store) fetchMeLocked(ctx context.Context) {
	if s.state.Loading {
		s.mu.Unlock()
		return
	}
	s.state.Loading = true
	s.state.Err = ""
	s.state.Kind = ErrKindNone
	s.notifyLocked()
	s.mu.Unlock()

	user, err := s.fetch(ctx)

	s.mu.Lock()
	s.state.Loading = false
	s.state.Initialized = true
	switch {
	case err == nil:
		s.state.User = user
		s.state.Err = ""
		s.state.Kind = ErrKindNone
	case errors.Is(err, backend.ErrUnauthenticated):
		s.state.User = nil
		s.state.Err = "unauthenticated"
		s.state.Kind = ErrKindAuth
	default:
		s.state.User = nil
		s.state.Err = err.Error()
		s.state.Kind = ErrKindTransport
	}
	s.notifyLocked()
	s.mu.Unlock()
}

// SetUser hydrates the session from a user already fetched server-side. No
// network call; the next Snapshot observes the user, so a server-rendered
// request never flashes a sign-in redirect.
func (s *Store) SetUser(u *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = u
	s.state.Initialized = true
	s.state.Loading = false
	s.state.Err = ""
	s.state.Kind = ErrKindNone
	s.notifyLocked()
}

// Logout clears the user and the initialized flag so a later Init starts a
// fresh cycle. It performs no network call and no navigation.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = nil
	s.state.Initialized = false
	s.state.Err = ""
	s.state.Kind = ErrKindNone
	s.notifyLocked()
}

// Subscribe registers for state-change notifications. Consumers get each new
// snapshot on the channel; slow consumers are dropped rather than blocking a
// mutation. The returned cancel func unregisters and closes the channel.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan State, 8)
	s.subs[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

func (s *Store) notifyLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- s.state:
		default:
			// Slow consumer, drop. The next notification carries newer state.
		}
	}
}
