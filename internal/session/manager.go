package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"sync"
	"time"

	"github.com/legaltech/webgate/internal/model"
)

const (
	// DefaultSessionIdle is how long a session entry may go unused before
	// the janitor drops it. Sessions carry no durable state, so dropping one
	// only costs the next request a re-fetch.
	DefaultSessionIdle     = 30 * time.Minute
	DefaultJanitorInterval = 5 * time.Minute
)

// TokenFetchFunc retrieves the current user for a specific session token.
type TokenFetchFunc func(ctx context.Context, token string) (*model.User, error)

// Manager owns the live session stores, keyed by a digest of the session
// token. It is the injectable replacement for a process-global auth store:
// everything that needs session state receives the manager explicitly.
type Manager struct {
	mu      sync.Mutex
	entries map[string]*entry
	fetch   TokenFetchFunc

	Idle     time.Duration
	Interval time.Duration
}

type entry struct {
	store    *Store
	lastSeen time.Time
}

func NewManager(fetch TokenFetchFunc) *Manager {
	return &Manager{
		entries:  make(map[string]*entry),
		fetch:    fetch,
		Idle:     DefaultSessionIdle,
		Interval: DefaultJanitorInterval,
	}
}

// Get returns the store for the given session token, creating it on first
// sight. The store's fetch is bound to the token so every session fetches
// with its own credentials and nothing crosses request boundaries.
func (m *Manager) Get(token string) *Store {
	key := digest(token)

	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		tok := token
		e = &entry{store: NewStore(func(ctx context.Context) (*model.User, error) {
			return m.fetch(ctx, tok)
		})}
		m.entries[key] = e
	}
	e.lastSeen = time.Now()
	return e.store
}

// Drop removes the session entry for a token, typically after logout so a
// re-login with the same token value cannot observe stale state.
func (m *Manager) Drop(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, digest(token))
}

// Len reports the number of live session entries.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// StartJanitor evicts idle sessions until ctx is cancelled. Launch as a
// goroutine from main.
func (m *Manager) StartJanitor(ctx context.Context) {
	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()

	log.Printf("session janitor started (idle=%s interval=%s)", m.Idle, m.Interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("session janitor stopped")
			return
		case <-ticker.C:
			m.Sweep(time.Now())
		}
	}
}

// Sweep runs one eviction pass and returns how many entries were dropped.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	dropped := 0
	for key, e := range m.entries {
		if now.Sub(e.lastSeen) > m.Idle {
			delete(m.entries, key)
			dropped++
		}
	}
	return dropped
}

// digest keys the session map by a sha256 of the token so raw credentials
// never sit in a long-lived map key.
func digest(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
