// Package memory holds process-lifetime sessions in a plain map.
// Sessions live until closed, the process exits, or (when a TTL is
// configured) they expire; expiry is checked lazily at Exists time.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fastprodman/walletsvc/internal/sessions"
)

var _ sessions.Store = (*Store)(nil)

type entry struct {
	snap      sessions.Snapshot
	expiresAt time.Time // zero means no expiry
}

type Store struct {
	mu     sync.Mutex
	byTok  map[string]entry
	ttl    time.Duration
	nowFns func() time.Time
}

// New returns a store with the given TTL; zero disables expiry.
func New(ttl time.Duration) *Store {
	return &Store{
		byTok:  make(map[string]entry),
		ttl:    ttl,
		nowFns: time.Now,
	}
}

// WithClock replaces the store's clock. Test hook.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.nowFns = now
	return s
}

func (s *Store) Open(_ context.Context, snap sessions.Snapshot) (string, error) {
	for {
		token, err := sessions.NewToken()
		if err != nil {
			return "", err
		}

		s.mu.Lock()

		if _, taken := s.byTok[token]; taken {
			// 256-bit collision; practically unreachable but cheap to retry.
			s.mu.Unlock()
			continue
		}

		e := entry{snap: snap}
		if s.ttl > 0 {
			e.expiresAt = s.nowFns().Add(s.ttl)
		}

		s.byTok[token] = e
		s.mu.Unlock()

		return token, nil
	}
}

func (s *Store) Exists(_ context.Context, token string) (sessions.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byTok[token]
	if !ok {
		return sessions.Snapshot{}, sessions.ErrUnauthorized
	}

	if !e.expiresAt.IsZero() && s.nowFns().After(e.expiresAt) {
		delete(s.byTok, token)
		return sessions.Snapshot{}, sessions.ErrUnauthorized
	}

	return e.snap, nil
}

func (s *Store) Close(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byTok, token)

	return nil
}
