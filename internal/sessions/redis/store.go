// Package redis backs the session store with Redis, giving sessions a
// lifetime independent of any one API process. Expiry, when enabled,
// rides on Redis key TTLs.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fastprodman/walletsvc/internal/sessions"
)

const keyPrefix = "wallet:session:"

var _ sessions.Store = (*Store)(nil)

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to redis at url and verifies the connection.
func New(ctx context.Context, url string, ttl time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = client.Ping(pingCtx).Err()
	if err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Store{client: client, ttl: ttl}, nil
}

// NewWithClient wraps an existing client (for testing).
func NewWithClient(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Shutdown releases the underlying client connection pool.
func (s *Store) Shutdown() error {
	return s.client.Close()
}

func (s *Store) Open(ctx context.Context, snap sessions.Snapshot) (string, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	for {
		token, err := sessions.NewToken()
		if err != nil {
			return "", err
		}

		// SET NX so a (practically impossible) token collision retries
		// instead of clobbering another player's session.
		ok, err := s.client.SetNX(ctx, sessionKey(token), data, s.ttl).Result()
		if err != nil {
			return "", fmt.Errorf("store session: %w", err)
		}

		if ok {
			return token, nil
		}
	}
}

func (s *Store) Exists(ctx context.Context, token string) (sessions.Snapshot, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return sessions.Snapshot{}, sessions.ErrUnauthorized
		}

		return sessions.Snapshot{}, fmt.Errorf("get session: %w", err)
	}

	var snap sessions.Snapshot

	err = json.Unmarshal(data, &snap)
	if err != nil {
		return sessions.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return snap, nil
}

func (s *Store) Close(ctx context.Context, token string) error {
	// DEL of an absent key is a no-op, which gives Close its
	// idempotence for free.
	err := s.client.Del(ctx, sessionKey(token)).Err()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

func sessionKey(token string) string {
	return keyPrefix + token
}
