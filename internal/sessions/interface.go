// Package sessions tracks which opaque tokens currently correspond to
// an authenticated player. Stores are constructed once at process
// start and passed to whatever needs them; there is no package-level
// instance.
package sessions

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

var ErrUnauthorized = errors.New("unauthorized")

// Snapshot is the player state captured at authentication time. The
// balance here is the balance at login, not a live view.
type Snapshot struct {
	PlayerID string `json:"playerId"`
	Login    string `json:"login"`
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}

type Store interface {
	// Open associates a fresh unguessable token with the snapshot and
	// returns it. Concurrent calls never return the same token.
	Open(ctx context.Context, snap Snapshot) (string, error)

	// Exists returns the snapshot for a live token, or ErrUnauthorized
	// if the token is unknown or expired.
	Exists(ctx context.Context, token string) (Snapshot, error)

	// Close removes the association. Closing an absent token is not an
	// error.
	Close(ctx context.Context, token string) error
}

// NewToken returns a fresh 256-bit random token.
func NewToken() (string, error) {
	raw := make([]byte, 32)

	_, err := rand.Read(raw)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}
