// Package auth is the credential side of the wallet: player
// registration, login and logout. The session store itself never sees
// a password; it only receives already-verified player snapshots.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/fastprodman/walletsvc/internal/repos/players"
	"github.com/fastprodman/walletsvc/internal/sessions"
)

var ErrBadCredentials = errors.New("bad credentials")

type Service struct {
	players  players.Players
	sessions sessions.Store
}

func New(p players.Players, s sessions.Store) *Service {
	return &Service{players: p, sessions: s}
}

// Register creates a player with a zero balance and a bcrypt password
// digest. Login and username collisions surface as the players repo's
// sentinel errors.
func (s *Service) Register(ctx context.Context, login, username, password string) (players.Player, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return players.Player{}, fmt.Errorf("hash password: %w", err)
	}

	p := players.Player{
		ID:             newPlayerID(),
		Login:          login,
		Username:       username,
		PasswordDigest: digest,
	}

	err = s.players.Insert(ctx, p)
	if err != nil {
		return players.Player{}, fmt.Errorf("insert player: %w", err)
	}

	return p, nil
}

// Login verifies the credentials and opens a session. An unknown login
// and a wrong password both come back as ErrBadCredentials so the API
// does not leak which logins exist.
func (s *Service) Login(ctx context.Context, login, password string) (string, sessions.Snapshot, error) {
	p, err := s.players.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, players.ErrNoSuchPlayer) {
			return "", sessions.Snapshot{}, ErrBadCredentials
		}

		return "", sessions.Snapshot{}, fmt.Errorf("get player: %w", err)
	}

	err = bcrypt.CompareHashAndPassword(p.PasswordDigest, []byte(password))
	if err != nil {
		return "", sessions.Snapshot{}, ErrBadCredentials
	}

	snap := sessions.Snapshot{
		PlayerID: p.ID,
		Login:    p.Login,
		Username: p.Username,
		Balance:  p.Balance,
	}

	token, err := s.sessions.Open(ctx, snap)
	if err != nil {
		return "", sessions.Snapshot{}, fmt.Errorf("open session: %w", err)
	}

	return token, snap, nil
}

// Logout closes the session; closing an unknown token is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	err := s.sessions.Close(ctx, token)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}

	return nil
}
