// Package memory holds an in-memory implementation of the players
// repository, used in tests and db-less runs. Semantics mirror the
// postgres implementation exactly.
package memory

import (
	"context"
	"sync"

	"github.com/fastprodman/walletsvc/internal/repos/players"
)

var _ players.Players = (*Players)(nil)

type Players struct {
	mu      sync.Mutex
	byLogin map[string]players.Player
}

func New() *Players {
	return &Players{byLogin: make(map[string]players.Player)}
}

func (r *Players) Insert(_ context.Context, p players.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byLogin[p.Login]; ok {
		return players.ErrLoginTaken
	}

	for _, existing := range r.byLogin {
		if existing.Username == p.Username {
			return players.ErrUsernameTaken
		}
	}

	r.byLogin[p.Login] = p

	return nil
}

func (r *Players) GetByLogin(_ context.Context, login string) (players.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byLogin[login]
	if !ok {
		return players.Player{}, players.ErrNoSuchPlayer
	}

	return p, nil
}

func (r *Players) Exists(_ context.Context, login string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byLogin[login]; !ok {
		return players.ErrNoSuchPlayer
	}

	return nil
}

func (r *Players) BalanceOf(_ context.Context, login string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byLogin[login]
	if !ok {
		return 0, players.ErrNoSuchPlayer
	}

	return p.Balance, nil
}

func (r *Players) Debit(_ context.Context, login string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, players.ErrNonPositiveAmount
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byLogin[login]
	if !ok {
		return 0, players.ErrNoSuchPlayer
	}

	if p.Balance < amount {
		return 0, players.ErrDeficientBalance
	}

	p.Balance -= amount
	r.byLogin[login] = p

	return p.Balance, nil
}

func (r *Players) Credit(_ context.Context, login string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, players.ErrNonPositiveAmount
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byLogin[login]
	if !ok {
		return 0, players.ErrNoSuchPlayer
	}

	p.Balance += amount
	r.byLogin[login] = p

	return p.Balance, nil
}
