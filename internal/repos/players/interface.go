package players

import (
	"context"
	"errors"
)

var (
	ErrNoSuchPlayer      = errors.New("no such player")
	ErrDeficientBalance  = errors.New("deficient balance")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrLoginTaken        = errors.New("login already taken")
	ErrUsernameTaken     = errors.New("username already taken")
)

// Player is a wallet account. Login and Username are unique and
// immutable after creation; Balance is in minor units (cents) and
// never goes below zero.
type Player struct {
	ID             string
	Login          string
	Username       string
	PasswordDigest []byte
	Balance        int64
}

type Players interface {
	Insert(ctx context.Context, p Player) error
	GetByLogin(ctx context.Context, login string) (Player, error)
	Exists(ctx context.Context, login string) error
	BalanceOf(ctx context.Context, login string) (int64, error)

	// Debit atomically decreases the balance and returns the new value.
	// Two concurrent debits never both succeed if their sum exceeds the
	// available balance.
	Debit(ctx context.Context, login string, amount int64) (int64, error)

	// Credit atomically increases the balance and returns the new value.
	Credit(ctx context.Context, login string, amount int64) (int64, error)
}
