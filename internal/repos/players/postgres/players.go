package players

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastprodman/walletsvc/internal/repos/players"
)

var _ players.Players = (*playersRepo)(nil)

type playersRepo struct{ db *sql.DB }

func New(db *sql.DB) *playersRepo {
	return &playersRepo{db: db}
}

func (r *playersRepo) Insert(ctx context.Context, p players.Player) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO players (id, login, username, password_digest, balance)
		VALUES ($1, $2, $3, $4, $5)
	`, p.ID, p.Login, p.Username, p.PasswordDigest, p.Balance)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			switch pgErr.ConstraintName {
			case "players_login_key":
				return players.ErrLoginTaken
			case "players_username_key":
				return players.ErrUsernameTaken
			}
		}

		return fmt.Errorf("insert player: %w", err)
	}

	return nil
}

func (r *playersRepo) GetByLogin(ctx context.Context, login string) (players.Player, error) {
	var p players.Player

	err := r.db.QueryRowContext(ctx, `
		SELECT id, login, username, password_digest, balance
		FROM players
		WHERE login = $1
	`, login).Scan(&p.ID, &p.Login, &p.Username, &p.PasswordDigest, &p.Balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return players.Player{}, players.ErrNoSuchPlayer
		}

		return players.Player{}, fmt.Errorf("get player: %w", err)
	}

	return p, nil
}

func (r *playersRepo) Exists(ctx context.Context, login string) error {
	var exists bool

	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM players WHERE login = $1)
	`, login).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}

	if !exists {
		return players.ErrNoSuchPlayer
	}

	return nil
}

func (r *playersRepo) BalanceOf(ctx context.Context, login string) (int64, error) {
	var balance int64

	err := r.db.QueryRowContext(ctx, `
		SELECT balance
		FROM players
		WHERE login = $1
	`, login).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, players.ErrNoSuchPlayer
		}

		return 0, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// Debit relies on a single conditional UPDATE: the balance >= amount
// guard makes concurrent debits safe without an explicit row lock.
func (r *playersRepo) Debit(ctx context.Context, login string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, players.ErrNonPositiveAmount
	}

	var balance int64

	err := r.db.QueryRowContext(ctx, `
		UPDATE players
		SET balance = balance - $2
		WHERE login = $1
		  AND balance >= $2
		RETURNING balance
	`, login, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Zero rows: either the player is missing or the balance
			// would go negative.
			eerr := r.Exists(ctx, login)
			if eerr != nil {
				return 0, eerr
			}

			return 0, players.ErrDeficientBalance
		}

		return 0, fmt.Errorf("debit balance: %w", err)
	}

	return balance, nil
}

func (r *playersRepo) Credit(ctx context.Context, login string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, players.ErrNonPositiveAmount
	}

	var balance int64

	err := r.db.QueryRowContext(ctx, `
		UPDATE players
		SET balance = balance + $2
		WHERE login = $1
		RETURNING balance
	`, login, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, players.ErrNoSuchPlayer
		}

		return 0, fmt.Errorf("credit balance: %w", err)
	}

	return balance, nil
}
