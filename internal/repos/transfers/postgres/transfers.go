package transfers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastprodman/walletsvc/internal/repos/transfers"
)

var _ transfers.Store = (*transfersRepo)(nil)

type transfersRepo struct{ db *sql.DB }

func New(db *sql.DB) *transfersRepo {
	return &transfersRepo{db: db}
}

func (r *transfersRepo) Create(ctx context.Context, t transfers.Transfer) error {
	if t.Amount <= 0 {
		return transfers.ErrNonPositiveAmount
	}

	if t.Sender == t.Recipient {
		return transfers.ErrSameParticipant
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transfers (id, sender, recipient, amount, status)
		VALUES ($1, $2, $3, $4, $5)
	`, t.ID, t.Sender, t.Recipient, t.Amount, string(transfers.StatusPending))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return transfers.ErrTransferExists
		}

		return fmt.Errorf("insert transfer: %w", err)
	}

	return nil
}

func (r *transfersRepo) Get(ctx context.Context, id uuid.UUID) (transfers.Transfer, error) {
	var (
		t      transfers.Transfer
		status string
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, sender, recipient, amount, status, created_at
		FROM transfers
		WHERE id = $1
	`, id).Scan(&t.ID, &t.Sender, &t.Recipient, &t.Amount, &status, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return transfers.Transfer{}, transfers.ErrNoSuchTransfer
		}

		return transfers.Transfer{}, fmt.Errorf("get transfer: %w", err)
	}

	t.Status = transfers.Status(status)

	return t, nil
}

func (r *transfersRepo) Query(ctx context.Context, f transfers.Filter) ([]transfers.Transfer, error) {
	var (
		conds []string
		args  []any
	)

	if f.Sender != nil {
		args = append(args, *f.Sender)
		conds = append(conds, fmt.Sprintf("sender = $%d", len(args)))
	}

	if f.Recipient != nil {
		args = append(args, *f.Recipient)
		conds = append(conds, fmt.Sprintf("recipient = $%d", len(args)))
	}

	if f.Status != nil {
		args = append(args, string(*f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `
		SELECT id, sender, recipient, amount, status, created_at
		FROM transfers
	`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transfers: %w", err)
	}
	defer rows.Close()

	var out []transfers.Transfer

	for rows.Next() {
		var (
			t      transfers.Transfer
			status string
		)

		err = rows.Scan(&t.ID, &t.Sender, &t.Recipient, &t.Amount, &status, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}

		t.Status = transfers.Status(status)
		out = append(out, t)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate transfers: %w", err)
	}

	return out, nil
}

// Transition is a single conditional UPDATE; the status guard in the
// WHERE clause makes concurrent transitions on the same id resolve to
// exactly one winner.
func (r *transfersRepo) Transition(ctx context.Context, id uuid.UUID, fromAllowed []transfers.Status, to transfers.Status) error {
	if len(fromAllowed) == 0 {
		return transfers.ErrTransferStatus
	}

	args := []any{id, string(to)}
	placeholders := make([]string, 0, len(fromAllowed))

	for _, from := range fromAllowed {
		args = append(args, string(from))
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	query := fmt.Sprintf(`
		UPDATE transfers
		SET status = $2
		WHERE id = $1
		  AND status IN (%s)
	`, strings.Join(placeholders, ", "))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("transition transfer: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		// Zero rows: missing id or disallowed current status.
		_, gerr := r.Get(ctx, id)
		if gerr != nil {
			return gerr
		}

		return transfers.ErrTransferStatus
	}

	return nil
}
