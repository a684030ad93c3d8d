// Package transfer implements the request/approve/decline transfer
// workflow on top of the players and transfers repositories.
//
// Funds are not reserved when a transfer is requested; the debit is
// deferred until approval. A sender can therefore hold more pending
// transfers than their balance supports, and some of them will fail
// at approval time and end up FAILED with balances untouched.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/fastprodman/walletsvc/internal/repos/players"
	"github.com/fastprodman/walletsvc/internal/repos/transfers"
)

const lockStripes = 64

type Service struct {
	players   players.Players
	transfers transfers.Store

	// Settlement is serialized per transfer id so that concurrent
	// approvals of the same transfer resolve to one winner before any
	// funds move. Striped to avoid an unbounded lock table.
	locks [lockStripes]sync.Mutex
}

func New(p players.Players, t transfers.Store) *Service {
	return &Service{players: p, transfers: t}
}

// RequestTransfer validates the request and records a PENDING transfer
// with a fresh id. No funds move until approval.
func (s *Service) RequestTransfer(ctx context.Context, sender, recipient string, amount int64) (transfers.Transfer, error) {
	if amount <= 0 {
		return transfers.Transfer{}, transfers.ErrNonPositiveAmount
	}

	if sender == recipient {
		return transfers.Transfer{}, transfers.ErrSameParticipant
	}

	err := s.players.Exists(ctx, sender)
	if err != nil {
		return transfers.Transfer{}, fmt.Errorf("check sender: %w", err)
	}

	err = s.players.Exists(ctx, recipient)
	if err != nil {
		return transfers.Transfer{}, fmt.Errorf("check recipient: %w", err)
	}

	t := transfers.Transfer{
		ID:        uuid.New(),
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
		Status:    transfers.StatusPending,
	}

	err = s.transfers.Create(ctx, t)
	if err != nil {
		return transfers.Transfer{}, fmt.Errorf("create transfer: %w", err)
	}

	return t, nil
}

// ApproveTransfer settles a PENDING transfer: debit the sender, credit
// the recipient, mark APPROVED. Only the transfer's sender may approve.
//
// A deficient balance moves the transfer to FAILED rather than leaving
// it PENDING. A failed credit refunds the sender before the transfer
// is marked FAILED, so a FAILED outcome always leaves both balances
// exactly as they were.
func (s *Service) ApproveTransfer(ctx context.Context, senderLogin string, id uuid.UUID) error {
	unlock := s.lock(id)
	defer unlock()

	t, err := s.transfers.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get transfer: %w", err)
	}

	if t.Sender != senderLogin || t.Status != transfers.StatusPending {
		return transfers.ErrTransferStatus
	}

	_, err = s.players.Debit(ctx, t.Sender, t.Amount)
	if err != nil {
		if errors.Is(err, players.ErrDeficientBalance) || errors.Is(err, players.ErrNoSuchPlayer) {
			s.markFailed(ctx, id)
		}

		return fmt.Errorf("debit sender: %w", err)
	}

	_, err = s.players.Credit(ctx, t.Recipient, t.Amount)
	if err != nil {
		// Recipient vanished or the credit failed: refund the sender
		// so the FAILED outcome conserves balances.
		_, rerr := s.players.Credit(ctx, t.Sender, t.Amount)
		if rerr != nil {
			err = errors.Join(err, fmt.Errorf("refund sender: %w", rerr))
		}

		s.markFailed(ctx, id)

		return fmt.Errorf("credit recipient: %w", err)
	}

	err = s.transfers.Transition(ctx, id, []transfers.Status{transfers.StatusPending}, transfers.StatusApproved)
	if err != nil {
		// Lost a race we should have been protected from (e.g. another
		// process settled the transfer). Undo the funds movement: pull
		// the credit back from the recipient first, and refund the
		// sender only once that succeeded. Refunding without a
		// recovered debit would create money out of nothing; if the
		// recipient has already spent the amount, the imbalance is
		// logged and left for reconciliation instead.
		_, derr := s.players.Debit(ctx, t.Recipient, t.Amount)
		if derr != nil {
			slog.Error("failed to recover credit after lost transition",
				"transfer_id", id, "recipient", t.Recipient, "error", derr)
		} else if _, cerr := s.players.Credit(ctx, t.Sender, t.Amount); cerr != nil {
			slog.Error("failed to refund sender after lost transition",
				"transfer_id", id, "sender", t.Sender, "error", cerr)
		}

		return fmt.Errorf("approve transfer: %w", err)
	}

	return nil
}

// DeclineTransfer moves a PENDING transfer to DECLINED. No balance is
// touched. Only the transfer's sender may decline.
func (s *Service) DeclineTransfer(ctx context.Context, senderLogin string, id uuid.UUID) error {
	unlock := s.lock(id)
	defer unlock()

	t, err := s.transfers.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get transfer: %w", err)
	}

	if t.Sender != senderLogin || t.Status != transfers.StatusPending {
		return transfers.ErrTransferStatus
	}

	err = s.transfers.Transition(ctx, id, []transfers.Status{transfers.StatusPending}, transfers.StatusDeclined)
	if err != nil {
		return fmt.Errorf("decline transfer: %w", err)
	}

	return nil
}

// markFailed is best-effort: if the transfer already left PENDING the
// guard rejects the transition and there is nothing left to do.
func (s *Service) markFailed(ctx context.Context, id uuid.UUID) {
	err := s.transfers.Transition(ctx, id, []transfers.Status{transfers.StatusPending}, transfers.StatusFailed)
	if err != nil && !errors.Is(err, transfers.ErrTransferStatus) {
		slog.Error("failed to mark transfer FAILED", "transfer_id", id, "error", err)
	}
}

func (s *Service) lock(id uuid.UUID) func() {
	h := fnv.New32a()
	_, _ = h.Write(id[:])

	m := &s.locks[h.Sum32()%lockStripes]
	m.Lock()

	return m.Unlock
}
