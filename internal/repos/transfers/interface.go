package transfers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTransferExists    = errors.New("transfer already exists")
	ErrNoSuchTransfer    = errors.New("no such transfer")
	ErrTransferStatus    = errors.New("transfer status does not allow this operation")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrSameParticipant   = errors.New("sender and recipient must differ")
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusDeclined Status = "DECLINED"
	StatusFailed   Status = "FAILED"
)

// Terminal reports whether no further transition is allowed out of s.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusDeclined || s == StatusFailed
}

// Transfer is a money-transfer request between two players. Records
// are never deleted; Status is the only field that changes after
// creation.
type Transfer struct {
	ID        uuid.UUID
	Sender    string
	Recipient string
	Amount    int64
	Status    Status
	CreatedAt time.Time
}

// Filter narrows a Query; nil fields match everything.
type Filter struct {
	Sender    *string
	Recipient *string
	Status    *Status
}

type Store interface {
	// Create stores a new PENDING transfer. Duplicate ids are rejected
	// with ErrTransferExists.
	Create(ctx context.Context, t Transfer) error

	Get(ctx context.Context, id uuid.UUID) (Transfer, error)

	// Query returns matching transfers in creation order.
	Query(ctx context.Context, f Filter) ([]Transfer, error)

	// Transition atomically moves the transfer to status to, but only
	// if its current status is in fromAllowed; otherwise it fails with
	// ErrTransferStatus. Under concurrent calls on the same id exactly
	// one caller wins.
	Transition(ctx context.Context, id uuid.UUID, fromAllowed []Status, to Status) error
}
