// Package memory holds an in-memory transfer store with the same
// semantics as the postgres implementation: unique ids, guarded
// status transitions, insertion-order queries.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/walletsvc/internal/repos/transfers"
)

var _ transfers.Store = (*Store)(nil)

type Store struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]transfers.Transfer
	order []uuid.UUID
}

func New() *Store {
	return &Store{byID: make(map[uuid.UUID]transfers.Transfer)}
}

func (s *Store) Create(_ context.Context, t transfers.Transfer) error {
	if t.Amount <= 0 {
		return transfers.ErrNonPositiveAmount
	}

	if t.Sender == t.Recipient {
		return transfers.ErrSameParticipant
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[t.ID]; ok {
		return transfers.ErrTransferExists
	}

	t.Status = transfers.StatusPending
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	s.byID[t.ID] = t
	s.order = append(s.order, t.ID)

	return nil
}

func (s *Store) Get(_ context.Context, id uuid.UUID) (transfers.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	if !ok {
		return transfers.Transfer{}, transfers.ErrNoSuchTransfer
	}

	return t, nil
}

func (s *Store) Query(_ context.Context, f transfers.Filter) ([]transfers.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []transfers.Transfer

	for _, id := range s.order {
		t := s.byID[id]

		if f.Sender != nil && t.Sender != *f.Sender {
			continue
		}

		if f.Recipient != nil && t.Recipient != *f.Recipient {
			continue
		}

		if f.Status != nil && t.Status != *f.Status {
			continue
		}

		out = append(out, t)
	}

	return out, nil
}

func (s *Store) Transition(_ context.Context, id uuid.UUID, fromAllowed []transfers.Status, to transfers.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	if !ok {
		return transfers.ErrNoSuchTransfer
	}

	allowed := false

	for _, from := range fromAllowed {
		if t.Status == from {
			allowed = true
			break
		}
	}

	if !allowed {
		return transfers.ErrTransferStatus
	}

	t.Status = to
	s.byID[id] = t

	return nil
}
