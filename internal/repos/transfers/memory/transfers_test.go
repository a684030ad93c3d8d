package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/fastprodman/walletsvc/internal/repos/transfers"
)

func pending(sender, recipient string, amount int64) transfers.Transfer {
	return transfers.Transfer{
		ID:        uuid.New(),
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
	}
}

func TestCreateGetRoundTrip(t *testing.T) {
	t.Parallel()

	store := New()
	ctx := context.Background()

	in := pending("alice", "bob", 4000)
	if err := store.Create(ctx, in); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.Get(ctx, in.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.Sender != "alice" || got.Recipient != "bob" || got.Amount != 4000 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Status != transfers.StatusPending {
		t.Fatalf("want PENDING, got %s", got.Status)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("created at not set")
	}
}

func TestCreate_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      transfers.Transfer
		wantErr error
	}{
		{name: "zero_amount", in: pending("alice", "bob", 0), wantErr: transfers.ErrNonPositiveAmount},
		{name: "negative_amount", in: pending("alice", "bob", -10), wantErr: transfers.ErrNonPositiveAmount},
		{name: "self_transfer", in: pending("alice", "alice", 100), wantErr: transfers.ErrSameParticipant},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := New()

			err := store.Create(context.Background(), tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}

			if _, gerr := store.Get(context.Background(), tt.in.ID); !errors.Is(gerr, transfers.ErrNoSuchTransfer) {
				t.Fatalf("rejected transfer must not be stored, got %v", gerr)
			}
		})
	}
}

func TestCreate_DuplicateID(t *testing.T) {
	t.Parallel()

	store := New()
	ctx := context.Background()

	in := pending("alice", "bob", 100)
	if err := store.Create(ctx, in); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := store.Create(ctx, in)
	if !errors.Is(err, transfers.ErrTransferExists) {
		t.Fatalf("want ErrTransferExists, got %v", err)
	}
}

func TestGet_Unknown(t *testing.T) {
	t.Parallel()

	store := New()

	_, err := store.Get(context.Background(), uuid.New())
	if !errors.Is(err, transfers.ErrNoSuchTransfer) {
		t.Fatalf("want ErrNoSuchTransfer, got %v", err)
	}
}

func TestQuery_Filters(t *testing.T) {
	t.Parallel()

	store := New()
	ctx := context.Background()

	t1 := pending("alice", "bob", 100)
	t2 := pending("bob", "alice", 200)
	t3 := pending("alice", "carol", 300)

	for _, tr := range []transfers.Transfer{t1, t2, t3} {
		if err := store.Create(ctx, tr); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	if err := store.Transition(ctx, t3.ID,
		[]transfers.Status{transfers.StatusPending}, transfers.StatusDeclined); err != nil {
		t.Fatalf("transition: %v", err)
	}

	alice := "alice"
	declined := transfers.StatusDeclined

	tests := []struct {
		name    string
		filter  transfers.Filter
		wantIDs []uuid.UUID
	}{
		{name: "no_filter_insertion_order", filter: transfers.Filter{}, wantIDs: []uuid.UUID{t1.ID, t2.ID, t3.ID}},
		{name: "by_sender", filter: transfers.Filter{Sender: &alice}, wantIDs: []uuid.UUID{t1.ID, t3.ID}},
		{name: "by_recipient", filter: transfers.Filter{Recipient: &alice}, wantIDs: []uuid.UUID{t2.ID}},
		{name: "by_status", filter: transfers.Filter{Status: &declined}, wantIDs: []uuid.UUID{t3.ID}},
		{name: "sender_and_status", filter: transfers.Filter{Sender: &alice, Status: &declined}, wantIDs: []uuid.UUID{t3.ID}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("query: %v", err)
			}

			if len(got) != len(tt.wantIDs) {
				t.Fatalf("want %d results, got %d", len(tt.wantIDs), len(got))
			}
			for i, want := range tt.wantIDs {
				if got[i].ID != want {
					t.Fatalf("result %d: want %s, got %s", i, want, got[i].ID)
				}
			}
		})
	}
}

func TestTransition_Guard(t *testing.T) {
	t.Parallel()

	store := New()
	ctx := context.Background()

	tr := pending("alice", "bob", 100)
	if err := store.Create(ctx, tr); err != nil {
		t.Fatalf("create: %v", err)
	}

	from := []transfers.Status{transfers.StatusPending}

	if err := store.Transition(ctx, tr.ID, from, transfers.StatusApproved); err != nil {
		t.Fatalf("first transition: %v", err)
	}

	// Terminal states absorb every further transition attempt.
	for _, to := range []transfers.Status{
		transfers.StatusApproved, transfers.StatusDeclined, transfers.StatusFailed,
	} {
		err := store.Transition(ctx, tr.ID, from, to)
		if !errors.Is(err, transfers.ErrTransferStatus) {
			t.Fatalf("transition to %s: want ErrTransferStatus, got %v", to, err)
		}
	}

	err := store.Transition(ctx, uuid.New(), from, transfers.StatusApproved)
	if !errors.Is(err, transfers.ErrNoSuchTransfer) {
		t.Fatalf("want ErrNoSuchTransfer, got %v", err)
	}
}

func TestTransition_ConcurrentSingleWinner(t *testing.T) {
	t.Parallel()

	store := New()
	ctx := context.Background()

	tr := pending("alice", "bob", 100)
	if err := store.Create(ctx, tr); err != nil {
		t.Fatalf("create: %v", err)
	}

	const workers = 16

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		wins   int
		losses int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := store.Transition(ctx, tr.ID,
				[]transfers.Status{transfers.StatusPending}, transfers.StatusApproved)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				wins++
			case errors.Is(err, transfers.ErrTransferStatus):
				losses++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	wg.Wait()

	if wins != 1 || losses != workers-1 {
		t.Fatalf("want 1 winner / %d losers, got %d / %d", workers-1, wins, losses)
	}
}
