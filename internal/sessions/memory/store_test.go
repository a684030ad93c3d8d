package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/fastprodman/walletsvc/internal/sessions"
)

type StoreSuite struct {
	suite.Suite
	ctx context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
}

func snap(login string) sessions.Snapshot {
	return sessions.Snapshot{PlayerID: "p_" + login, Login: login, Username: "U_" + login, Balance: 500}
}

func (s *StoreSuite) TestOpenExistsRoundTrip() {
	store := New(0)

	token, err := store.Open(s.ctx, snap("alice"))
	s.Require().NoError(err)
	s.NotEmpty(token)

	got, err := store.Exists(s.ctx, token)
	s.Require().NoError(err)
	s.Equal("alice", got.Login)
	s.Equal(int64(500), got.Balance)
}

func (s *StoreSuite) TestUnknownTokenUnauthorized() {
	store := New(0)

	_, err := store.Exists(s.ctx, "no-such-token")
	s.ErrorIs(err, sessions.ErrUnauthorized)
}

// Two sessions for the same player are independent: distinct tokens,
// and closing one leaves the other valid.
func (s *StoreSuite) TestTwoSessionsSamePlayerIndependent() {
	store := New(0)

	t1, err := store.Open(s.ctx, snap("alice"))
	s.Require().NoError(err)
	t2, err := store.Open(s.ctx, snap("alice"))
	s.Require().NoError(err)
	s.NotEqual(t1, t2)

	s.Require().NoError(store.Close(s.ctx, t1))

	_, err = store.Exists(s.ctx, t1)
	s.ErrorIs(err, sessions.ErrUnauthorized)

	_, err = store.Exists(s.ctx, t2)
	s.NoError(err)
}

func (s *StoreSuite) TestCloseIdempotent() {
	store := New(0)

	token, err := store.Open(s.ctx, snap("alice"))
	s.Require().NoError(err)

	s.NoError(store.Close(s.ctx, token))
	s.NoError(store.Close(s.ctx, token))
	s.NoError(store.Close(s.ctx, "never-existed"))
}

func (s *StoreSuite) TestTTLExpiryCheckedAtExists() {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := New(time.Hour).WithClock(func() time.Time { return now })

	token, err := store.Open(s.ctx, snap("alice"))
	s.Require().NoError(err)

	now = now.Add(59 * time.Minute)
	_, err = store.Exists(s.ctx, token)
	s.NoError(err)

	now = now.Add(2 * time.Minute)
	_, err = store.Exists(s.ctx, token)
	s.ErrorIs(err, sessions.ErrUnauthorized)
}

func (s *StoreSuite) TestZeroTTLNeverExpires() {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := New(0).WithClock(func() time.Time { return now })

	token, err := store.Open(s.ctx, snap("alice"))
	s.Require().NoError(err)

	now = now.Add(1000 * time.Hour)
	_, err = store.Exists(s.ctx, token)
	s.NoError(err)
}
