package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/fastprodman/walletsvc/internal/sessions"
)

type StoreSuite struct {
	suite.Suite
	mini  *miniredis.Miniredis
	store *Store
	ctx   context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.store = NewWithClient(client, time.Hour)
	s.ctx = context.Background()
}

func (s *StoreSuite) TearDownTest() {
	if s.store != nil {
		_ = s.store.Shutdown()
	}
}

func snap(login string) sessions.Snapshot {
	return sessions.Snapshot{PlayerID: "p_" + login, Login: login, Username: "U_" + login, Balance: 250}
}

func (s *StoreSuite) TestOpenExistsRoundTrip() {
	token, err := s.store.Open(s.ctx, snap("alice"))
	s.Require().NoError(err)
	s.NotEmpty(token)

	got, err := s.store.Exists(s.ctx, token)
	s.Require().NoError(err)
	s.Equal("alice", got.Login)
	s.Equal("p_alice", got.PlayerID)
	s.Equal(int64(250), got.Balance)
}

func (s *StoreSuite) TestUnknownTokenUnauthorized() {
	_, err := s.store.Exists(s.ctx, "bogus")
	s.ErrorIs(err, sessions.ErrUnauthorized)
}

func (s *StoreSuite) TestDistinctTokensIndependentSessions() {
	t1, err := s.store.Open(s.ctx, snap("alice"))
	s.Require().NoError(err)
	t2, err := s.store.Open(s.ctx, snap("alice"))
	s.Require().NoError(err)
	s.NotEqual(t1, t2)

	s.Require().NoError(s.store.Close(s.ctx, t1))

	_, err = s.store.Exists(s.ctx, t1)
	s.ErrorIs(err, sessions.ErrUnauthorized)

	_, err = s.store.Exists(s.ctx, t2)
	s.NoError(err)
}

func (s *StoreSuite) TestCloseIdempotent() {
	token, err := s.store.Open(s.ctx, snap("alice"))
	s.Require().NoError(err)

	s.NoError(s.store.Close(s.ctx, token))
	s.NoError(s.store.Close(s.ctx, token))
	s.NoError(s.store.Close(s.ctx, "never-existed"))
}

func (s *StoreSuite) TestTTLExpiry() {
	token, err := s.store.Open(s.ctx, snap("alice"))
	s.Require().NoError(err)

	s.mini.FastForward(59 * time.Minute)
	_, err = s.store.Exists(s.ctx, token)
	s.NoError(err)

	s.mini.FastForward(2 * time.Minute)
	_, err = s.store.Exists(s.ctx, token)
	s.ErrorIs(err, sessions.ErrUnauthorized)
}
