//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	goredis "github.com/redis/go-redis/v9"

	"petrack/internal/ports/locks"
)

type LockerSuite struct {
	suite.Suite
	container *tcredis.RedisContainer
	client    *goredis.Client
}

func TestLockerSuite(t *testing.T) {
	suite.Run(t, new(LockerSuite))
}

func (s *LockerSuite) SetupSuite() {
	ctx := context.Background()
	c, err := tcredis.Run(ctx, "redis:7-alpine")
	s.Require().NoError(err)
	s.container = c

	url, err := c.ConnectionString(ctx)
	s.Require().NoError(err)

	s.client, err = Connect(ctx, url)
	s.Require().NoError(err)
}

func (s *LockerSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *LockerSuite) SetupTest() {
	s.Require().NoError(s.client.FlushAll(context.Background()).Err())
}

func (s *LockerSuite) TestSecondHolderWaitsUntilRelease() {
	l := New(s.client, Options{TTL: 5 * time.Second, MaxWait: 100 * time.Millisecond})
	ctx := context.Background()

	unlock, err := l.Lock(ctx, locks.PetKey("p1"))
	s.Require().NoError(err)

	_, err = l.Lock(ctx, locks.PetKey("p1"))
	s.ErrorIs(err, locks.ErrNotAcquired)

	unlock()

	again, err := l.Lock(ctx, locks.PetKey("p1"))
	s.Require().NoError(err)
	again()
}

func (s *LockerSuite) TestUnlockDoesNotDropForeignToken() {
	l := New(s.client, Options{TTL: 50 * time.Millisecond, MaxWait: time.Second})
	ctx := context.Background()

	stale, err := l.Lock(ctx, "k")
	s.Require().NoError(err)
	time.Sleep(80 * time.Millisecond)

	fresh, err := l.Lock(ctx, "k")
	s.Require().NoError(err)
	defer fresh()

	stale()

	exists, err := s.client.Exists(ctx, "k").Result()
	require.NoError(s.T(), err)
	s.Equal(int64(1), exists)
}
