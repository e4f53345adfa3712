package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/bindassticks/storefront/internal/cart"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "STOREFRONT_SKIP_INTEGRATION_TESTS"

type RedisStoreSuite struct {
	suite.Suite
	container testcontainers.Container
	client    *redis.Client
	store     *RedisStore
	ctx       context.Context
}

func (s *RedisStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.container, err = testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7.4-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(s.T(), err, "Failed to run Redis container")

	endpoint, err := s.container.Endpoint(s.ctx, "")
	require.NoError(s.T(), err)

	s.client = redis.NewClient(&redis.Options{Addr: endpoint})
	require.NoError(s.T(), s.client.Ping(s.ctx).Err())
	s.store = NewRedisStore(s.client, "test:session:")
}

func (s *RedisStoreSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *RedisStoreSuite) SetupTest() {
	require.NoError(s.T(), s.client.FlushDB(s.ctx).Err())
}

func TestRedisStoreIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) TestSetGet() {
	// given
	sess := New("sess-1")
	sess.Cart.Add(cart.Product{ID: "p1", Name: "Naruto", Price: 4900})
	sess.Cart.Add(cart.Product{ID: "p1", Name: "Naruto", Price: 4900})

	// when
	require.NoError(s.T(), s.store.Set(s.ctx, sess.ID, sess.Snapshot(), time.Minute))
	snap, err := s.store.Get(s.ctx, sess.ID)

	// then
	require.NoError(s.T(), err)
	require.Len(s.T(), snap.Cart, 1)
	s.Equal(2, snap.Cart[0].Quantity)
	ttl, err := s.client.TTL(s.ctx, "test:session:sess-1").Result()
	require.NoError(s.T(), err)
	s.Greater(ttl, time.Duration(0))
}

func (s *RedisStoreSuite) TestGetMissing() {
	_, err := s.store.Get(s.ctx, "nope")

	s.ErrorIs(err, ErrSessionNotFound)
}

func (s *RedisStoreSuite) TestDelete() {
	require.NoError(s.T(), s.store.Set(s.ctx, "sess-2", Snapshot{}, time.Minute))

	require.NoError(s.T(), s.store.Delete(s.ctx, "sess-2"))

	_, err := s.store.Get(s.ctx, "sess-2")
	s.ErrorIs(err, ErrSessionNotFound)
}

func (s *RedisStoreSuite) TestCorruptValue() {
	require.NoError(s.T(), s.client.Set(s.ctx, "test:session:bad", "{not json", time.Minute).Err())

	_, err := s.store.Get(s.ctx, "bad")

	s.ErrorIs(err, ErrLoadSession)
}
