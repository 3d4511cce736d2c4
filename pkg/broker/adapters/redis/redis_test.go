package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/chris-alexander-pop/event-aggregator/pkg/broker"
	brokerredis "github.com/chris-alexander-pop/event-aggregator/pkg/broker/adapters/redis"
	"github.com/chris-alexander-pop/event-aggregator/pkg/test"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type RedisQueueSuite struct {
	test.Suite
	container *tcredis.RedisContainer
	q         *brokerredis.Queue
}

func TestRedisQueueSuite(t *testing.T) {
	test.RequireIntegration(t)
	test.Run(t, new(RedisQueueSuite))
}

func (s *RedisQueueSuite) SetupSuite() {
	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	s.Require().NoError(err)
	s.container = container
}

func (s *RedisQueueSuite) TearDownSuite() {
	if s.container != nil {
		s.NoError(s.container.Terminate(context.Background()))
	}
}

func (s *RedisQueueSuite) SetupTest() {
	s.Suite.SetupTest()

	uri, err := s.container.ConnectionString(s.Ctx)
	s.Require().NoError(err)

	q, err := brokerredis.New(broker.Config{
		URL:        uri,
		QueueKey:   "event_queue_test",
		CounterKey: "stats:received_count_test",
	})
	s.Require().NoError(err)
	s.q = q
}

func (s *RedisQueueSuite) TearDownTest() {
	if s.q == nil {
		return
	}
	// Drain leftovers so tests stay independent.
	for {
		item, err := s.q.BlockingPop(s.Ctx, 10*time.Millisecond)
		if err != nil || item == nil {
			break
		}
	}
	s.NoError(s.q.Close())
}

func (s *RedisQueueSuite) TestEnqueuePopRoundTrip() {
	s.NoError(s.q.Enqueue(s.Ctx, []byte(`{"event_id":"E1"}`)))

	item, err := s.q.BlockingPop(s.Ctx, time.Second)
	s.NoError(err)
	s.Equal(`{"event_id":"E1"}`, string(item))
}

func (s *RedisQueueSuite) TestFIFOAcrossBatch() {
	s.NoError(s.q.EnqueueBatch(s.Ctx, [][]byte{[]byte("1"), []byte("2"), []byte("3")}))

	for _, want := range []string{"1", "2", "3"} {
		item, err := s.q.BlockingPop(s.Ctx, time.Second)
		s.NoError(err)
		s.Equal(want, string(item))
	}
}

func (s *RedisQueueSuite) TestPopTimeout() {
	item, err := s.q.BlockingPop(s.Ctx, 100*time.Millisecond)
	s.NoError(err)
	s.Nil(item)
}

func (s *RedisQueueSuite) TestCounter() {
	before, err := s.q.Received(s.Ctx)
	s.NoError(err)

	n1, err := s.q.IncrementReceived(s.Ctx)
	s.NoError(err)
	n2, err := s.q.IncrementReceived(s.Ctx)
	s.NoError(err)
	s.Equal(n1+1, n2)

	after, err := s.q.Received(s.Ctx)
	s.NoError(err)
	s.Equal(before+2, after)
}

func (s *RedisQueueSuite) TestHealthy() {
	s.True(s.q.Healthy(s.Ctx))
}
