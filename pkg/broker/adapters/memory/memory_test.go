package memory_test

import (
	"testing"
	"time"

	"github.com/chris-alexander-pop/event-aggregator/pkg/broker"
	"github.com/chris-alexander-pop/event-aggregator/pkg/broker/adapters/memory"
	apperrors "github.com/chris-alexander-pop/event-aggregator/pkg/errors"
	"github.com/chris-alexander-pop/event-aggregator/pkg/test"
)

type MemoryQueueSuite struct {
	test.Suite
	q *memory.Queue
}

func (s *MemoryQueueSuite) SetupTest() {
	s.Suite.SetupTest()
	s.q = memory.New()
}

func TestMemoryQueueSuite(t *testing.T) {
	test.Run(t, new(MemoryQueueSuite))
}

func (s *MemoryQueueSuite) TestFIFO() {
	s.NoError(s.q.Enqueue(s.Ctx, []byte("a")))
	s.NoError(s.q.Enqueue(s.Ctx, []byte("b")))
	s.NoError(s.q.Enqueue(s.Ctx, []byte("c")))

	for _, want := range []string{"a", "b", "c"} {
		item, err := s.q.BlockingPop(s.Ctx, time.Second)
		s.NoError(err)
		s.Equal(want, string(item))
	}
}

func (s *MemoryQueueSuite) TestBatchPreservesOrder() {
	s.NoError(s.q.EnqueueBatch(s.Ctx, [][]byte{[]byte("1"), []byte("2"), []byte("3")}))
	s.Equal(3, s.q.Len())

	first, err := s.q.BlockingPop(s.Ctx, time.Second)
	s.NoError(err)
	s.Equal("1", string(first))
}

func (s *MemoryQueueSuite) TestEmptyBatchIsNoop() {
	s.NoError(s.q.EnqueueBatch(s.Ctx, nil))
	s.Equal(0, s.q.Len())
}

func (s *MemoryQueueSuite) TestPopTimesOutEmpty() {
	start := time.Now()
	item, err := s.q.BlockingPop(s.Ctx, 50*time.Millisecond)
	s.NoError(err)
	s.Nil(item)
	s.GreaterOrEqual(time.Since(start), 50*time.Millisecond)
}

func (s *MemoryQueueSuite) TestPopWakesOnEnqueue() {
	done := make(chan []byte, 1)
	go func() {
		item, _ := s.q.BlockingPop(s.Ctx, 5*time.Second)
		done <- item
	}()

	time.Sleep(20 * time.Millisecond)
	s.NoError(s.q.Enqueue(s.Ctx, []byte("x")))

	select {
	case item := <-done:
		s.Equal("x", string(item))
	case <-time.After(time.Second):
		s.Fail("pop did not wake on enqueue")
	}
}

func (s *MemoryQueueSuite) TestCounterMonotone() {
	n0, err := s.q.Received(s.Ctx)
	s.NoError(err)
	s.Equal(int64(0), n0)

	last := int64(0)
	for i := 0; i < 5; i++ {
		n, err := s.q.IncrementReceived(s.Ctx)
		s.NoError(err)
		s.Greater(n, last)
		last = n
	}

	n, err := s.q.Received(s.Ctx)
	s.NoError(err)
	s.Equal(int64(5), n)
}

func (s *MemoryQueueSuite) TestClosedQueueRejects() {
	s.NoError(s.q.Close())
	err := s.q.Enqueue(s.Ctx, []byte("x"))
	s.Error(err)
	s.Equal(broker.CodeClosed, apperrors.Code(err))
	s.False(s.q.Healthy(s.Ctx))
}
