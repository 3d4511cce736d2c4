// Package memory provides an in-process broker.Queue for testing and
// development. No external infrastructure is required.
package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chris-alexander-pop/event-aggregator/pkg/broker"
)

// Queue implements broker.Queue backed by a slice and an atomic counter.
type Queue struct {
	mu       sync.Mutex
	items    [][]byte
	closed   bool
	wake     chan struct{}
	received atomic.Int64
}

func New() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

func (q *Queue) Enqueue(ctx context.Context, envelope []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return broker.ErrClosed()
	}
	q.items = append(q.items, envelope)
	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

func (q *Queue) EnqueueBatch(ctx context.Context, envelopes [][]byte) error {
	for _, env := range envelopes {
		if err := q.Enqueue(ctx, env); err != nil {
			return err
		}
	}
	return nil
}

func (q *Queue) BlockingPop(ctx context.Context, timeout time.Duration) ([]byte, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return nil, broker.ErrClosed()
		}
		if len(q.items) > 0 {
			item := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return item, nil
		}
		q.mu.Unlock()

		select {
		case <-q.wake:
		case <-deadline.C:
			return nil, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (q *Queue) IncrementReceived(ctx context.Context) (int64, error) {
	return q.received.Add(1), nil
}

func (q *Queue) Received(ctx context.Context) (int64, error) {
	return q.received.Load(), nil
}

// Len reports the current queue depth. Test helper.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) Healthy(ctx context.Context) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return !q.closed
}

func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	return nil
}
