// Package broker provides the durable work-queue abstraction between the
// HTTP ingress and the consumer loop.
//
// The queue is a single named list with head-enqueue / tail-dequeue polarity:
// FIFO per producer, no total order across concurrent producers. The broker
// also owns the received counter, a monotone integer incremented once per
// consumer observation of an envelope.
//
// The package follows the adapter pattern with decoupled dependencies:
//   - Core interfaces are defined here (zero external dependencies)
//   - Each adapter lives in its own sub-package (pkg/broker/adapters/{driver})
//
// Usage:
//
//	import (
//	    "github.com/chris-alexander-pop/event-aggregator/pkg/broker"
//	    "github.com/chris-alexander-pop/event-aggregator/pkg/broker/adapters/redis"
//	)
//
//	q, err := redis.New(broker.Config{URL: "redis://localhost:6379/0"})
//	err = q.Enqueue(ctx, envelope)
package broker

import (
	"context"
	"time"
)

// Queue is the list-queue contract used by ingress and consumer.
// Implementations must be safe for concurrent use; the HTTP handlers and the
// consumer loop share one Queue.
type Queue interface {
	// Enqueue pushes one envelope onto the head of the queue.
	Enqueue(ctx context.Context, envelope []byte) error

	// EnqueueBatch pushes envelopes in order using a single pipelined
	// round-trip. An empty batch is a no-op.
	EnqueueBatch(ctx context.Context, envelopes [][]byte) error

	// BlockingPop pops from the tail of the queue, blocking up to timeout.
	// Returns (nil, nil) when the queue stayed empty for the full timeout.
	BlockingPop(ctx context.Context, timeout time.Duration) ([]byte, error)

	// IncrementReceived atomically increments the received counter and
	// returns the post-increment value.
	IncrementReceived(ctx context.Context) (int64, error)

	// Received reads the current counter value; zero if it was never set.
	Received(ctx context.Context) (int64, error)

	// Healthy reports whether the broker connection is usable.
	Healthy(ctx context.Context) bool

	// Close releases the broker connection.
	Close() error
}
