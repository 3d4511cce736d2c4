// Package store provides the persistence layer for processed events.
//
// The correctness-critical piece is InsertDedup: a single round-trip
// insert-on-conflict-do-nothing against the composite unique key
// (topic, event_id). The unique index arbitrates concurrent conflicting
// inserts; no application-level locking or read-then-write is involved.
//
// The package follows the adapter pattern:
//   - Core interface and the event_logs model are defined here
//   - Each driver lives in its own sub-package (pkg/store/adapters/{driver})
//
// Usage:
//
//	import (
//	    "github.com/chris-alexander-pop/event-aggregator/pkg/store"
//	    "github.com/chris-alexander-pop/event-aggregator/pkg/store/adapters/postgres"
//	)
//
//	s, err := postgres.New(store.Config{DSN: os.Getenv("DATABASE_URL")})
//	res, err := s.InsertDedup(ctx, ev)
package store

import (
	"context"

	"github.com/chris-alexander-pop/event-aggregator/pkg/event"
)

// Result reports the outcome of an InsertDedup call.
type Result int

const (
	// Inserted means a new row was created.
	Inserted Result = iota
	// Duplicate means the composite key already existed and the insert was
	// a no-op. Duplicates are expected and are not errors.
	Duplicate
)

// TopicCount is one (topic, cardinality) pair from CountByTopic.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int64  `json:"count"`
}

// Store is the persistence contract for the pipeline.
type Store interface {
	// Init creates the event_logs table and its indexes if absent.
	// Idempotent; called once at service start.
	Init(ctx context.Context) error

	// InsertDedup atomically inserts ev unless (topic, event_id) already
	// exists. Distinguishing Inserted from Duplicate is by affected-row
	// count: 1 is Inserted, 0 is Duplicate.
	InsertDedup(ctx context.Context, ev *event.Event) (Result, error)

	// CountUnique returns the number of persisted rows.
	CountUnique(ctx context.Context) (int64, error)

	// CountByTopic groups rows by topic. Ordering is unspecified.
	CountByTopic(ctx context.Context) ([]TopicCount, error)

	// SelectRecent returns up to limit rows ordered by event timestamp
	// descending, filtered by topic when non-empty. A non-positive limit
	// yields an empty result.
	SelectRecent(ctx context.Context, topic string, limit int) ([]EventLog, error)

	// Healthy reports whether the store connection is usable.
	Healthy(ctx context.Context) bool

	// Close releases all database connections.
	Close() error
}
