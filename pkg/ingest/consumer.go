package ingest

import (
	"context"
	"time"

	"github.com/chris-alexander-pop/event-aggregator/pkg/event"
	"github.com/chris-alexander-pop/event-aggregator/pkg/logger"
	"github.com/chris-alexander-pop/event-aggregator/pkg/store"
)

// errorBackoff is how long the consumer pauses after a failed iteration so a
// broken broker or store doesn't spin the loop.
const errorBackoff = time.Second

// RunConsumer drains the queue until ctx is canceled. It never returns an
// error from a single bad envelope or store failure; those are logged and the
// loop continues. Cancellation is observed at the dequeue-return boundary,
// bounded by the pop timeout.
//
// Running several consumers (in-process or across instances) is safe: the
// store's unique index arbitrates conflicting inserts.
func (s *Service) RunConsumer(ctx context.Context) error {
	logger.L().InfoContext(ctx, "consumer started")

	for {
		if ctx.Err() != nil {
			logger.L().Info("consumer stopped")
			return nil
		}
		if err := s.consumeOne(ctx); err != nil {
			logger.L().ErrorContext(ctx, "consumer iteration failed", "error", err)
			sleep(ctx, errorBackoff)
		}
	}
}

func (s *Service) consumeOne(ctx context.Context) error {
	envelope, err := s.queue.BlockingPop(ctx, s.popTimeout)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	if envelope == nil {
		return nil
	}

	// Counted at observation time, before the insert: duplicates still
	// increment, which is what estimated_duplicate_dropped measures.
	if _, err := s.queue.IncrementReceived(ctx); err != nil {
		return err
	}

	ev, err := event.ParseAndValidate(envelope)
	if err != nil {
		logger.L().DebugContext(ctx, "dropping malformed envelope", "error", err)
		return nil
	}

	res, err := s.store.InsertDedup(ctx, ev)
	if err != nil {
		// No dead-letter path: log the identity and drop.
		logger.L().ErrorContext(ctx, "dropping event after store failure",
			"topic", ev.Topic, "event_id", ev.EventID, "error", err)
		sleep(ctx, errorBackoff)
		return nil
	}

	if res == store.Duplicate {
		logger.L().DebugContext(ctx, "duplicate dropped", "topic", ev.Topic, "event_id", ev.EventID)
	} else {
		logger.L().DebugContext(ctx, "event processed", "topic", ev.Topic, "event_id", ev.EventID)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
