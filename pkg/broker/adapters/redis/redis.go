package redis

import (
	"context"
	"time"

	"github.com/chris-alexander-pop/event-aggregator/pkg/broker"
	"github.com/chris-alexander-pop/event-aggregator/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Queue implements broker.Queue on a redis list plus an INCR counter.
type Queue struct {
	client     *redis.Client
	queueKey   string
	counterKey string
}

// New connects to redis using the configured URL and verifies the connection
// with a ping.
func New(cfg broker.Config) (*Queue, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, broker.ErrInvalidConfig(cfg.URL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, broker.ErrUnavailable(err)
	}

	queueKey, counterKey := cfg.Keys()
	return &Queue{client: client, queueKey: queueKey, counterKey: counterKey}, nil
}

func (q *Queue) Enqueue(ctx context.Context, envelope []byte) error {
	if err := q.client.LPush(ctx, q.queueKey, envelope).Err(); err != nil {
		return broker.ErrUnavailable(err)
	}
	return nil
}

// EnqueueBatch pushes each envelope in order via one pipelined round-trip.
func (q *Queue) EnqueueBatch(ctx context.Context, envelopes [][]byte) error {
	if len(envelopes) == 0 {
		return nil
	}
	pipe := q.client.Pipeline()
	for _, env := range envelopes {
		pipe.LPush(ctx, q.queueKey, env)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return broker.ErrUnavailable(err)
	}
	return nil
}

// BlockingPop issues BRPOP with the given timeout. A timeout elapsing with
// an empty queue is not an error; it returns (nil, nil) so the consumer can
// reacquire control.
func (q *Queue) BlockingPop(ctx context.Context, timeout time.Duration) ([]byte, error) {
	res, err := q.client.BRPop(ctx, timeout, q.queueKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, broker.ErrUnavailable(err)
	}
	// BRPOP returns [key, value].
	if len(res) != 2 {
		return nil, errors.New(errors.CodeInternal, "unexpected BRPOP reply shape", nil)
	}
	return []byte(res[1]), nil
}

func (q *Queue) IncrementReceived(ctx context.Context) (int64, error) {
	n, err := q.client.Incr(ctx, q.counterKey).Result()
	if err != nil {
		return 0, broker.ErrUnavailable(err)
	}
	return n, nil
}

func (q *Queue) Received(ctx context.Context) (int64, error) {
	n, err := q.client.Get(ctx, q.counterKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, broker.ErrUnavailable(err)
	}
	return n, nil
}

func (q *Queue) Healthy(ctx context.Context) bool {
	return q.client.Ping(ctx).Err() == nil
}

func (q *Queue) Close() error {
	return q.client.Close()
}
