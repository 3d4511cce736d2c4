package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/chris-alexander-pop/event-aggregator/pkg/event"
	"github.com/chris-alexander-pop/event-aggregator/pkg/store"
	"github.com/chris-alexander-pop/event-aggregator/pkg/store/adapters/postgres"
	"github.com/chris-alexander-pop/event-aggregator/pkg/test"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

type PostgresStoreSuite struct {
	test.Suite
	container *tcpostgres.PostgresContainer
	s         store.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	test.RequireIntegration(t)
	test.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("db"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("pass"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	st, err := postgres.New(store.Config{
		DSN:             dsn,
		MaxIdleConns:    5,
		MaxOpenConns:    20,
		ConnMaxLifetime: time.Minute,
	})
	s.Require().NoError(err)
	s.Require().NoError(st.Init(ctx))
	s.s = st
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.s != nil {
		s.NoError(s.s.Close())
	}
	if s.container != nil {
		s.NoError(s.container.Terminate(context.Background()))
	}
}

func (s *PostgresStoreSuite) TestInsertDedup() {
	ev := &event.Event{
		Topic:     "pg",
		EventID:   "dup-1",
		Timestamp: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Source:    "test",
		Payload:   map[string]any{"nested": map[string]any{"data": float64(123)}},
	}

	res, err := s.s.InsertDedup(s.Ctx, ev)
	s.NoError(err)
	s.Equal(store.Inserted, res)

	res, err = s.s.InsertDedup(s.Ctx, ev)
	s.NoError(err)
	s.Equal(store.Duplicate, res)

	logs, err := s.s.SelectRecent(s.Ctx, "pg", 10)
	s.NoError(err)
	s.Require().Len(logs, 1)
	s.Equal(store.JSONMap(ev.Payload), logs[0].Payload)
	s.Equal(12, logs[0].Timestamp.UTC().Hour())
	s.False(logs[0].ProcessedAt.IsZero())
}

// Fifty goroutines racing the same dedup key must produce exactly one row;
// the unique index arbitrates, not the application.
func (s *PostgresStoreSuite) TestConcurrentConflictingInserts() {
	const n = 50
	ev := &event.Event{
		Topic:     "race",
		EventID:   "same",
		Timestamp: time.Now().UTC(),
		Source:    "test",
		Payload:   map[string]any{},
	}

	var wg sync.WaitGroup
	inserted := make(chan store.Result, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.s.InsertDedup(s.Ctx, ev)
			s.NoError(err)
			inserted <- res
		}()
	}
	wg.Wait()
	close(inserted)

	wins := 0
	for res := range inserted {
		if res == store.Inserted {
			wins++
		}
	}
	s.Equal(1, wins)

	logs, err := s.s.SelectRecent(s.Ctx, "race", 100)
	s.NoError(err)
	s.Len(logs, 1)
}

func (s *PostgresStoreSuite) TestConcurrentDistinctInserts() {
	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := s.s.InsertDedup(s.Ctx, &event.Event{
				Topic:     "distinct",
				EventID:   fmt.Sprintf("d-%d", i),
				Timestamp: time.Now().UTC(),
				Source:    "test",
				Payload:   map[string]any{"i": float64(i)},
			})
			s.NoError(err)
			s.Equal(store.Inserted, res)
		}(i)
	}
	wg.Wait()

	logs, err := s.s.SelectRecent(s.Ctx, "distinct", 100)
	s.NoError(err)
	s.Len(logs, n)
}
