// Command aggregator runs the event ingestion and deduplication service:
// HTTP ingress, broker-backed queue, and the consumer that persists unique
// events into the relational store.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/chris-alexander-pop/event-aggregator/pkg/broker/adapters/redis"
	"github.com/chris-alexander-pop/event-aggregator/pkg/config"
	"github.com/chris-alexander-pop/event-aggregator/pkg/ingest"
	"github.com/chris-alexander-pop/event-aggregator/pkg/logger"
	"github.com/chris-alexander-pop/event-aggregator/pkg/store/adapters/postgres"
	"github.com/chris-alexander-pop/event-aggregator/pkg/telemetry"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		logger.L().Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg ingest.Config
	if err := config.Load(&cfg); err != nil {
		return err
	}

	logger.Init(cfg.Logger)

	shutdownTracing, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Broker and store must be reachable at startup; anything else is a
	// recoverable runtime condition.
	queue, err := redis.New(cfg.Broker)
	if err != nil {
		return err
	}
	defer queue.Close()

	st, err := postgres.New(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Init(ctx); err != nil {
		return err
	}

	svc := ingest.New(queue, st)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return svc.RunConsumer(ctx)
	})
	g.Go(func() error {
		logger.L().Info("listening", "addr", cfg.HTTPAddr)
		return svc.Start(cfg.HTTPAddr)
	})
	g.Go(func() error {
		<-ctx.Done()
		return svc.Shutdown(context.Background())
	})

	return g.Wait()
}
