package ingest

import (
	"github.com/chris-alexander-pop/event-aggregator/pkg/broker"
	"github.com/chris-alexander-pop/event-aggregator/pkg/logger"
	"github.com/chris-alexander-pop/event-aggregator/pkg/store"
	"github.com/chris-alexander-pop/event-aggregator/pkg/telemetry"
)

// Config is the full service configuration, loaded from the environment.
type Config struct {
	// HTTPAddr is the listen address for the ingress.
	HTTPAddr string `env:"HTTP_ADDR" env-default:":8080"`

	Logger    logger.Config
	Telemetry telemetry.Config
	Broker    broker.Config
	Store     store.Config
}
