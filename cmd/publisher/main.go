// Command publisher is a load generator for the aggregator: it posts batches
// of randomized events to /publish/batch, re-using a fraction of previously
// sent event IDs so the dedup path is exercised under load.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/chris-alexander-pop/event-aggregator/pkg/config"
	"github.com/chris-alexander-pop/event-aggregator/pkg/event"
	"github.com/chris-alexander-pop/event-aggregator/pkg/logger"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

type publisherConfig struct {
	// TargetURL is the aggregator's base publish endpoint.
	TargetURL string `env:"TARGET_URL" env-default:"http://aggregator:8080/publish"`

	// TotalEvents is how many events to send in total.
	TotalEvents int `env:"TOTAL_EVENTS" env-default:"5000"`

	// BatchSize is the size of each /publish/batch request.
	BatchSize int `env:"BATCH_SIZE" env-default:"50"`

	// DupRatio is the fraction of events that reuse an already-sent event_id.
	DupRatio float64 `env:"DUP_RATIO" env-default:"0.3"`

	Logger logger.Config
}

var topics = []string{"order", "payment", "login", "sensor"}

func main() {
	var cfg publisherConfig
	if err := config.Load(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Init(cfg.Logger)

	if err := run(cfg); err != nil {
		logger.L().Error("publisher failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg publisherConfig) error {
	client := retryablehttp.NewClient()
	client.RetryMax = 5
	client.Logger = nil

	logger.L().Info("publisher started", "target", cfg.TargetURL, "total", cfg.TotalEvents)

	var sentIDs []string
	sent := 0
	for sent < cfg.TotalEvents {
		batch := make([]map[string]any, 0, cfg.BatchSize)
		for i := 0; i < cfg.BatchSize; i++ {
			ev := generate()
			if len(sentIDs) > 0 && rand.Float64() < cfg.DupRatio {
				ev["event_id"] = sentIDs[rand.Intn(len(sentIDs))]
			} else {
				sentIDs = append(sentIDs, ev["event_id"].(string))
				if len(sentIDs) > 5000 {
					sentIDs = sentIDs[1:]
				}
			}
			batch = append(batch, ev)
		}

		body, err := json.Marshal(batch)
		if err != nil {
			return err
		}
		resp, err := client.Post(cfg.TargetURL+"/batch", "application/json", bytes.NewReader(body))
		if err != nil {
			logger.L().Warn("batch post failed, backing off", "error", err)
			time.Sleep(2 * time.Second)
			continue
		}
		resp.Body.Close()
		if resp.StatusCode != 200 {
			logger.L().Warn("batch rejected", "status", resp.StatusCode)
			continue
		}

		sent += len(batch)
		logger.L().Info("progress", "sent", sent, "total", cfg.TotalEvents)
		time.Sleep(10 * time.Millisecond)
	}

	logger.L().Info("publisher finished", "sent", sent)
	return nil
}

func generate() map[string]any {
	return map[string]any{
		"topic":     topics[rand.Intn(len(topics))],
		"event_id":  uuid.NewString(),
		"timestamp": event.FormatTimestamp(time.Now().UTC()),
		"source":    "publisher-1",
		"payload":   map[string]any{"value": rand.Intn(100) + 1},
	}
}
