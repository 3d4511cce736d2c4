package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/chris-alexander-pop/event-aggregator/pkg/errors"
	"github.com/chris-alexander-pop/event-aggregator/pkg/event"
	"github.com/labstack/echo/v4"
)

const defaultEventsLimit = 100

// StatsResponse is the reconciled operator view. Field names are wire
// contract; total_received_queued is incremented at consume time despite the
// name (see package doc).
type StatsResponse struct {
	TotalReceivedQueued       int64             `json:"total_received_queued"`
	UniqueProcessedDB         int64             `json:"unique_processed_db"`
	EstimatedDuplicateDropped int64             `json:"estimated_duplicate_dropped"`
	TopicsCount               []TopicCountEntry `json:"topics_count"`
	UptimeSeconds             float64           `json:"uptime_seconds"`
}

// TopicCountEntry mirrors store.TopicCount on the wire.
type TopicCountEntry struct {
	Topic string `json:"topic"`
	Count int64  `json:"count"`
}

func (s *Service) publish(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return event.ErrSchema(event.FieldError{Field: "body", Message: "unreadable request body"})
	}

	ev, err := event.ParseAndValidate(body)
	if err != nil {
		return err
	}

	envelope, err := ev.Render()
	if err != nil {
		return apperrors.Wrap(err, "failed to render envelope")
	}
	if err := s.queue.Enqueue(c.Request().Context(), envelope); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":   "queued",
		"event_id": ev.EventID,
	})
}

// publishBatch validates every member before any enqueue: a batch with one
// invalid member is rejected whole, so a later invalid member can never
// leave earlier members half-enqueued.
func (s *Service) publishBatch(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return event.ErrSchema(event.FieldError{Field: "body", Message: "unreadable request body"})
	}

	var members []json.RawMessage
	if err := json.Unmarshal(body, &members); err != nil {
		return event.ErrSchema(event.FieldError{Field: "body", Message: "expected a JSON array of events"})
	}

	envelopes := make([][]byte, 0, len(members))
	var fields []event.FieldError
	for i, raw := range members {
		ev, err := event.ParseAndValidate(raw)
		if err != nil {
			fields = append(fields, indexedFields(i, err)...)
			continue
		}
		envelope, err := ev.Render()
		if err != nil {
			return apperrors.Wrap(err, "failed to render envelope")
		}
		envelopes = append(envelopes, envelope)
	}
	if len(fields) > 0 {
		return event.ErrSchema(fields...)
	}

	if err := s.queue.EnqueueBatch(c.Request().Context(), envelopes); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status": "batch_queued",
		"count":  len(envelopes),
	})
}

func (s *Service) listEvents(c echo.Context) error {
	limit := defaultEventsLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return event.ErrSchema(event.FieldError{Field: "limit", Message: "must be an integer"})
		}
		limit = n
	}

	logs, err := s.store.SelectRecent(c.Request().Context(), c.QueryParam("topic"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, logs)
}

func (s *Service) stats(c echo.Context) error {
	ctx := c.Request().Context()

	received, err := s.queue.Received(ctx)
	if err != nil {
		return err
	}
	unique, err := s.store.CountUnique(ctx)
	if err != nil {
		return err
	}
	topics, err := s.store.CountByTopic(ctx)
	if err != nil {
		return err
	}

	entries := make([]TopicCountEntry, len(topics))
	for i, t := range topics {
		entries[i] = TopicCountEntry{Topic: t.Topic, Count: t.Count}
	}

	return c.JSON(http.StatusOK, StatsResponse{
		TotalReceivedQueued:       received,
		UniqueProcessedDB:         unique,
		EstimatedDuplicateDropped: received - unique,
		TopicsCount:               entries,
		UptimeSeconds:             time.Since(s.start).Seconds(),
	})
}

func (s *Service) healthz(c echo.Context) error {
	ctx := c.Request().Context()
	brokerUp := s.queue.Healthy(ctx)
	storeUp := s.store.Healthy(ctx)

	status := http.StatusOK
	if !brokerUp || !storeUp {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, map[string]any{
		"broker": brokerUp,
		"store":  storeUp,
	})
}

// indexedFields prefixes schema-error fields with the member index so batch
// rejections name the offending element.
func indexedFields(i int, err error) []event.FieldError {
	var schema *event.SchemaError
	if !apperrors.As(err, &schema) {
		return []event.FieldError{{Field: fmt.Sprintf("[%d]", i), Message: err.Error()}}
	}
	out := make([]event.FieldError, len(schema.Fields))
	for j, f := range schema.Fields {
		out[j] = event.FieldError{
			Field:   fmt.Sprintf("[%d].%s", i, f.Field),
			Message: f.Message,
		}
	}
	return out
}
