package event_test

import (
	"encoding/json"
	"testing"
	"time"

	apperrors "github.com/chris-alexander-pop/event-aggregator/pkg/errors"
	"github.com/chris-alexander-pop/event-aggregator/pkg/event"
	"github.com/chris-alexander-pop/event-aggregator/pkg/test"
)

type EventSuite struct {
	test.Suite
}

func TestEventSuite(t *testing.T) {
	test.Run(t, new(EventSuite))
}

func (s *EventSuite) TestParseValid() {
	raw := []byte(`{
		"topic": "orders",
		"event_id": "E1",
		"timestamp": "2025-01-01T00:00:00Z",
		"source": "svc-a",
		"payload": {"amount": 42}
	}`)

	ev, err := event.ParseAndValidate(raw)
	s.NoError(err)
	s.Equal("orders", ev.Topic)
	s.Equal("E1", ev.EventID)
	s.Equal("svc-a", ev.Source)
	s.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), ev.Timestamp)
	s.Equal(float64(42), ev.Payload["amount"])
}

func (s *EventSuite) TestMissingFieldsRejected() {
	ev, err := event.ParseAndValidate([]byte(`{"topic": "fail"}`))
	s.Nil(ev)
	s.Error(err)
	s.Equal(event.CodeSchemaRejected, apperrors.Code(err))

	var schema *event.SchemaError
	s.True(apperrors.As(err, &schema))
	s.Len(schema.Fields, 4)
	names := make(map[string]bool)
	for _, f := range schema.Fields {
		names[f.Field] = true
	}
	s.True(names["event_id"])
	s.True(names["timestamp"])
	s.True(names["source"])
	s.True(names["payload"])
}

func (s *EventSuite) TestIllTypedFieldRejected() {
	_, err := event.ParseAndValidate([]byte(`{
		"topic": 5, "event_id": "E1", "timestamp": "2025-01-01T00:00:00",
		"source": "s", "payload": {}
	}`))
	s.Error(err)
	s.Equal(event.CodeSchemaRejected, apperrors.Code(err))
}

func (s *EventSuite) TestNonObjectPayloadRejected() {
	for _, payload := range []string{`[1,2,3]`, `"text"`, `5`, `null`, `true`} {
		raw := []byte(`{"topic":"t","event_id":"e","timestamp":"2025-01-01T00:00:00","source":"s","payload":` + payload + `}`)
		_, err := event.ParseAndValidate(raw)
		s.Error(err, "payload %s should be rejected", payload)
	}
}

func (s *EventSuite) TestMalformedJSONRejected() {
	_, err := event.ParseAndValidate([]byte(`{not json`))
	s.Error(err)
	s.Equal(event.CodeSchemaRejected, apperrors.Code(err))
}

func (s *EventSuite) TestTimestampOffsetNormalised() {
	for input, want := range map[string]time.Time{
		"2025-01-01T12:00:00+00:00":   time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		"2025-01-01T12:00:00+02:00":   time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
		"2025-01-01T12:00:00Z":        time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		"2025-01-01T12:00:00":         time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		"2025-01-01T12:00:00.500":     time.Date(2025, 1, 1, 12, 0, 0, 500000000, time.UTC),
		"2025-06-30T23:59:59.123456Z": time.Date(2025, 6, 30, 23, 59, 59, 123456000, time.UTC),
		"2024-02-29T00:00:00-05:00":   time.Date(2024, 2, 29, 5, 0, 0, 0, time.UTC),
	} {
		raw := []byte(`{"topic":"t","event_id":"e","timestamp":"` + input + `","source":"s","payload":{}}`)
		ev, err := event.ParseAndValidate(raw)
		s.NoError(err, input)
		s.True(ev.Timestamp.Equal(want), "input %s: got %v want %v", input, ev.Timestamp, want)
	}
}

func (s *EventSuite) TestBadTimestampRejected() {
	for _, input := range []string{"not-a-time", "2025-13-01T00:00:00", "01/01/2025"} {
		raw := []byte(`{"topic":"t","event_id":"e","timestamp":"` + input + `","source":"s","payload":{}}`)
		_, err := event.ParseAndValidate(raw)
		s.Error(err, input)
	}
}

func (s *EventSuite) TestRenderParseRoundTrip() {
	original := &event.Event{
		Topic:     "orders",
		EventID:   "E-99",
		Timestamp: time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC),
		Source:    "svc",
		Payload: map[string]any{
			"nested": map[string]any{"data": float64(123)},
			"list":   []any{float64(1), float64(2)},
			"flag":   true,
			"label":  "x",
		},
	}

	envelope, err := original.Render()
	s.NoError(err)

	parsed, err := event.ParseAndValidate(envelope)
	s.NoError(err)
	s.Equal(original.Topic, parsed.Topic)
	s.Equal(original.EventID, parsed.EventID)
	s.Equal(original.Source, parsed.Source)
	s.True(original.Timestamp.Equal(parsed.Timestamp))
	s.Equal(original.Payload, parsed.Payload)
}

func (s *EventSuite) TestRenderedTimestampIsNaive() {
	ev := &event.Event{
		Topic:     "t",
		EventID:   "e",
		Timestamp: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Source:    "s",
		Payload:   map[string]any{},
	}
	envelope, err := ev.Render()
	s.NoError(err)

	var wire map[string]any
	s.NoError(json.Unmarshal(envelope, &wire))
	s.Equal("2025-01-01T12:00:00", wire["timestamp"])
}
