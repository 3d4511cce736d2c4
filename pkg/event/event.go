package event

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
)

// Timestamp layouts accepted from producers. Offset-bearing forms are
// normalised to UTC; naive forms are taken as UTC wall-clock time.
const (
	layoutNaive     = "2006-01-02T15:04:05"
	layoutNaiveFrac = "2006-01-02T15:04:05.999999999"
)

// Event is the in-flight envelope between ingress and store.
type Event struct {
	Topic     string         `json:"topic"`
	EventID   string         `json:"event_id"`
	Timestamp time.Time      `json:"-"`
	Source    string         `json:"source"`
	Payload   map[string]any `json:"payload"`
}

// wireEvent is the inbound JSON shape. Pointer fields distinguish a missing
// key from a present-but-empty value so validation can name the field.
type wireEvent struct {
	Topic     *string         `json:"topic" validate:"required"`
	EventID   *string         `json:"event_id" validate:"required"`
	Timestamp *string         `json:"timestamp" validate:"required"`
	Source    *string         `json:"source" validate:"required"`
	Payload   json.RawMessage `json:"payload" validate:"required"`
}

var validate = validator.New()

// ParseAndValidate decodes raw JSON into an Event, rejecting payloads that
// are missing required fields, carry ill-typed fields, or whose payload is
// not an object. The returned error is always an AppError with code
// CodeSchemaRejected wrapping a *SchemaError.
func ParseAndValidate(raw []byte) (*Event, error) {
	var w wireEvent
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, schemaErrorFromJSON(err)
	}

	if err := validate.Struct(&w); err != nil {
		return nil, schemaErrorFromValidator(err)
	}

	ts, err := parseTimestamp(*w.Timestamp)
	if err != nil {
		return nil, ErrSchema(FieldError{Field: "timestamp", Message: "not a valid ISO-8601 timestamp"})
	}

	payload, err := decodePayload(w.Payload)
	if err != nil {
		return nil, ErrSchema(FieldError{Field: "payload", Message: "must be a JSON object"})
	}

	return &Event{
		Topic:     *w.Topic,
		EventID:   *w.EventID,
		Timestamp: ts,
		Source:    *w.Source,
		Payload:   payload,
	}, nil
}

// Render produces the canonical envelope form pushed onto the broker:
// the event as JSON with the timestamp emitted in naive ISO-8601 UTC.
func (e *Event) Render() ([]byte, error) {
	return json.Marshal(e)
}

// MarshalJSON emits the timestamp without an offset; normalisation already
// happened at parse time so the wall clock is the UTC instant.
func (e *Event) MarshalJSON() ([]byte, error) {
	type alias Event
	return json.Marshal(&struct {
		*alias
		Timestamp string `json:"timestamp"`
	}{
		alias:     (*alias)(e),
		Timestamp: FormatTimestamp(e.Timestamp),
	})
}

// FormatTimestamp renders an instant in the canonical naive ISO-8601 form.
func FormatTimestamp(t time.Time) string {
	if t.Nanosecond() == 0 {
		return t.UTC().Format(layoutNaive)
	}
	return t.UTC().Format(layoutNaiveFrac)
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation(layoutNaiveFrac, s, time.UTC); err == nil {
		return t, nil
	}
	return time.ParseInLocation(layoutNaive, s, time.UTC)
}

func decodePayload(raw json.RawMessage) (map[string]any, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrSchema(FieldError{Field: "payload", Message: "must be a JSON object"})
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}
