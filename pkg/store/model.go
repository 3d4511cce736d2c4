package store

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/chris-alexander-pop/event-aggregator/pkg/errors"
	"github.com/chris-alexander-pop/event-aggregator/pkg/event"
)

// JSONMap stores an arbitrary JSON object in a json column.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal payload")
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New(errors.CodeInternal, "unsupported payload column type", nil)
	}
	return json.Unmarshal(data, m)
}

// EventLog is one persisted event. Rows are immutable after insert.
type EventLog struct {
	ID          uint64    `gorm:"primaryKey"`
	Topic       string    `gorm:"index;uniqueIndex:uq_topic_event_id"`
	EventID     string    `gorm:"column:event_id;index;uniqueIndex:uq_topic_event_id"`
	Timestamp   time.Time `gorm:"type:timestamp"`
	Source      string
	Payload     JSONMap   `gorm:"type:json"`
	ProcessedAt time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP"`
}

// TableName pins the table name to the wire contract.
func (EventLog) TableName() string {
	return "event_logs"
}

// MarshalJSON renders timestamps in the same naive ISO-8601 form the event
// envelope uses, keeping the read API consistent with what producers sent.
func (l EventLog) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          uint64  `json:"id"`
		Topic       string  `json:"topic"`
		EventID     string  `json:"event_id"`
		Timestamp   string  `json:"timestamp"`
		Source      string  `json:"source"`
		Payload     JSONMap `json:"payload"`
		ProcessedAt string  `json:"processed_at"`
	}{
		ID:          l.ID,
		Topic:       l.Topic,
		EventID:     l.EventID,
		Timestamp:   event.FormatTimestamp(l.Timestamp),
		Source:      l.Source,
		Payload:     l.Payload,
		ProcessedAt: event.FormatTimestamp(l.ProcessedAt),
	})
}
