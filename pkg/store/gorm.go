package store

import (
	"context"

	"github.com/chris-alexander-pop/event-aggregator/pkg/event"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormStore implements Store over any gorm dialect. Driver adapters open
// the connection and hand the *gorm.DB to NewGorm.
type gormStore struct {
	db *gorm.DB
}

// NewGorm wraps an open gorm connection in the Store contract.
func NewGorm(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Init(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&EventLog{}); err != nil {
		return ErrMigration(err)
	}
	return nil
}

func (s *gormStore) InsertDedup(ctx context.Context, ev *event.Event) (Result, error) {
	row := EventLog{
		Topic:     ev.Topic,
		EventID:   ev.EventID,
		Timestamp: ev.Timestamp,
		Source:    ev.Source,
		Payload:   JSONMap(ev.Payload),
	}

	// Single round-trip INSERT ... ON CONFLICT (topic, event_id) DO NOTHING.
	// A read-then-write would race under concurrent consumers.
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "topic"}, {Name: "event_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if res.Error != nil {
		return Duplicate, ErrStore(res.Error)
	}
	if res.RowsAffected == 0 {
		return Duplicate, nil
	}
	return Inserted, nil
}

func (s *gormStore) CountUnique(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&EventLog{}).Count(&n).Error; err != nil {
		return 0, ErrStore(err)
	}
	return n, nil
}

func (s *gormStore) CountByTopic(ctx context.Context) ([]TopicCount, error) {
	counts := []TopicCount{}
	err := s.db.WithContext(ctx).
		Model(&EventLog{}).
		Select("topic, count(*) as count").
		Group("topic").
		Scan(&counts).Error
	if err != nil {
		return nil, ErrStore(err)
	}
	return counts, nil
}

func (s *gormStore) SelectRecent(ctx context.Context, topic string, limit int) ([]EventLog, error) {
	if limit <= 0 {
		return []EventLog{}, nil
	}

	q := s.db.WithContext(ctx).Model(&EventLog{}).Order("timestamp desc").Limit(limit)
	if topic != "" {
		q = q.Where("topic = ?", topic)
	}

	logs := []EventLog{}
	if err := q.Find(&logs).Error; err != nil {
		return nil, ErrStore(err)
	}
	return logs, nil
}

func (s *gormStore) Healthy(ctx context.Context) bool {
	sqlDB, err := s.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}

func (s *gormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return ErrStore(err)
	}
	return sqlDB.Close()
}
