// Package sqlite provides the store over sqlite for tests and local
// development. The ON CONFLICT DO NOTHING insert path behaves the same as
// on postgres, so the dedup contract is exercised without infrastructure.
package sqlite

import (
	"github.com/chris-alexander-pop/event-aggregator/pkg/store"
	gormlogger "gorm.io/gorm/logger"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// New opens a sqlite database at path. Use "file::memory:?cache=shared" for
// an in-memory database shared across connections.
func New(path string) (store.Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, store.ErrInvalidConfig("failed to open sqlite database", err)
	}

	// sqlite serializes writers; a single connection avoids SQLITE_BUSY
	// under the concurrent test suites.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, store.ErrStore(err)
	}
	sqlDB.SetMaxOpenConns(1)

	return store.NewGorm(db), nil
}
