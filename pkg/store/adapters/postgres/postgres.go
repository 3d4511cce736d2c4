package postgres

import (
	"database/sql"

	"github.com/chris-alexander-pop/event-aggregator/pkg/store"
	gormlogger "gorm.io/gorm/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// New opens a postgres connection using GORM and wraps it in the Store
// contract. The dedup path needs READ COMMITTED, which is postgres's
// default; nothing stronger is requested.
func New(cfg store.Config) (store.Store, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, store.ErrInvalidConfig("failed to connect to postgres", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, store.ErrStore(err)
	}
	configurePool(sqlDB, cfg)

	return store.NewGorm(db), nil
}

func configurePool(sqlDB *sql.DB, cfg store.Config) {
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
}
