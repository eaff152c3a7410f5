package db

import (
	"errors"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the SQLite database at the given path, creating the
// file if it does not exist.
func Open(path string) (*gorm.DB, error) {
	if path == "" {
		return nil, errors.New("sqlite path is not set")
	}
	return gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

// Migrate runs GORM auto-migrations for the core tables. Safe to run on
// every startup.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("db connection is nil")
	}
	if err := conn.AutoMigrate(
		&Game{},
		&Message{},
		&Event{},
	); err != nil {
		return err
	}
	log.Info("database migration complete")
	return nil
}
