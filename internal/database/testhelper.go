package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/habibGamal/preparation-system/internal/config"

	_ "modernc.org/sqlite"
)

// NewInMemory creates a migrated in-memory database for tests and demos.
// It enables foreign keys but not WAL mode.
func NewInMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := Migrate(context.Background(), sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return &DB{
		DB:     sqlDB,
		path:   ":memory:",
		config: &config.DatabaseConfig{},
	}, nil
}
