package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationsFS returns the embedded goose migrations rooted at their directory.
func MigrationsFS() fs.FS {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(fmt.Sprintf("migrations sub filesystem: %v", err))
	}
	return sub
}

// MigrationResult summarizes a migration run.
type MigrationResult struct {
	Applied        []int64
	CurrentVersion int64
}

// Migrator applies the embedded schema with goose.
type Migrator struct {
	provider *goose.Provider
}

// NewMigrator creates a Migrator for sqlDB.
func NewMigrator(sqlDB *sql.DB) (*Migrator, error) {
	provider, err := goose.NewProvider(goose.DialectSQLite3, sqlDB, MigrationsFS())
	if err != nil {
		return nil, fmt.Errorf("creating goose provider: %w", err)
	}
	return &Migrator{provider: provider}, nil
}

// MigrateUp applies all pending migrations.
func (m *Migrator) MigrateUp(ctx context.Context) (*MigrationResult, error) {
	results, err := m.provider.Up(ctx)
	res := &MigrationResult{}
	for _, r := range results {
		if r.Error == nil && r.Source != nil {
			res.Applied = append(res.Applied, r.Source.Version)
			slog.Info("applied migration", "version", r.Source.Version, "path", r.Source.Path, "duration", r.Duration)
		}
	}
	if err != nil {
		return res, fmt.Errorf("run goose up migrations: %w", err)
	}

	version, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return res, fmt.Errorf("reading schema version: %w", err)
	}
	res.CurrentVersion = version

	return res, nil
}

// MigrateDown rolls back the most recent migration.
func (m *Migrator) MigrateDown(ctx context.Context) error {
	if _, err := m.provider.Down(ctx); err != nil {
		return fmt.Errorf("run goose down migration: %w", err)
	}
	return nil
}

// HasPending reports whether any migration has not been applied.
func (m *Migrator) HasPending(ctx context.Context) (bool, error) {
	return m.provider.HasPending(ctx)
}

// CurrentVersion returns the highest applied migration version.
func (m *Migrator) CurrentVersion(ctx context.Context) (int64, error) {
	return m.provider.GetDBVersion(ctx)
}

// Migrate is a convenience for callers that only need the schema brought up to date.
func Migrate(ctx context.Context, sqlDB *sql.DB) error {
	m, err := NewMigrator(sqlDB)
	if err != nil {
		return err
	}
	_, err = m.MigrateUp(ctx)
	return err
}

// SchemaVersion returns the applied goose version, or 0 on a fresh database.
func (db *DB) SchemaVersion(ctx context.Context) (int64, error) {
	m, err := NewMigrator(db.DB)
	if err != nil {
		return 0, err
	}
	return m.CurrentVersion(ctx)
}
