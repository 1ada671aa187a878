package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/habibGamal/preparation-system/internal/models"
)

// SettingRepository handles key/value settings rows.
type SettingRepository struct {
	db *sql.DB
}

// NewSettingRepository creates a new setting repository.
func NewSettingRepository(db *sql.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// All returns every stored row keyed by setting key.
func (r *SettingRepository) All(ctx context.Context, tx *sql.Tx) (map[models.SettingKey]string, error) {
	rows, err := conn(r.db, tx).QueryContext(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("querying settings: %w", err)
	}
	defer rows.Close()

	out := make(map[models.SettingKey]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}
		out[models.SettingKey(key)] = value
	}
	return out, rows.Err()
}

// Get returns a single stored value.
func (r *SettingRepository) Get(ctx context.Context, tx *sql.Tx, key models.SettingKey) (string, error) {
	var value string
	err := conn(r.db, tx).QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("setting %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("reading setting: %w", err)
	}
	return value, nil
}

// Upsert writes a value, replacing any existing row.
func (r *SettingRepository) Upsert(ctx context.Context, tx *sql.Tx, key models.SettingKey, value string) error {
	query := `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	if _, err := conn(r.db, tx).ExecContext(ctx, query, key, value, formatTime(now())); err != nil {
		return fmt.Errorf("writing setting %s: %w", key, err)
	}
	return nil
}

// InsertIfMissing writes a value only when the key has no row yet. It reports
// whether a row was inserted.
func (r *SettingRepository) InsertIfMissing(ctx context.Context, tx *sql.Tx, key models.SettingKey, value string) (bool, error) {
	res, err := conn(r.db, tx).ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value, updated_at) VALUES (?, ?, ?)`,
		key, value, formatTime(now()),
	)
	if err != nil {
		return false, fmt.Errorf("seeding setting %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
