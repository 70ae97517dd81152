package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SettingsRepository stores JSON documents by key. It backs persisted
// overrides such as the imported causality graph.
type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the stored value and whether the key exists.
func (r *SettingsRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, true, nil
}

func (r *SettingsRepository) Put(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, key, string(value)); err != nil {
		return fmt.Errorf("failed to store setting %s: %w", key, err)
	}
	return nil
}

func (r *SettingsRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}
