package repository

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/maestranza/inventory-backend/pkg/database"
)

// Keys used by the stock rules engine
const (
	ConfigLowStockThresholdDays = "low_stock_threshold_days"
	ConfigExpiryWarningDays     = "expiry_warning_days"
)

// SystemConfigRepository reads and writes runtime tunables stored in the database
type SystemConfigRepository struct {
	db *database.DB
}

// NewSystemConfigRepository creates a new system config repository
func NewSystemConfigRepository(db *database.DB) *SystemConfigRepository {
	return &SystemConfigRepository{db: db}
}

// GetInt returns the integer value for a key, or fallback when the key is
// missing or not a valid integer.
func (r *SystemConfigRepository) GetInt(ctx context.Context, key string, fallback int) (int, error) {
	var value string
	err := r.db.GetContext(ctx, &value, `SELECT value FROM system_config WHERE key = $1`, key)
	if err == sql.ErrNoRows {
		return fallback, nil
	}
	if err != nil {
		return fallback, err
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback, nil
	}
	return n, nil
}

// Set upserts a config value
func (r *SystemConfigRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO system_config (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, value)
	return err
}

// All returns every config entry as a key/value map
func (r *SystemConfigRepository) All(ctx context.Context) (map[string]string, error) {
	rows := []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, `SELECT key, value FROM system_config`); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}
