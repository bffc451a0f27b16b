package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// ConfigRepository is the key/value configs table. Connector API versions
// live here under connector_api_version_<connector>.
type ConfigRepository struct {
	db *sql.DB
}

func NewConfigRepository(db *sql.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

func (r *ConfigRepository) InitDB() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS configs (
		key VARCHAR(255) PRIMARY KEY,
		config TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

func (r *ConfigRepository) FindConfig(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT config FROM configs WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *ConfigRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO configs (key, config) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET config = EXCLUDED.config, updated_at = NOW()
	`, key, value)
	return err
}

// FindConfigs reads several keys in one round trip. Missing keys are absent
// from the result.
func (r *ConfigRepository) FindConfigs(ctx context.Context, keys []string) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, config FROM configs WHERE key = ANY($1)`, pq.Array(keys))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string, len(keys))
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}
