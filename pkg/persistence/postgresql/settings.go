package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dukex/notimaster/pkg/models"
)

// SettingsRepository keeps the settings document in a single row.
type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the saved settings, or the defaults when nothing was saved yet.
func (r *SettingsRepository) Get(ctx context.Context) (models.Settings, error) {
	var data []byte

	err := r.db.QueryRowContext(ctx, `SELECT data FROM settings WHERE id = 1`).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DefaultSettings(), nil
		}

		return models.DefaultSettings(), fmt.Errorf("failed to query settings: %w", err)
	}

	settings := models.DefaultSettings()

	err = json.Unmarshal(data, &settings)
	if err != nil {
		return models.DefaultSettings(), fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	return settings, nil
}

func (r *SettingsRepository) Save(ctx context.Context, settings models.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (id, data, updated_at) VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`, string(data))
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	return nil
}
