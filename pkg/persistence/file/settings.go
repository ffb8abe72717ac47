package file

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/dukex/notimaster/pkg/models"
)

// SettingsRepository stores the settings in settings.json.
type SettingsRepository struct {
	path string
	mu   sync.RWMutex
}

func NewSettingsRepository(root string) *SettingsRepository {
	return &SettingsRepository{path: filepath.Join(root, "settings.json")}
}

// Get returns the saved settings, or the defaults when nothing was saved yet.
func (r *SettingsRepository) Get(_ context.Context) (models.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	settings := models.DefaultSettings()

	_, err := readJSON(r.path, &settings)
	if err != nil {
		return models.DefaultSettings(), err
	}

	return settings, nil
}

func (r *SettingsRepository) Save(_ context.Context, settings models.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return writeJSON(r.path, settings)
}
