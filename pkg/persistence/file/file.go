// Package file provides file-based persistence: one JSON document per
// notification plus single documents for settings, logs and subscriptions.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dukex/notimaster/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root             string
	notificationRepo *NotificationRepository
	settingsRepo     *SettingsRepository
	logRepo          *LogRepository
	subscriptionRepo *SubscriptionRepository
}

var _ persistence.Persistence = (*Persistence)(nil)

// NewPersistence creates a new instance of Persistence with the specified root
// directory; a file:// prefix is accepted.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:             cleanRoot,
		notificationRepo: NewNotificationRepository(cleanRoot),
		settingsRepo:     NewSettingsRepository(cleanRoot),
		logRepo:          NewLogRepository(cleanRoot),
		subscriptionRepo: NewSubscriptionRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) NotificationRepository() persistence.NotificationRepository {
	return fp.notificationRepo
}

func (fp *Persistence) SettingsRepository() persistence.SettingsRepository {
	return fp.settingsRepo
}

func (fp *Persistence) LogRepository() persistence.LogRepository {
	return fp.logRepo
}

func (fp *Persistence) SubscriptionRepository() persistence.SubscriptionRepository {
	return fp.subscriptionRepo
}

func (fp *Persistence) GetSetting(ctx context.Context, key string, def any) any {
	settings, err := fp.settingsRepo.Get(ctx)

	return persistence.LookupSetting(settings, err, key, def)
}

// readJSON decodes path into v. A missing file leaves v untouched and reports false.
func readJSON(path string, v any) (bool, error) {
	body, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}

		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	err = json.Unmarshal(body, v)
	if err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}

	return true, nil
}

// writeJSON replaces path atomically with the indented encoding of v.
func writeJSON(path string, v any) error {
	err := os.MkdirAll(filepath.Dir(path), 0750)
	if err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}

	tmp := path + ".tmp"

	err = os.WriteFile(tmp, data, 0600)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return os.Rename(tmp, path)
}
