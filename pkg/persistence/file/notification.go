package file

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/persistence"
	"github.com/google/uuid"
)

// NotificationRepository stores each notification in notifications/<id>.json.
type NotificationRepository struct {
	dir string
	mu  sync.RWMutex
}

func NewNotificationRepository(root string) *NotificationRepository {
	return &NotificationRepository{dir: filepath.Join(root, "notifications")}
}

func (r *NotificationRepository) path(id string) string {
	return filepath.Join(r.dir, filepath.Base(id)+".json")
}

func (r *NotificationRepository) GetAll(_ context.Context) ([]*models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.loadAll()
}

func (r *NotificationRepository) loadAll() ([]*models.Notification, error) {
	files, err := fs.Glob(os.DirFS(r.dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list notification files: %w", err)
	}

	notifications := make([]*models.Notification, 0, len(files))

	for _, file := range files {
		var notification models.Notification

		found, err := readJSON(filepath.Join(r.dir, file), &notification)
		if err != nil {
			return nil, err
		}

		if found {
			notifications = append(notifications, &notification)
		}
	}

	sort.SliceStable(notifications, func(i, j int) bool {
		if notifications[i].CreatedAt.Equal(notifications[j].CreatedAt) {
			return notifications[i].ID < notifications[j].ID
		}

		return notifications[i].CreatedAt.Before(notifications[j].CreatedAt)
	})

	return notifications, nil
}

func (r *NotificationRepository) GetByID(_ context.Context, id string) (*models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var notification models.Notification

	found, err := readJSON(r.path(id), &notification)
	if err != nil {
		return nil, persistence.NewNotificationError("GetByID", id, err)
	}

	if !found {
		return nil, persistence.NewNotificationError("GetByID", id, persistence.ErrNotificationNotFound)
	}

	return &notification, nil
}

func (r *NotificationRepository) GetByTrigger(_ context.Context, triggerID string) ([]*models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all, err := r.loadAll()
	if err != nil {
		return nil, err
	}

	matching := make([]*models.Notification, 0)

	for _, notification := range all {
		if notification.Enabled && notification.TriggerID == triggerID {
			matching = append(matching, notification)
		}
	}

	return matching, nil
}

// Save creates or replaces a notification, assigning an id and timestamps.
func (r *NotificationRepository) Save(_ context.Context, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if notification.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate notification ID: %w", err)
		}

		notification.ID = id.String()
	}

	if strings.ContainsAny(notification.ID, `/\`) {
		return persistence.NewNotificationError("Save", notification.ID, fmt.Errorf("invalid notification id"))
	}

	now := time.Now().UTC()
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = now
	}

	notification.UpdatedAt = now

	err := writeJSON(r.path(notification.ID), notification)
	if err != nil {
		return persistence.NewNotificationError("Save", notification.ID, err)
	}

	return nil
}

func (r *NotificationRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := os.Remove(r.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return persistence.NewNotificationError("Delete", id, persistence.ErrNotificationNotFound)
		}

		return persistence.NewNotificationError("Delete", id, err)
	}

	return nil
}
