package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/persistence"
	"github.com/google/uuid"
)

// NotificationRepository handles notification-related database operations.
type NotificationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewNotificationRepository(db *sql.DB, logger *slog.Logger) *NotificationRepository {
	return &NotificationRepository{db: db, logger: logger}
}

const notificationColumns = `
	id
  , title
  , trigger_id
  , enabled
  , connections
  , created_at
  , updated_at
`

func (r *NotificationRepository) GetAll(ctx context.Context) ([]*models.Notification, error) {
	return r.query(ctx, `SELECT `+notificationColumns+` FROM notifications ORDER BY created_at, id`)
}

func (r *NotificationRepository) GetByTrigger(ctx context.Context, triggerID string) ([]*models.Notification, error) {
	return r.query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE trigger_id = $1 AND enabled
		ORDER BY created_at, id
	`, triggerID)
}

func (r *NotificationRepository) query(ctx context.Context, query string, args ...any) ([]*models.Notification, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	notifications := make([]*models.Notification, 0)

	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}

		notifications = append(notifications, notification)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return notifications, nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)

	notification, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewNotificationError("GetByID", id, persistence.ErrNotificationNotFound)
		}

		return nil, persistence.NewNotificationError("GetByID", id, err)
	}

	return notification, nil
}

func scanNotification(row scanner) (*models.Notification, error) {
	var (
		notification models.Notification
		connections  []byte
	)

	err := row.Scan(
		&notification.ID,
		&notification.Title,
		&notification.TriggerID,
		&notification.Enabled,
		&connections,
		&notification.CreatedAt,
		&notification.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal(connections, &notification.Connections)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal connections of notification %s: %w", notification.ID, err)
	}

	notification.CreatedAt = notification.CreatedAt.UTC()
	notification.UpdatedAt = notification.UpdatedAt.UTC()

	return &notification, nil
}

// Save upserts a notification, assigning an id and timestamps.
func (r *NotificationRepository) Save(ctx context.Context, notification *models.Notification) error {
	now := time.Now().UTC()

	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = now
	}

	notification.UpdatedAt = now

	if notification.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate notification ID: %w", err)
		}

		notification.ID = id.String()
	}

	connections, err := json.Marshal(notification.Connections)
	if err != nil {
		return persistence.NewNotificationError("Save", notification.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, title, trigger_id, enabled, connections, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title
		  , trigger_id = EXCLUDED.trigger_id
		  , enabled = EXCLUDED.enabled
		  , connections = EXCLUDED.connections
		  , updated_at = EXCLUDED.updated_at
	`,
		notification.ID,
		notification.Title,
		notification.TriggerID,
		notification.Enabled,
		string(connections),
		notification.CreatedAt,
		notification.UpdatedAt,
	)
	if err != nil {
		return persistence.NewNotificationError("Save", notification.ID, err)
	}

	return nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return persistence.NewNotificationError("Delete", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewNotificationError("Delete", id, err)
	}

	if affected == 0 {
		return persistence.NewNotificationError("Delete", id, persistence.ErrNotificationNotFound)
	}

	return nil
}
