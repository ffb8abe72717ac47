package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/persistence"
	"github.com/google/uuid"
)

// LogRepository handles activity log database operations.
type LogRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewLogRepository(db *sql.DB, logger *slog.Logger) *LogRepository {
	return &LogRepository{db: db, logger: logger}
}

func (r *LogRepository) Save(ctx context.Context, entry *models.LogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notification_logs
			(id, notification_id, connection_id, integration, trigger_id, status, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		entry.ID,
		entry.NotificationID,
		entry.ConnectionID,
		entry.Integration,
		entry.TriggerID,
		string(entry.Status),
		entry.Error,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save log entry: %w", err)
	}

	return nil
}

// List returns entries newest first.
func (r *LogRepository) List(ctx context.Context, opts persistence.ListLogsOptions) (*persistence.LogListResult, error) {
	opts = opts.Normalize()

	result := &persistence.LogListResult{Entries: make([]*models.LogEntry, 0)}

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notification_logs WHERE ($1::text = '' OR notification_id = $1)
	`, opts.NotificationID).Scan(&result.TotalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count log entries: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id
		  , notification_id
		  , connection_id
		  , integration
		  , trigger_id
		  , status
		  , error
		  , created_at
		FROM notification_logs
		WHERE ($1::text = '' OR notification_id = $1)
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, opts.NotificationID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query log entries: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	for rows.Next() {
		var (
			entry  models.LogEntry
			status string
		)

		err := rows.Scan(
			&entry.ID,
			&entry.NotificationID,
			&entry.ConnectionID,
			&entry.Integration,
			&entry.TriggerID,
			&status,
			&entry.Error,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}

		entry.Status = models.LogStatus(status)
		entry.CreatedAt = entry.CreatedAt.UTC()
		result.Entries = append(result.Entries, &entry)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating log entries: %w", err)
	}

	return result, nil
}

func (r *LogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notification_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune log entries: %w", err)
	}

	return result.RowsAffected()
}

func (r *LogRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notification_logs`)
	if err != nil {
		return fmt.Errorf("failed to clear log entries: %w", err)
	}

	return nil
}
