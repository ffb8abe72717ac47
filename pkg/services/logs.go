package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/persistence"
)

type Logs struct {
	persistence persistence.Persistence
	logger      *slog.Logger
}

func NewLogs(persistence persistence.Persistence, logger *slog.Logger) *Logs {
	return &Logs{
		persistence: persistence,
		logger:      logger.With("module", "logs_service"),
	}
}

func (l *Logs) List(ctx context.Context, opts persistence.ListLogsOptions) (*persistence.LogListResult, error) {
	result, err := l.persistence.LogRepository().List(ctx, opts.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	return result, nil
}

func (l *Logs) Clear(ctx context.Context) error {
	err := l.persistence.LogRepository().Clear(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear logs: %w", err)
	}

	return nil
}

// Prune deletes the entries older than the configured retention, relative to
// now. A retention of zero days keeps everything.
func (l *Logs) Prune(ctx context.Context, now time.Time) (int64, error) {
	days := models.DefaultLogRetentionDays

	switch v := l.persistence.GetSetting(ctx, models.SettingLogRetentionDays, days).(type) {
	case int:
		days = v
	case float64:
		days = int(v)
	}

	if days <= 0 {
		return 0, nil
	}

	cutoff := now.AddDate(0, 0, -days)

	deleted, err := l.persistence.LogRepository().DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune logs: %w", err)
	}

	l.logger.InfoContext(ctx, "Pruned activity logs", "deleted", deleted, "retention_days", days)

	return deleted, nil
}
