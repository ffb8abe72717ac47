// Package postgresql provides PostgreSQL persistence for notifications,
// settings, activity logs and push subscriptions.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dukex/notimaster/pkg/persistence"
	"github.com/dukex/notimaster/pkg/persistence/sqlbase"
	_ "github.com/lib/pq"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db               *sql.DB
	logger           *slog.Logger
	notificationRepo *NotificationRepository
	settingsRepo     *SettingsRepository
	logRepo          *LogRepository
	subscriptionRepo *SubscriptionRepository
}

var _ persistence.Persistence = (*Persistence)(nil)

// NewPersistence creates a new PostgreSQL persistence layer.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		_ = database.Close()

		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger = logger.With("module", "postgresql")

	postgres := &Persistence{
		db:               database,
		logger:           logger,
		notificationRepo: NewNotificationRepository(database, logger),
		settingsRepo:     NewSettingsRepository(database),
		logRepo:          NewLogRepository(database, logger),
		subscriptionRepo: NewSubscriptionRepository(database, logger),
	}

	// Run migrations on initialization
	err = sqlbase.NewMigrationManager(logger, database, migrations()).RunMigrations(ctx)
	if err != nil {
		_ = database.Close()

		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) NotificationRepository() persistence.NotificationRepository {
	return p.notificationRepo
}

func (p *Persistence) SettingsRepository() persistence.SettingsRepository {
	return p.settingsRepo
}

func (p *Persistence) LogRepository() persistence.LogRepository {
	return p.logRepo
}

func (p *Persistence) SubscriptionRepository() persistence.SubscriptionRepository {
	return p.subscriptionRepo
}

func (p *Persistence) GetSetting(ctx context.Context, key string, def any) any {
	settings, err := p.settingsRepo.Get(ctx)
	if err != nil {
		p.logger.WarnContext(ctx, "Failed to read settings, using default", "key", key, "error", err)
	}

	return persistence.LookupSetting(settings, err, key, def)
}

type scanner interface {
	Scan(dest ...any) error
}

func closeRows(ctx context.Context, logger *slog.Logger, rows *sql.Rows) {
	err := rows.Close()
	if err != nil {
		logger.ErrorContext(ctx, "failed to close rows", "error", err)
	}
}
