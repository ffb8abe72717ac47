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

// SubscriptionRepository handles push subscription database operations.
type SubscriptionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSubscriptionRepository(db *sql.DB, logger *slog.Logger) *SubscriptionRepository {
	return &SubscriptionRepository{db: db, logger: logger}
}

// Save inserts the subscription or refreshes the keys of the one with the same endpoint.
func (r *SubscriptionRepository) Save(ctx context.Context, subscription *models.PushSubscription) error {
	if subscription.ID == "" {
		subscription.ID = uuid.New().String()
	}

	if subscription.CreatedAt.IsZero() {
		subscription.CreatedAt = time.Now().UTC()
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO push_subscriptions (id, endpoint, p256dh, auth, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (endpoint) DO UPDATE SET
			p256dh = EXCLUDED.p256dh
		  , auth = EXCLUDED.auth
		  , user_agent = EXCLUDED.user_agent
		RETURNING id, created_at
	`,
		subscription.ID,
		subscription.Endpoint,
		subscription.P256dh,
		subscription.Auth,
		subscription.UserAgent,
		subscription.CreatedAt,
	).Scan(&subscription.ID, &subscription.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save push subscription: %w", err)
	}

	subscription.CreatedAt = subscription.CreatedAt.UTC()

	return nil
}

func (r *SubscriptionRepository) GetAll(ctx context.Context) ([]*models.PushSubscription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, endpoint, p256dh, auth, user_agent, created_at
		FROM push_subscriptions
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query push subscriptions: %w", err)
	}

	defer closeRows(ctx, r.logger, rows)

	subscriptions := make([]*models.PushSubscription, 0)

	for rows.Next() {
		var s models.PushSubscription

		err := rows.Scan(&s.ID, &s.Endpoint, &s.P256dh, &s.Auth, &s.UserAgent, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan push subscription: %w", err)
		}

		s.CreatedAt = s.CreatedAt.UTC()
		subscriptions = append(subscriptions, &s)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating push subscriptions: %w", err)
	}

	return subscriptions, nil
}

func (r *SubscriptionRepository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE endpoint = $1`, endpoint)
	if err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}

	if affected == 0 {
		return persistence.ErrSubscriptionNotFound
	}

	return nil
}
