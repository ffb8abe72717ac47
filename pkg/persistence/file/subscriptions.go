package file

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/persistence"
	"github.com/google/uuid"
)

// SubscriptionRepository keeps push subscriptions in subscriptions.json.
type SubscriptionRepository struct {
	path string
	mu   sync.Mutex
}

func NewSubscriptionRepository(root string) *SubscriptionRepository {
	return &SubscriptionRepository{path: filepath.Join(root, "subscriptions.json")}
}

func (r *SubscriptionRepository) load() ([]*models.PushSubscription, error) {
	subscriptions := make([]*models.PushSubscription, 0)

	_, err := readJSON(r.path, &subscriptions)
	if err != nil {
		return nil, err
	}

	return subscriptions, nil
}

// Save inserts the subscription or refreshes the keys of the one with the same endpoint.
func (r *SubscriptionRepository) Save(_ context.Context, subscription *models.PushSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	subscriptions, err := r.load()
	if err != nil {
		return err
	}

	for _, existing := range subscriptions {
		if existing.Endpoint == subscription.Endpoint {
			subscription.ID = existing.ID
			subscription.CreatedAt = existing.CreatedAt
			*existing = *subscription

			return writeJSON(r.path, subscriptions)
		}
	}

	if subscription.ID == "" {
		subscription.ID = uuid.New().String()
	}

	if subscription.CreatedAt.IsZero() {
		subscription.CreatedAt = time.Now().UTC()
	}

	return writeJSON(r.path, append(subscriptions, subscription))
}

func (r *SubscriptionRepository) GetAll(_ context.Context) ([]*models.PushSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

func (r *SubscriptionRepository) DeleteByEndpoint(_ context.Context, endpoint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	subscriptions, err := r.load()
	if err != nil {
		return err
	}

	for i, existing := range subscriptions {
		if existing.Endpoint == endpoint {
			return writeJSON(r.path, append(subscriptions[:i], subscriptions[i+1:]...))
		}
	}

	return persistence.ErrSubscriptionNotFound
}
