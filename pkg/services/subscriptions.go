package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/persistence"
	"github.com/go-playground/validator/v10"
)

type Subscriptions struct {
	persistence persistence.Persistence
	validate    *validator.Validate
}

func NewSubscriptions(persistence persistence.Persistence) *Subscriptions {
	return &Subscriptions{
		persistence: persistence,
		validate:    validator.New(),
	}
}

// Subscribe stores a browser subscription. Subscribing the same endpoint again
// replaces its keys.
func (s *Subscriptions) Subscribe(ctx context.Context, subscription *models.PushSubscription) (*models.PushSubscription, error) {
	subscription.Endpoint = strings.TrimSpace(subscription.Endpoint)

	err := s.validate.Struct(subscription)
	if err != nil {
		return nil, NewValidationError("Subscribe", "INVALID_SUBSCRIPTION", err.Error(), ErrInvalidRequest)
	}

	err = s.persistence.SubscriptionRepository().Save(ctx, subscription)
	if err != nil {
		return nil, fmt.Errorf("failed to save subscription: %w", err)
	}

	return subscription, nil
}

func (s *Subscriptions) Unsubscribe(ctx context.Context, endpoint string) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return NewValidationError("Unsubscribe", "MISSING_ENDPOINT", "endpoint is required", ErrInvalidRequest)
	}

	return s.persistence.SubscriptionRepository().DeleteByEndpoint(ctx, endpoint)
}
