// Package webpush sends browser push notifications to every stored subscription.
package webpush

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/dukex/notimaster/pkg/integrations"
	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/protocol"
)

// ErrNotConfigured is returned when no VAPID key pair was provided.
var ErrNotConfigured = errors.New("web push is not configured: missing VAPID keys")

const defaultTTL = 24 * 60 * 60

// SubscriptionStore is the slice of the subscription repository the integration needs.
type SubscriptionStore interface {
	GetAll(ctx context.Context) ([]*models.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}

// VAPIDConfig identifies this server to push services.
type VAPIDConfig struct {
	PublicKey  string
	PrivateKey string
	Subscriber string
}

// Payload is what the service worker receives.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
	URL   string `json:"url,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

type Integration struct {
	store  SubscriptionStore
	vapid  VAPIDConfig
	client *http.Client
	logger *slog.Logger
}

func (p *Integration) Process(ctx context.Context, delivery protocol.Delivery) error {
	if p.vapid.PublicKey == "" || p.vapid.PrivateKey == "" {
		return ErrNotConfigured
	}

	settings := integrations.Resolve(delivery)
	logger := integrations.Logger(delivery, p.logger)

	title, err := settings.Required("title")
	if err != nil {
		return err
	}

	message, err := json.Marshal(Payload{
		Title: title,
		Body:  settings.String("body"),
		URL:   settings.String("url"),
		Icon:  settings.String("icon"),
	})
	if err != nil {
		return fmt.Errorf("failed to encode push payload: %w", err)
	}

	subscriptions, err := p.store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load push subscriptions: %w", err)
	}

	options := &webpush.Options{
		HTTPClient:      p.client,
		Subscriber:      p.vapid.Subscriber,
		VAPIDPublicKey:  p.vapid.PublicKey,
		VAPIDPrivateKey: p.vapid.PrivateKey,
		TTL:             settings.Int("ttl", defaultTTL),
		Urgency:         webpush.UrgencyNormal,
	}

	var (
		errs   []error
		sent   int
		pruned int
	)

	for _, sub := range subscriptions {
		gone, err := p.send(ctx, message, sub, options)
		switch {
		case gone:
			pruned++

			if err := p.store.DeleteByEndpoint(ctx, sub.Endpoint); err != nil {
				logger.WarnContext(ctx, "Failed to prune expired push subscription", "endpoint", sub.Endpoint, "error", err)
			}
		case err != nil:
			errs = append(errs, err)
		default:
			sent++
		}
	}

	logger.DebugContext(ctx, "Push notifications sent", "sent", sent, "pruned", pruned, "failed", len(errs))

	return errors.Join(errs...)
}

// send reports gone when the push service says the subscription no longer exists.
func (p *Integration) send(ctx context.Context, message []byte, sub *models.PushSubscription, options *webpush.Options) (bool, error) {
	resp, err := webpush.SendNotificationWithContext(ctx, message, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{Auth: sub.Auth, P256dh: sub.P256dh},
	}, options)
	if err != nil {
		return false, fmt.Errorf("push to %s failed: %w", sub.Endpoint, err)
	}

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		_ = resp.Body.Close()

		return true, nil
	}

	err = integrations.CheckResponse(resp)
	if err != nil {
		return false, fmt.Errorf("push to %s failed: %w", sub.Endpoint, err)
	}

	return false, nil
}

// GenerateVAPIDKeys creates a new key pair for VAPIDConfig.
func GenerateVAPIDKeys() (publicKey, privateKey string, err error) {
	privateKey, publicKey, err = webpush.GenerateVAPIDKeys()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate VAPID keys: %w", err)
	}

	return publicKey, privateKey, nil
}
