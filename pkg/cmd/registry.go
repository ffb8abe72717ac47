// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukex/notimaster/pkg/config"
	"github.com/dukex/notimaster/pkg/integrations/discord"
	"github.com/dukex/notimaster/pkg/integrations/email"
	logintegration "github.com/dukex/notimaster/pkg/integrations/log"
	"github.com/dukex/notimaster/pkg/integrations/webhook"
	"github.com/dukex/notimaster/pkg/integrations/webpush"
	"github.com/dukex/notimaster/pkg/protocol"
	"github.com/dukex/notimaster/pkg/registry"
)

func nativeIntegrations(cfg config.Config, subscriptions webpush.SubscriptionStore) []protocol.IntegrationFactory {
	client := &http.Client{Timeout: 30 * time.Second}

	return []protocol.IntegrationFactory{
		email.NewFactory(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}),
		webhook.NewFactory(client),
		discord.NewFactory(client),
		webpush.NewFactory(subscriptions, webpush.VAPIDConfig{
			PublicKey:  cfg.VAPID.PublicKey,
			PrivateKey: cfg.VAPID.PrivateKey,
			Subscriber: cfg.VAPID.Subscriber,
		}, client),
		logintegration.NewFactory(),
	}
}

// NewRegistry registers every built-in integration.
func NewRegistry(log *slog.Logger, cfg config.Config, subscriptions webpush.SubscriptionStore) (*registry.Registry, error) {
	reg := registry.NewRegistry(log)

	for _, factory := range nativeIntegrations(cfg, subscriptions) {
		if err := reg.RegisterIntegration(factory); err != nil {
			return nil, err
		}
	}

	return reg, nil
}
