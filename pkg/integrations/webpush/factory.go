package webpush

import (
	"net/http"
	"time"

	"github.com/dukex/notimaster/pkg/protocol"
)

type Factory struct {
	store  SubscriptionStore
	vapid  VAPIDConfig
	client *http.Client
}

func NewFactory(store SubscriptionStore, vapid VAPIDConfig, client *http.Client) *Factory {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &Factory{store: store, vapid: vapid, client: client}
}

func (f *Factory) Create(deps protocol.Dependencies) (protocol.Integration, error) {
	return &Integration{store: f.store, vapid: f.vapid, client: f.client, logger: deps.Logger}, nil
}

func (f *Factory) ID() string {
	return "webpush"
}

func (f *Factory) Name() string {
	return "Web Push"
}

func (f *Factory) Description() string {
	return "Sends a browser push notification to every subscribed visitor."
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"body":  map[string]any{"type": "string"},
			"url": map[string]any{
				"type":        "string",
				"description": "Page opened when the notification is clicked",
			},
			"icon": map[string]any{"type": "string"},
			"ttl": map[string]any{
				"type":        "integer",
				"description": "Seconds the push service keeps an undelivered message",
				"default":     defaultTTL,
				"minimum":     0,
			},
		},
		"required":             []string{"title"},
		"additionalProperties": false,
	}
}
