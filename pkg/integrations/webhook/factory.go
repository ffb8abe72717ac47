package webhook

import (
	"net/http"

	"github.com/dukex/notimaster/pkg/protocol"
)

// Factory creates the webhook integration.
type Factory struct {
	client *http.Client
}

// NewFactory uses client for every request; nil means a default client.
// Per-request timeouts come from the connection settings.
func NewFactory(client *http.Client) *Factory {
	if client == nil {
		client = &http.Client{}
	}

	return &Factory{client: client}
}

func (f *Factory) Create(deps protocol.Dependencies) (protocol.Integration, error) {
	return &Integration{client: f.client, logger: deps.Logger}, nil
}

func (f *Factory) ID() string {
	return "webhook"
}

func (f *Factory) Name() string {
	return "Webhook"
}

func (f *Factory) Description() string {
	return "Sends an HTTP request with the notification data to a URL."
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"title":       "URL",
				"type":        "string",
				"description": "Endpoint receiving the request. Supports merge tags.",
				"examples":    []string{"https://hooks.example.com/notify"},
			},
			"method": map[string]any{
				"type":    "string",
				"default": "POST",
				"enum":    []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
			},
			"headers": map[string]any{
				"type":                 "object",
				"description":          "Extra request headers.",
				"additionalProperties": map[string]any{"type": "string"},
			},
			"body": map[string]any{
				"type":        "string",
				"format":      "code",
				"description": "Request body. Defaults to a JSON document with the notification, connection and trigger data.",
			},
			"timeout": map[string]any{
				"type":        "integer",
				"description": "Timeout in seconds",
				"default":     10,
				"minimum":     1,
				"maximum":     maxTimeoutSeconds,
			},
		},
		"required":             []string{"url"},
		"additionalProperties": false,
	}
}
