package discord

import (
	"net/http"

	"github.com/dukex/notimaster/pkg/protocol"
)

type Factory struct {
	client *http.Client
}

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
	return "discord"
}

func (f *Factory) Name() string {
	return "Discord"
}

func (f *Factory) Description() string {
	return "Posts a message to a Discord channel through a webhook."
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"webhook_url": map[string]any{
				"title":   "Webhook URL",
				"type":    "string",
				"pattern": "^https?://",
			},
			"content": map[string]any{
				"type":      "string",
				"maxLength": maxContentLength,
			},
			"username":          map[string]any{"type": "string"},
			"avatar_url":        map[string]any{"type": "string"},
			"embed_title":       map[string]any{"type": "string"},
			"embed_description": map[string]any{"type": "string"},
			"embed_color": map[string]any{
				"description": "Embed color as a decimal number or #rrggbb",
				"type":        []string{"integer", "string"},
			},
		},
		"required":             []string{"webhook_url"},
		"additionalProperties": false,
	}
}
