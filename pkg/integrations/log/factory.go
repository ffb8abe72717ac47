package log

import (
	"log/slog"

	"github.com/dukex/notimaster/pkg/protocol"
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(deps protocol.Dependencies) (protocol.Integration, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Integration{logger: logger}, nil
}

func (f *Factory) ID() string {
	return "log"
}

func (f *Factory) Name() string {
	return "Log"
}

func (f *Factory) Description() string {
	return "Writes the rendered message to the application log. Useful to try out triggers."
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "Message to log. Supports merge tags.",
			},
			"level": map[string]any{
				"type":    "string",
				"default": "info",
				"enum":    []string{"debug", "info", "warn", "error"},
			},
		},
		"required":             []string{"message"},
		"additionalProperties": false,
	}
}
