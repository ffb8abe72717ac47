package email

import (
	"net/smtp"
	"time"

	"github.com/dukex/notimaster/pkg/protocol"
)

// Factory creates the email integration.
type Factory struct {
	config SMTPConfig
	send   SendFunc
}

type Option func(*Factory)

// WithSender replaces smtp.SendMail.
func WithSender(send SendFunc) Option {
	return func(f *Factory) {
		f.send = send
	}
}

func NewFactory(config SMTPConfig, opts ...Option) *Factory {
	f := &Factory{config: config, send: smtp.SendMail}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

func (f *Factory) Create(deps protocol.Dependencies) (protocol.Integration, error) {
	return &Integration{
		config: f.config,
		send:   f.send,
		logger: deps.Logger,
		now:    time.Now,
	}, nil
}

func (f *Factory) ID() string {
	return "email"
}

func (f *Factory) Name() string {
	return "Email"
}

func (f *Factory) Description() string {
	return "Sends an email through the configured SMTP server."
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"to": map[string]any{
				"type":        "string",
				"description": "Comma separated recipients. Supports merge tags.",
				"examples":    []string{"admin@example.com", "{{author.email}}, editor@example.com"},
			},
			"subject": map[string]any{
				"type":        "string",
				"description": "Message subject. Supports merge tags.",
				"examples":    []string{"New post: {{post.title}}"},
			},
			"body": map[string]any{
				"type":        "string",
				"format":      "code",
				"description": "Message body. Supports merge tags.",
			},
			"content_type": map[string]any{
				"type":    "string",
				"default": "text/plain",
				"enum":    []string{"text/plain", "text/html"},
			},
		},
		"required":             []string{"to", "subject"},
		"additionalProperties": false,
	}
}
