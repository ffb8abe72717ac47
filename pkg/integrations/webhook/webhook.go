// Package webhook delivers notifications as HTTP requests.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dukex/notimaster/pkg/integrations"
	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/protocol"
)

const maxTimeoutSeconds = 60

// Payload is the request body sent when the connection defines none.
type Payload struct {
	NotificationID string                `json:"notification_id"`
	ConnectionID   string                `json:"connection_id"`
	Trigger        models.TriggerContext `json:"trigger"`
}

// Integration performs one HTTP request per delivery.
type Integration struct {
	client *http.Client
	logger *slog.Logger
}

func (w *Integration) Process(ctx context.Context, delivery protocol.Delivery) error {
	settings := integrations.Resolve(delivery)

	target, err := settings.Required("url")
	if err != nil {
		return err
	}

	parsed, err := url.Parse(target)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("invalid webhook url %q", target)
	}

	method := strings.ToUpper(settings.String("method"))
	if method == "" {
		method = http.MethodPost
	}

	body, contentType, err := requestBody(settings, delivery)
	if err != nil {
		return err
	}

	timeout := time.Duration(min(settings.Int("timeout", 0), maxTimeoutSeconds)) * time.Second
	if timeout <= 0 {
		timeout = integrations.DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader *strings.Reader
	if method != http.MethodGet && method != http.MethodHead {
		reader = strings.NewReader(body)
	}

	req, err := newRequest(ctx, method, target, reader)
	if err != nil {
		return err
	}

	if reader != nil {
		req.Header.Set("Content-Type", contentType)
	}

	req.Header.Set("User-Agent", "notimaster-webhook/1.0")

	for k, v := range settings.StringMap("headers") {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}

	err = integrations.CheckResponse(resp)
	if err != nil {
		return err
	}

	integrations.Logger(delivery, w.logger).DebugContext(ctx, "Webhook delivered", "status", resp.StatusCode, "method", method)

	return nil
}

func newRequest(ctx context.Context, method, target string, body *strings.Reader) (*http.Request, error) {
	var (
		req *http.Request
		err error
	)

	if body == nil {
		req, err = http.NewRequestWithContext(ctx, method, target, nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, target, body)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to build webhook request: %w", err)
	}

	return req, nil
}

// requestBody returns the configured body, or the default JSON payload.
func requestBody(settings integrations.Settings, delivery protocol.Delivery) (string, string, error) {
	if raw, ok := settings["body"].(string); ok && strings.TrimSpace(raw) != "" {
		if json.Valid([]byte(raw)) {
			return raw, "application/json", nil
		}

		return raw, "text/plain; charset=utf-8", nil
	}

	trigger := delivery.Trigger
	if trigger == nil {
		trigger = models.TriggerContext{}
	}

	data, err := json.Marshal(Payload{
		NotificationID: delivery.NotificationID,
		ConnectionID:   delivery.ConnectionID,
		Trigger:        trigger,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	return string(data), "application/json", nil
}
