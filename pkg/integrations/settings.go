// Package integrations holds helpers shared by the delivery integrations.
package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dukex/notimaster/pkg/mergetags"
	"github.com/dukex/notimaster/pkg/protocol"
)

var (
	// ErrMissingSetting is returned when a required connection setting is empty.
	ErrMissingSetting = errors.New("missing required setting")

	// ErrUnexpectedStatus is returned when a remote endpoint answers outside 2xx.
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

const DefaultTimeout = 10 * time.Second

// Settings is a connection's settings after merge tags were resolved.
type Settings map[string]any

// Resolve renders every merge tag of the delivery settings against its trigger.
func Resolve(delivery protocol.Delivery) Settings {
	return Settings(mergetags.ResolveMap(delivery.Settings, delivery.Trigger))
}

// String returns the trimmed string under key, or "".
func (s Settings) String(key string) string {
	v, _ := s[key].(string)

	return strings.TrimSpace(v)
}

// Required returns the string under key or ErrMissingSetting.
func (s Settings) Required(key string) (string, error) {
	v := s.String(key)
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingSetting, key)
	}

	return v, nil
}

// Int reads a number stored as a JSON number or a numeric string.
func (s Settings) Int(key string, def int) int {
	switch v := s[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil {
			return n
		}
	}

	return def
}

// StringMap reads an object of string values, skipping anything else.
func (s Settings) StringMap(key string) map[string]string {
	raw, ok := s[key].(map[string]any)
	if !ok {
		return nil
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if str, ok := v.(string); ok {
			out[k] = str
		}
	}

	return out
}

// PostJSON sends payload as JSON and fails on any non-2xx answer.
func PostJSON(ctx context.Context, client *http.Client, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	return CheckResponse(resp)
}

// CheckResponse drains and closes the body, turning non-2xx statuses into errors.
func CheckResponse(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	return nil
}

// Logger returns the delivery's logger, falling back to the integration's own.
func Logger(delivery protocol.Delivery, fallback *slog.Logger) *slog.Logger {
	if delivery.Logger != nil {
		return delivery.Logger
	}

	return fallback
}
