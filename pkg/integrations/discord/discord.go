// Package discord posts notifications to a Discord channel webhook.
package discord

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dukex/notimaster/pkg/integrations"
	"github.com/dukex/notimaster/pkg/protocol"
)

// ErrEmptyMessage is returned when neither content nor an embed is configured.
var ErrEmptyMessage = errors.New("discord message needs content or an embed")

// Discord rejects content longer than this.
const maxContentLength = 2000

type Embed struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Color       int    `json:"color,omitempty"`
}

// Message is the webhook execute payload.
type Message struct {
	Content   string  `json:"content,omitempty"`
	Username  string  `json:"username,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Embeds    []Embed `json:"embeds,omitempty"`
}

type Integration struct {
	client *http.Client
	logger *slog.Logger
}

func (d *Integration) Process(ctx context.Context, delivery protocol.Delivery) error {
	settings := integrations.Resolve(delivery)

	webhookURL, err := settings.Required("webhook_url")
	if err != nil {
		return err
	}

	msg := Message{
		Content:   truncate(settings.String("content"), maxContentLength),
		Username:  settings.String("username"),
		AvatarURL: settings.String("avatar_url"),
	}

	embed := Embed{
		Title:       settings.String("embed_title"),
		Description: settings.String("embed_description"),
		Color:       parseColor(settings["embed_color"]),
	}
	if embed.Title != "" || embed.Description != "" {
		msg.Embeds = []Embed{embed}
	}

	if msg.Content == "" && len(msg.Embeds) == 0 {
		return ErrEmptyMessage
	}

	ctx, cancel := context.WithTimeout(ctx, integrations.DefaultTimeout)
	defer cancel()

	err = integrations.PostJSON(ctx, d.client, webhookURL, msg)
	if err != nil {
		return err
	}

	integrations.Logger(delivery, d.logger).DebugContext(ctx, "Discord message sent")

	return nil
}

// parseColor accepts a number or a "#rrggbb" / decimal string.
func parseColor(v any) int {
	switch c := v.(type) {
	case float64:
		return int(c)
	case int:
		return c
	case string:
		c = strings.TrimSpace(c)
		if hex, ok := strings.CutPrefix(c, "#"); ok {
			n, err := strconv.ParseInt(hex, 16, 32)
			if err == nil {
				return int(n)
			}

			return 0
		}

		n, err := strconv.Atoi(c)
		if err == nil {
			return n
		}
	}

	return 0
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}

	return string(r[:limit-1]) + "…"
}
