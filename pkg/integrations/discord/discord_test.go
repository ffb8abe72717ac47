package discord

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/dukex/notimaster/pkg/integrations"
	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

func newServer(t *testing.T, status int) (*httptest.Server, *[]Message) {
	t.Helper()

	var received []Message

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg Message
		if err := json.NewDecoder(r.Body).Decode(&msg); err == nil {
			received = append(received, msg)
		}

		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)

	return server, &received
}

func process(t *testing.T, client *http.Client, settings map[string]any) error {
	t.Helper()

	integration, err := NewFactory(client).Create(protocol.Dependencies{Logger: testLogger})
	require.NoError(t, err)

	return integration.Process(context.Background(), protocol.Delivery{
		ConnectionID:   "c1",
		NotificationID: "n1",
		Settings:       settings,
		Trigger:        models.TriggerContext{"post": map[string]any{"title": "Hello", "url": "https://example.com/hello"}},
	})
}

func TestDiscord_ContentAndEmbed(t *testing.T) {
	server, received := newServer(t, http.StatusNoContent)

	err := process(t, server.Client(), map[string]any{
		"webhook_url":       server.URL,
		"content":           "New post: {{post.title}}",
		"username":          "Blog",
		"embed_title":       "{{post.title}}",
		"embed_description": "{{post.url}}",
		"embed_color":       "#ff0000",
	})
	require.NoError(t, err)

	require.Len(t, *received, 1)
	msg := (*received)[0]
	assert.Equal(t, "New post: Hello", msg.Content)
	assert.Equal(t, "Blog", msg.Username)
	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, Embed{Title: "Hello", Description: "https://example.com/hello", Color: 0xff0000}, msg.Embeds[0])
}

func TestDiscord_ContentOnly(t *testing.T) {
	server, received := newServer(t, http.StatusNoContent)

	require.NoError(t, process(t, server.Client(), map[string]any{
		"webhook_url": server.URL,
		"content":     strings.Repeat("a", 2100),
	}))

	msg := (*received)[0]
	assert.Empty(t, msg.Embeds)
	assert.Len(t, []rune(msg.Content), maxContentLength)
}

func TestDiscord_Errors(t *testing.T) {
	server, received := newServer(t, http.StatusBadRequest)

	err := process(t, server.Client(), map[string]any{"webhook_url": server.URL})
	require.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, *received)

	err = process(t, server.Client(), map[string]any{"content": "hi"})
	require.ErrorIs(t, err, integrations.ErrMissingSetting)

	err = process(t, server.Client(), map[string]any{"webhook_url": server.URL, "content": "hi"})
	require.ErrorIs(t, err, integrations.ErrUnexpectedStatus)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{float64(255), 255},
		{"#00ff00", 0x00ff00},
		{"42", 42},
		{"nope", 0},
		{nil, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseColor(tt.in), "%v", tt.in)
	}
}
