package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/dukex/notimaster/pkg/integrations"
	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_Process(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	integration, err := NewFactory().Create(protocol.Dependencies{Logger: logger})
	require.NoError(t, err)

	err = integration.Process(context.Background(), protocol.Delivery{
		ConnectionID:   "c1",
		NotificationID: "n1",
		Settings:       map[string]any{"message": "{{post.title}} was published", "level": "warn"},
		Trigger:        models.TriggerContext{"post": map[string]any{"title": "Hello"}},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, `msg="Hello was published"`)
	assert.Contains(t, out, "notification_id=n1")
}

func TestLog_MissingMessage(t *testing.T) {
	integration, err := NewFactory().Create(protocol.Dependencies{})
	require.NoError(t, err)

	err = integration.Process(context.Background(), protocol.Delivery{Settings: map[string]any{}})
	assert.ErrorIs(t, err, integrations.ErrMissingSetting)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}
