package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dukex/notimaster/pkg/cmd"
	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "github.com/urfave/cli/v3"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

func TestParseTriggerData(t *testing.T) {
	data, err := parseTriggerData(`{"post":{"title":"Hello"}}`)
	require.NoError(t, err)
	assert.Equal(t, models.TriggerContext{"post": map[string]any{"title": "Hello"}}, data)

	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"user":{"name":"ana"}}`), 0o600))

	data, err = parseTriggerData("@" + path)
	require.NoError(t, err)
	assert.Equal(t, "ana", data["user"].(map[string]any)["name"])

	_, err = parseTriggerData("[1]")
	require.Error(t, err)
}

func TestValidateNotifications(t *testing.T) {
	app, err := cmd.NewApp(t.Context(), testLogger, cmd.AppOptions{DatabaseURL: "file://" + t.TempDir()})
	require.NoError(t, err)

	t.Cleanup(func() { _ = app.Close(context.Background()) })

	repo := app.Persistence.NotificationRepository()
	require.NoError(t, repo.Save(t.Context(), testutil.CreateTestNotification()))
	require.NoError(t, repo.Save(t.Context(), testutil.CreateTestNotification(testutil.WithTrigger("gone.trigger"))))

	var out bytes.Buffer

	err = validateNotifications(t.Context(), &out, app)
	require.ErrorIs(t, err, errInvalidNotifications)

	assert.Equal(t, 1, strings.Count(out.String(), "OK "))
	assert.Equal(t, 1, strings.Count(out.String(), "FAIL "))
	assert.Contains(t, out.String(), "2 notifications, 1 invalid")
}

func TestVAPIDKeysCommand(t *testing.T) {
	var out bytes.Buffer

	root := &cli.Command{Name: "notimaster", Writer: &out, Commands: []*cli.Command{VAPIDKeysCommand()}}

	require.NoError(t, root.Run(t.Context(), []string{"notimaster", "vapid-keys"}))
	assert.Contains(t, out.String(), "VAPID_PUBLIC_KEY=")
	assert.Contains(t, out.String(), "VAPID_PRIVATE_KEY=")
}
