package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/dukex/notimaster/pkg/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

func newTestAPI(t *testing.T) *API {
	t.Helper()

	app, err := cmd.NewApp(t.Context(), testLogger, cmd.AppOptions{
		ServiceName: "notimaster-api-test",
		DatabaseURL: "file://" + t.TempDir(),
		EventBus:    "gochannel",
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = app.Close(t.Context()) })

	return NewAPI(testLogger, app)
}

func TestAPI_Routes(t *testing.T) {
	app := newTestAPI(t).App()

	tests := []struct {
		path   string
		status int
	}{
		{"/", http.StatusOK},
		{"/health", http.StatusOK},
		{"/livez", http.StatusOK},
		{"/notifications", http.StatusOK},
		{"/triggers", http.StatusOK},
		{"/integrations", http.StatusOK},
		{"/settings", http.StatusOK},
		{"/logs", http.StatusOK},
		{"/push/vapid-public-key", http.StatusNotFound},
		{"/metrics", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAPI_IntegrationsListsNativeOnes(t *testing.T) {
	app := newTestAPI(t).App()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/integrations", nil))
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	for _, id := range []string{"discord", "email", "log", "webhook", "webpush"} {
		assert.Contains(t, string(body), `"id":"`+id+`"`)
	}
}
