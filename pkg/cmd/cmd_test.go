package cmd

import (
	"log/slog"
	"os"
	"testing"

	"github.com/dukex/notimaster/pkg/config"
	"github.com/dukex/notimaster/pkg/eventbus"
	"github.com/dukex/notimaster/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

func TestParsePersistenceProvider(t *testing.T) {
	assert.Equal(t, "file", parsePersistenceProvider("file:///tmp/data"))
	assert.Equal(t, "file", parsePersistenceProvider("./data"))
	assert.Equal(t, "postgres", parsePersistenceProvider("postgres://u:p@localhost/db"))
	assert.Equal(t, "postgresql", parsePersistenceProvider("postgresql://localhost/db"))
	assert.Equal(t, "file", parsePersistenceProvider("mysql://localhost/db"))
}

func TestNewPersistence_File(t *testing.T) {
	p, err := NewPersistence(t.Context(), testLogger, "file://"+t.TempDir())
	require.NoError(t, err)

	assert.IsType(t, &file.Persistence{}, p)
}

func TestNewRegistry_RegistersNativeIntegrations(t *testing.T) {
	reg, err := NewRegistry(testLogger, config.Config{}, file.NewPersistence(t.TempDir()).SubscriptionRepository())
	require.NoError(t, err)

	for _, id := range []string{"email", "webhook", "discord", "webpush", "log"} {
		assert.True(t, reg.IsRegistered(id), id)
	}
}

func TestNewEventBus(t *testing.T) {
	bus, err := NewEventBus(t.Context(), "gochannel", config.Config{}, testLogger)
	require.NoError(t, err)
	assert.IsType(t, &eventbus.WatermillEventBus{}, bus)
	require.NoError(t, bus.Close())

	_, err = NewEventBus(t.Context(), "carrier-pigeon", config.Config{}, testLogger)
	require.ErrorContains(t, err, "unsupported event bus provider")

	_, err = NewEventBus(t.Context(), "kafka", config.Config{}, testLogger)
	require.Error(t, err)
}

func TestNewApp_File(t *testing.T) {
	app, err := NewApp(t.Context(), testLogger, AppOptions{
		ServiceName: "notimaster-test",
		DatabaseURL: "file://" + t.TempDir(),
		EventBus:    "gochannel",
	})
	require.NoError(t, err)

	assert.NotNil(t, app.Queue)
	assert.NotNil(t, app.Dispatcher)
	assert.True(t, app.Catalog.Has("post.published"))

	fired, err := app.Triggers.Fire(t.Context(), "post.published", nil)
	require.NoError(t, err)
	assert.Zero(t, fired)

	require.NoError(t, app.Close(t.Context()))
}

func TestNewApp_UnknownEventBus(t *testing.T) {
	_, err := NewApp(t.Context(), testLogger, AppOptions{DatabaseURL: t.TempDir(), EventBus: "smoke-signals"})
	require.ErrorContains(t, err, "unsupported event bus provider")
}
