package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukex/notimaster/pkg/cmd"
	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/persistence"
	"github.com/dukex/notimaster/pkg/sources/schedule"
	"github.com/dukex/notimaster/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

func newTestApp(t *testing.T) *cmd.App {
	t.Helper()

	app, err := cmd.NewApp(t.Context(), testLogger, cmd.AppOptions{
		ServiceName: "notimaster-worker-test",
		DatabaseURL: "file://" + t.TempDir(),
		EventBus:    "gochannel",
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = app.Close(context.Background()) })

	return app
}

func writeSchedules(t *testing.T, schedules []schedule.Schedule) string {
	t.Helper()

	data, err := json.Marshal(schedules)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "schedules.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

func TestNewWorkerManager_LoadsSchedules(t *testing.T) {
	app := newTestApp(t)

	path := writeSchedules(t, []schedule.Schedule{
		{ID: "digest", Cron: "0 9 * * 1", TriggerID: "post.published"},
	})

	w, err := NewWorkerManager("w1", app, testLogger, Options{SchedulesFile: path, PruneSchedule: "@daily"})
	require.NoError(t, err)
	assert.Len(t, w.schedules.Schedules(), 1)
	assert.NotNil(t, w.worker)
	assert.Len(t, w.sources, 1)
}

func TestNewWorkerManager_AddsKafkaSourceWhenTopicSet(t *testing.T) {
	app := newTestApp(t)
	app.Config.Kafka.TriggerTopic = "notimaster.triggers"

	w, err := NewWorkerManager("w1", app, testLogger, Options{})
	require.NoError(t, err)
	assert.Len(t, w.sources, 2)
}

func TestNewWorkerManager_RejectsInvalidInput(t *testing.T) {
	app := newTestApp(t)

	_, err := NewWorkerManager("w1", app, testLogger, Options{PruneSchedule: "every now and then"})
	require.ErrorContains(t, err, "invalid prune schedule")

	path := writeSchedules(t, []schedule.Schedule{{ID: "x", Cron: "* * * * *", TriggerID: "no.such.trigger"}})

	_, err = NewWorkerManager("w1", app, testLogger, Options{SchedulesFile: path})
	require.Error(t, err)
}

func TestWorkerManager_PrunesOnStartup(t *testing.T) {
	app := newTestApp(t)

	logs := app.Persistence.LogRepository()
	require.NoError(t, logs.Save(t.Context(), testutil.CreateTestLogEntry("n1", time.Now().AddDate(0, 0, -400))))
	require.NoError(t, logs.Save(t.Context(), testutil.CreateTestLogEntry("n1", time.Now())))

	w, err := NewWorkerManager("w1", app, testLogger, Options{PruneSchedule: "@daily"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.Eventually(t, func() bool {
		result, err := logs.List(t.Context(), persistence.ListLogsOptions{})

		return err == nil && result.TotalCount == 1
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorkerManager_DeliversQueuedJobs(t *testing.T) {
	app := newTestApp(t)

	require.NoError(t, app.Persistence.SettingsRepository().Save(t.Context(), models.Settings{
		BackgroundProcessing: true,
		LoggingEnabled:       true,
		LogRetentionDays:     30,
	}))

	notification := testutil.CreateTestNotification()
	require.NoError(t, app.Persistence.NotificationRepository().Save(t.Context(), notification))

	w, err := NewWorkerManager("w1", app, testLogger, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	go func() { _ = w.Start(ctx) }()

	require.Eventually(t, func() bool {
		_, err := app.Triggers.Fire(ctx, "post.published", models.TriggerContext{"post": map[string]any{"title": "Hi"}})
		if err != nil {
			return false
		}

		result, err := app.Persistence.LogRepository().List(t.Context(), persistence.ListLogsOptions{NotificationID: notification.ID})

		return err == nil && result.TotalCount > 0
	}, 5*time.Second, 100*time.Millisecond)
}
