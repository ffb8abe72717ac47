// Package persistencetest holds the behaviour every persistence backend must share.
package persistencetest

import (
	"context"
	"testing"
	"time"

	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/persistence"
	"github.com/dukex/notimaster/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty backend for one subtest.
type Factory func(t *testing.T) persistence.Persistence

// Run executes the shared suite against the backend built by newBackend.
func Run(t *testing.T, newBackend Factory) {
	t.Helper()

	t.Run("notifications", func(t *testing.T) { testNotifications(t, newBackend(t)) })
	t.Run("notification connection order", func(t *testing.T) { testConnectionOrder(t, newBackend(t)) })
	t.Run("notifications by trigger", func(t *testing.T) { testByTrigger(t, newBackend(t)) })
	t.Run("settings", func(t *testing.T) { testSettings(t, newBackend(t)) })
	t.Run("logs", func(t *testing.T) { testLogs(t, newBackend(t)) })
	t.Run("subscriptions", func(t *testing.T) { testSubscriptions(t, newBackend(t)) })
	t.Run("health", func(t *testing.T) { require.NoError(t, newBackend(t).HealthCheck(context.Background())) })
}

func testNotifications(t *testing.T, p persistence.Persistence) {
	ctx := context.Background()
	repo := p.NotificationRepository()

	_, err := repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, persistence.ErrNotificationNotFound)

	notification := testutil.CreateTestNotification(testutil.WithTitle("Welcome"))
	notification.CreatedAt = time.Time{}
	require.NoError(t, repo.Save(ctx, notification))
	assert.False(t, notification.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, notification.ID)
	require.NoError(t, err)
	assert.Equal(t, "Welcome", got.Title)
	assert.Equal(t, notification.TriggerID, got.TriggerID)
	assert.Equal(t, notification.Connections.IDs(), got.Connections.IDs())

	got.Title = "Welcome back"
	require.NoError(t, repo.Save(ctx, got))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Welcome back", all[0].Title)

	require.NoError(t, repo.Delete(ctx, notification.ID))
	require.ErrorIs(t, repo.Delete(ctx, notification.ID), persistence.ErrNotificationNotFound)

	all, err = repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testConnectionOrder(t *testing.T, p persistence.Persistence) {
	ctx := context.Background()
	repo := p.NotificationRepository()

	notification := testutil.CreateTestNotification(testutil.WithConnections(
		models.ConnectionEntry{ID: "zulu", Connection: models.Connection{Integration: "email", Settings: map[string]any{"to": "a@example.com"}}},
		models.ConnectionEntry{ID: "alpha", Connection: models.Connection{Integration: "webhook", Enabled: models.Bool(false)}},
		models.ConnectionEntry{ID: "mike", Connection: models.Connection{Integration: "log", Enabled: models.Bool(true)}},
	))
	require.NoError(t, repo.Save(ctx, notification))

	got, err := repo.GetByID(ctx, notification.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"zulu", "alpha", "mike"}, got.Connections.IDs())

	zulu, _ := got.Connections.Get("zulu")
	assert.Nil(t, zulu.Enabled)
	assert.Equal(t, "a@example.com", zulu.Settings["to"])

	alpha, _ := got.Connections.Get("alpha")
	assert.False(t, alpha.IsEnabled())
}

func testByTrigger(t *testing.T, p persistence.Persistence) {
	ctx := context.Background()
	repo := p.NotificationRepository()

	first := testutil.CreateTestNotification()
	first.CreatedAt = time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	second := testutil.CreateTestNotification()
	disabled := testutil.CreateTestNotification(testutil.Disabled())
	other := testutil.CreateTestNotification(testutil.WithTrigger("media.uploaded"))

	for _, n := range []*models.Notification{second, disabled, other, first} {
		require.NoError(t, repo.Save(ctx, n))
	}

	got, err := repo.GetByTrigger(ctx, "post.published")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)

	none, err := repo.GetByTrigger(ctx, "theme.switched")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testSettings(t *testing.T, p persistence.Persistence) {
	ctx := context.Background()
	repo := p.SettingsRepository()

	settings, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), settings)
	assert.Equal(t, false, p.GetSetting(ctx, models.SettingBackgroundProcessing, true))

	require.NoError(t, repo.Save(ctx, models.Settings{BackgroundProcessing: true, LoggingEnabled: false, LogRetentionDays: 7}))

	settings, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.True(t, settings.BackgroundProcessing)
	assert.False(t, settings.LoggingEnabled)
	assert.Equal(t, 7, settings.LogRetentionDays)

	assert.Equal(t, true, p.GetSetting(ctx, models.SettingBackgroundProcessing, false))
	assert.Equal(t, 7, p.GetSetting(ctx, models.SettingLogRetentionDays, 0))
	assert.Equal(t, "fallback", p.GetSetting(ctx, "not_a_setting", "fallback"))
}

func testLogs(t *testing.T, p persistence.Persistence) {
	ctx := context.Background()
	repo := p.LogRepository()
	now := time.Now().UTC()

	old := testutil.CreateTestLogEntry("n1", now.Add(-40*24*time.Hour))
	recent := testutil.CreateTestLogEntry("n1", now.Add(-time.Hour))
	newest := testutil.CreateTestLogEntry("n2", now)
	newest.Status = models.LogStatusFailed
	newest.Error = "smtp: connection refused"

	for _, e := range []*models.LogEntry{old, recent, newest} {
		require.NoError(t, repo.Save(ctx, e))
	}

	result, err := repo.List(ctx, persistence.ListLogsOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.TotalCount)
	require.Len(t, result.Entries, 3)
	assert.Equal(t, newest.ID, result.Entries[0].ID)
	assert.Equal(t, models.LogStatusFailed, result.Entries[0].Status)
	assert.Equal(t, "smtp: connection refused", result.Entries[0].Error)
	assert.Equal(t, old.ID, result.Entries[2].ID)

	result, err = repo.List(ctx, persistence.ListLogsOptions{NotificationID: "n1", Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.TotalCount)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, old.ID, result.Entries[0].ID)

	deleted, err := repo.DeleteOlderThan(ctx, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	require.NoError(t, repo.Clear(ctx))

	result, err = repo.List(ctx, persistence.ListLogsOptions{})
	require.NoError(t, err)
	assert.Zero(t, result.TotalCount)
	assert.Empty(t, result.Entries)
}

func testSubscriptions(t *testing.T, p persistence.Persistence) {
	ctx := context.Background()
	repo := p.SubscriptionRepository()

	sub := &models.PushSubscription{Endpoint: "https://push.example.com/a", P256dh: "key-1", Auth: "auth-1"}
	require.NoError(t, repo.Save(ctx, sub))
	require.NotEmpty(t, sub.ID)

	require.NoError(t, repo.Save(ctx, &models.PushSubscription{Endpoint: "https://push.example.com/a", P256dh: "key-2", Auth: "auth-2"}))
	require.NoError(t, repo.Save(ctx, &models.PushSubscription{Endpoint: "https://push.example.com/b", P256dh: "key-b", Auth: "auth-b"}))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	byEndpoint := map[string]*models.PushSubscription{}
	for _, s := range all {
		byEndpoint[s.Endpoint] = s
	}

	assert.Equal(t, "key-2", byEndpoint["https://push.example.com/a"].P256dh)
	assert.Equal(t, sub.ID, byEndpoint["https://push.example.com/a"].ID)

	require.NoError(t, repo.DeleteByEndpoint(ctx, "https://push.example.com/a"))
	require.ErrorIs(t, repo.DeleteByEndpoint(ctx, "https://push.example.com/a"), persistence.ErrSubscriptionNotFound)

	all, err = repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
