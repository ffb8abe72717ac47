package services

import (
	"errors"
	"testing"
	"time"

	"github.com/dukex/notimaster/pkg/mocks"
	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestServiceError(t *testing.T) {
	err := NewValidationError("Validate", "UNKNOWN_TRIGGER", "trigger 'x' does not exist", ErrUnknownTrigger)

	assert.Equal(t, "Validate: trigger 'x' does not exist", err.Error())
	assert.ErrorIs(t, err, ErrUnknownTrigger)
	assert.True(t, IsValidationError(err))
	assert.False(t, IsNotFoundError(err))

	wrapped := &ServiceError{Op: "Update", Err: persistence.ErrNotificationNotFound}
	assert.Equal(t, "Update: notification not found", wrapped.Error())
	assert.True(t, IsNotFoundError(wrapped))
}

func TestNotification_ListPropagatesStorageErrors(t *testing.T) {
	store := mocks.NewMockPersistence()
	store.GetMockNotificationRepository().On("GetAll", mock.Anything).Return(nil, errors.New("connection reset"))

	_, err := NewNotification(store, nil, nil).List(t.Context(), ListNotificationsRequest{})
	require.ErrorContains(t, err, "connection reset")
	assert.False(t, IsValidationError(err))

	store.GetMockNotificationRepository().AssertExpectations(t)
}

func TestNotification_HealthCheckReportsStorageFailure(t *testing.T) {
	store := mocks.NewMockPersistence()
	store.On("HealthCheck", mock.Anything).Return(errors.New("db down"))

	message, ok := NewNotification(store, nil, nil).HealthCheck(t.Context())
	assert.False(t, ok)
	assert.Equal(t, "Persistence layer is unhealthy: db down", message)
}

func TestLogs_PruneUsesRetentionCutoff(t *testing.T) {
	store := mocks.NewMockPersistence()
	now := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	store.GetMockSettingsRepository().On("Get", mock.Anything).Return(models.Settings{LogRetentionDays: 7}, nil)
	store.GetMockLogRepository().On("DeleteOlderThan", mock.Anything, now.AddDate(0, 0, -7)).Return(int64(4), nil)

	deleted, err := NewLogs(store, testLogger).Prune(t.Context(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)

	store.GetMockLogRepository().AssertExpectations(t)
}

func TestLogs_PruneFallsBackToDefaultRetention(t *testing.T) {
	store := mocks.NewMockPersistence()
	now := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	store.GetMockSettingsRepository().On("Get", mock.Anything).Return(models.Settings{}, errors.New("unreadable"))
	store.GetMockLogRepository().On("DeleteOlderThan", mock.Anything, now.AddDate(0, 0, -models.DefaultLogRetentionDays)).Return(int64(0), nil)

	_, err := NewLogs(store, testLogger).Prune(t.Context(), now)
	require.NoError(t, err)

	store.GetMockLogRepository().AssertExpectations(t)
}
