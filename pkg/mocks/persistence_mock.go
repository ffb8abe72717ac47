package mocks

import (
	"context"
	"time"

	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockNotificationRepository is a mock implementation of persistence.NotificationRepository interface.
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) GetAll(ctx context.Context) ([]*models.Notification, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) GetByTrigger(ctx context.Context, triggerID string) ([]*models.Notification, error) {
	args := m.Called(ctx, triggerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) Save(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)

	return args.Error(0)
}

func (m *MockNotificationRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockSettingsRepository is a mock implementation of persistence.SettingsRepository interface.
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context) (models.Settings, error) {
	args := m.Called(ctx)

	return args.Get(0).(models.Settings), args.Error(1)
}

func (m *MockSettingsRepository) Save(ctx context.Context, settings models.Settings) error {
	args := m.Called(ctx, settings)

	return args.Error(0)
}

// MockLogRepository is a mock implementation of persistence.LogRepository interface.
type MockLogRepository struct {
	mock.Mock
}

func (m *MockLogRepository) Save(ctx context.Context, entry *models.LogEntry) error {
	args := m.Called(ctx, entry)

	return args.Error(0)
}

func (m *MockLogRepository) List(ctx context.Context, opts persistence.ListLogsOptions) (*persistence.LogListResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*persistence.LogListResult), args.Error(1)
}

func (m *MockLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)

	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLogRepository) Clear(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

// MockSubscriptionRepository is a mock implementation of persistence.SubscriptionRepository interface.
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Save(ctx context.Context, subscription *models.PushSubscription) error {
	args := m.Called(ctx, subscription)

	return args.Error(0)
}

func (m *MockSubscriptionRepository) GetAll(ctx context.Context) ([]*models.PushSubscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.PushSubscription), args.Error(1)
}

func (m *MockSubscriptionRepository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	args := m.Called(ctx, endpoint)

	return args.Error(0)
}

// MockPersistence is a mock implementation of persistence.Persistence interface.
// Settings lookups are answered from the mock settings repository.
type MockPersistence struct {
	mock.Mock

	notificationRepo *MockNotificationRepository
	settingsRepo     *MockSettingsRepository
	logRepo          *MockLogRepository
	subscriptionRepo *MockSubscriptionRepository
}

func NewMockPersistence() *MockPersistence {
	return &MockPersistence{
		notificationRepo: &MockNotificationRepository{},
		settingsRepo:     &MockSettingsRepository{},
		logRepo:          &MockLogRepository{},
		subscriptionRepo: &MockSubscriptionRepository{},
	}
}

func (m *MockPersistence) GetMockNotificationRepository() *MockNotificationRepository {
	return m.notificationRepo
}

func (m *MockPersistence) GetMockSettingsRepository() *MockSettingsRepository {
	return m.settingsRepo
}

func (m *MockPersistence) GetMockLogRepository() *MockLogRepository {
	return m.logRepo
}

func (m *MockPersistence) GetMockSubscriptionRepository() *MockSubscriptionRepository {
	return m.subscriptionRepo
}

func (m *MockPersistence) NotificationRepository() persistence.NotificationRepository {
	return m.notificationRepo
}

func (m *MockPersistence) SettingsRepository() persistence.SettingsRepository {
	return m.settingsRepo
}

func (m *MockPersistence) LogRepository() persistence.LogRepository {
	return m.logRepo
}

func (m *MockPersistence) SubscriptionRepository() persistence.SubscriptionRepository {
	return m.subscriptionRepo
}

func (m *MockPersistence) GetSetting(ctx context.Context, key string, def any) any {
	settings, err := m.settingsRepo.Get(ctx)

	return persistence.LookupSetting(settings, err, key, def)
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
