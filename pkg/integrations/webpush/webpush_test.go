package webpush

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

type memoryStore struct {
	mu      sync.Mutex
	subs    []*models.PushSubscription
	deleted []string
	getErr  error
}

func (s *memoryStore) GetAll(context.Context) ([]*models.PushSubscription, error) {
	return s.subs, s.getErr
}

func (s *memoryStore) DeleteByEndpoint(_ context.Context, endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleted = append(s.deleted, endpoint)

	return nil
}

func newSubscription(t *testing.T, endpoint string) *models.PushSubscription {
	t.Helper()

	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)

	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)

	return &models.PushSubscription{
		Endpoint: endpoint,
		P256dh:   base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
		Auth:     base64.RawURLEncoding.EncodeToString(auth),
	}
}

func newVAPID(t *testing.T) VAPIDConfig {
	t.Helper()

	public, private, err := GenerateVAPIDKeys()
	require.NoError(t, err)

	return VAPIDConfig{PublicKey: public, PrivateKey: private, Subscriber: "ops@example.com"}
}

func newPushService(t *testing.T) (*httptest.Server, *[]http.Header) {
	t.Helper()

	var (
		mu      sync.Mutex
		headers []http.Header
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		headers = append(headers, r.Header.Clone())
		mu.Unlock()

		switch r.URL.Path {
		case "/gone":
			w.WriteHeader(http.StatusGone)
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusCreated)
		}
	}))
	t.Cleanup(server.Close)

	return server, &headers
}

func process(t *testing.T, store SubscriptionStore, vapid VAPIDConfig, client *http.Client) error {
	t.Helper()

	integration, err := NewFactory(store, vapid, client).Create(protocol.Dependencies{Logger: testLogger})
	require.NoError(t, err)

	return integration.Process(context.Background(), protocol.Delivery{
		ConnectionID:   "c1",
		NotificationID: "n1",
		Settings:       map[string]any{"title": "{{post.title}}", "body": "New post", "ttl": float64(60)},
		Trigger:        models.TriggerContext{"post": map[string]any{"title": "Hello"}},
	})
}

func TestWebPush_SendsToEverySubscription(t *testing.T) {
	server, headers := newPushService(t)

	store := &memoryStore{subs: []*models.PushSubscription{
		newSubscription(t, server.URL+"/a"),
		newSubscription(t, server.URL+"/b"),
	}}

	require.NoError(t, process(t, store, newVAPID(t), server.Client()))

	require.Len(t, *headers, 2)
	for _, h := range *headers {
		assert.Equal(t, "60", h.Get("TTL"))
		assert.Equal(t, "aes128gcm", h.Get("Content-Encoding"))
		assert.Contains(t, h.Get("Authorization"), "vapid")
	}

	assert.Empty(t, store.deleted)
}

func TestWebPush_PrunesGoneSubscriptions(t *testing.T) {
	server, _ := newPushService(t)

	store := &memoryStore{subs: []*models.PushSubscription{
		newSubscription(t, server.URL+"/gone"),
		newSubscription(t, server.URL+"/a"),
	}}

	require.NoError(t, process(t, store, newVAPID(t), server.Client()))
	assert.Equal(t, []string{server.URL + "/gone"}, store.deleted)
}

func TestWebPush_FailuresDoNotStopOtherSubscriptions(t *testing.T) {
	server, headers := newPushService(t)

	store := &memoryStore{subs: []*models.PushSubscription{
		newSubscription(t, server.URL+"/broken"),
		newSubscription(t, server.URL+"/a"),
	}}

	err := process(t, store, newVAPID(t), server.Client())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/broken")
	assert.Len(t, *headers, 2)
	assert.Empty(t, store.deleted)
}

func TestWebPush_Errors(t *testing.T) {
	store := &memoryStore{}

	err := process(t, store, VAPIDConfig{}, nil)
	require.ErrorIs(t, err, ErrNotConfigured)

	boom := errors.New("db down")
	err = process(t, &memoryStore{getErr: boom}, newVAPID(t), nil)
	require.ErrorIs(t, err, boom)
}

func TestWebPush_NoSubscriptions(t *testing.T) {
	assert.NoError(t, process(t, &memoryStore{}, newVAPID(t), nil))
}
