package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukex/notimaster/pkg/dispatcher"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordsAttempts(t *testing.T) {
	c, err := NewCollector()
	require.NoError(t, err)

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	attempt := dispatcher.Attempt{NotificationID: "n1", ConnectionID: "c1", Integration: "webhook"}

	require.NoError(t, c.BeforeDispatch(t.Context(), attempt))
	clock = clock.Add(250 * time.Millisecond)
	require.NoError(t, c.AfterDispatch(t.Context(), attempt, nil))

	require.NoError(t, c.BeforeDispatch(t.Context(), attempt))
	require.NoError(t, c.AfterDispatch(t.Context(), attempt, errors.New("boom")))

	assert.InDelta(t, 1, testutil.ToFloat64(c.attempts.WithLabelValues("webhook", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.attempts.WithLabelValues("webhook", "failed")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(c.duration))

	_, pending := c.started.Load(attemptKey(attempt))
	assert.False(t, pending)
}

func TestCollector_JobEnqueued(t *testing.T) {
	c, err := NewCollector()
	require.NoError(t, err)

	c.JobEnqueued()
	c.JobEnqueued()

	assert.InDelta(t, 2, testutil.ToFloat64(c.enqueued), 0)
}

func TestCollector_Handler(t *testing.T) {
	c, err := NewCollector()
	require.NoError(t, err)

	c.ObserveRequest(http.MethodGet, "/notifications/:id", http.StatusOK, 10*time.Millisecond)
	c.JobEnqueued()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(body), "notimaster_dispatch_enqueued_total 1")
	assert.Contains(t, string(body), `notimaster_http_requests_total{method="GET",path="/notifications/:id",status="200"} 1`)
}
