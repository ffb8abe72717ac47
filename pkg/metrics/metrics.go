// Package metrics exposes Prometheus collectors for dispatch activity and the
// HTTP API.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dukex/notimaster/pkg/dispatcher"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "notimaster"

const (
	statusSuccess = "success"
	statusFailed  = "failed"
)

// Collector records dispatch attempts and queue activity. It is a dispatcher
// observer and a queue counter.
type Collector struct {
	registry        *prometheus.Registry
	attempts        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	enqueued        prometheus.Counter
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	started sync.Map
	now     func() time.Time
}

// NewCollector constructs a collector on its own registry.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "attempts_total",
			Help:      "Total connection deliveries by integration and outcome.",
		}, []string{"integration", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "duration_seconds",
			Help:      "Time spent delivering one connection.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"integration"}),
		enqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "enqueued_total",
			Help:      "Total dispatch jobs handed to the background queue.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution for inbound HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of inbound HTTP requests.",
		}, []string{"method", "path", "status"}),
		now: time.Now,
	}

	for _, collector := range []prometheus.Collector{
		c.attempts,
		c.duration,
		c.enqueued,
		c.requestDuration,
		c.requestTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := registry.Register(collector); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func attemptKey(attempt dispatcher.Attempt) string {
	return attempt.NotificationID + "/" + attempt.ConnectionID
}

func (c *Collector) BeforeDispatch(_ context.Context, attempt dispatcher.Attempt) error {
	c.started.Store(attemptKey(attempt), c.now())

	return nil
}

func (c *Collector) AfterDispatch(_ context.Context, attempt dispatcher.Attempt, deliveryErr error) error {
	status := statusSuccess
	if deliveryErr != nil {
		status = statusFailed
	}

	c.attempts.WithLabelValues(attempt.Integration, status).Inc()

	if started, ok := c.started.LoadAndDelete(attemptKey(attempt)); ok {
		c.duration.WithLabelValues(attempt.Integration).Observe(c.now().Sub(started.(time.Time)).Seconds())
	}

	return nil
}

// JobEnqueued counts one job published to the queue.
func (c *Collector) JobEnqueued() {
	c.enqueued.Inc()
}

// ObserveRequest records one HTTP request. path should be the route pattern,
// not the raw URL, to keep label cardinality bounded.
func (c *Collector) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)

	c.requestDuration.WithLabelValues(method, path, code).Observe(elapsed.Seconds())
	c.requestTotal.WithLabelValues(method, path, code).Inc()
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mostly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
