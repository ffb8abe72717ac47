package queue

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/notimaster/pkg/channels/gochannel"
	"github.com/dukex/notimaster/pkg/eventbus"
	"github.com/dukex/notimaster/pkg/events"
	"github.com/dukex/notimaster/pkg/mocks"
	"github.com/dukex/notimaster/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

func newMockBus(publishErr error) *mocks.MockEventBus {
	bus := &mocks.MockEventBus{}
	bus.On("GenerateID").Return("generated").Maybe()
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(publishErr)

	return bus
}

func publishedJob(t *testing.T, bus *mocks.MockEventBus) (string, events.DispatchRequested) {
	t.Helper()

	var calls []mock.Call
	for _, call := range bus.Calls {
		if call.Method == "Publish" {
			calls = append(calls, call)
		}
	}

	require.Len(t, calls, 1)

	event, ok := calls[0].Arguments.Get(2).(events.DispatchRequested)
	require.True(t, ok)

	return calls[0].Arguments.String(1), event
}

type countingCounter struct{ n int }

func (c *countingCounter) JobEnqueued() { c.n++ }

type recordedCall struct {
	connections    []string
	trigger        models.TriggerContext
	notificationID string
}

type recordingProcessor struct {
	mu    sync.Mutex
	calls []recordedCall
	done  chan struct{}
}

func (p *recordingProcessor) Process(_ context.Context, connections models.Connections, trigger models.TriggerContext, notificationID string) error {
	p.mu.Lock()
	p.calls = append(p.calls, recordedCall{connections: connections.IDs(), trigger: trigger, notificationID: notificationID})
	p.mu.Unlock()

	if p.done != nil {
		p.done <- struct{}{}
	}

	return nil
}

func sampleJob() models.DispatchJob {
	return models.DispatchJob{
		NotificationID: "42",
		Connections: models.NewConnections(
			models.ConnectionEntry{ID: "second", Connection: models.Connection{Integration: "email"}},
			models.ConnectionEntry{ID: "first", Connection: models.Connection{Integration: "webhook"}},
		),
		Trigger: models.TriggerContext{"post": "hello"},
	}
}

func TestQueue_EnqueueAssignsIDAndTimestamp(t *testing.T) {
	bus := newMockBus(nil)
	counter := &countingCounter{}
	q := New(bus, WithCounter(counter))

	require.NoError(t, q.Enqueue(context.Background(), sampleJob()))

	key, event := publishedJob(t, bus)
	assert.Equal(t, "42", key)
	assert.Equal(t, "generated", event.Job.ID)
	assert.False(t, event.Job.EnqueuedAt.IsZero())
	assert.Equal(t, []string{"second", "first"}, event.Job.Connections.IDs())
	assert.Equal(t, 1, counter.n)
}

func TestQueue_EnqueueKeepsExistingIDAndTimestamp(t *testing.T) {
	bus := newMockBus(nil)
	q := New(bus)

	job := sampleJob()
	job.ID = "fixed"
	job.EnqueuedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, q.Enqueue(context.Background(), job))

	_, event := publishedJob(t, bus)
	assert.Equal(t, "fixed", event.Job.ID)
	assert.Equal(t, job.EnqueuedAt, event.Job.EnqueuedAt)
}

func TestQueue_EnqueueReturnsPublishError(t *testing.T) {
	publishErr := errors.New("broker down")
	counter := &countingCounter{}
	q := New(newMockBus(publishErr), WithCounter(counter))

	err := q.Enqueue(context.Background(), sampleJob())

	require.ErrorIs(t, err, publishErr)
	assert.Zero(t, counter.n)
}

func TestWorker_ProcessesEnqueuedJobs(t *testing.T) {
	pub, sub, err := gochannel.CreateChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub, testLogger)
	t.Cleanup(func() { _ = bus.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	processor := &recordingProcessor{done: make(chan struct{}, 1)}
	worker := NewWorker("w1", bus, processor, testLogger)
	require.NoError(t, worker.Start(ctx))

	require.NoError(t, New(bus).Enqueue(ctx, sampleJob()))

	select {
	case <-processor.done:
	case <-time.After(5 * time.Second):
		t.Fatal("job was not processed")
	}

	processor.mu.Lock()
	defer processor.mu.Unlock()

	require.Len(t, processor.calls, 1)
	assert.Equal(t, "42", processor.calls[0].notificationID)
	assert.Equal(t, []string{"second", "first"}, processor.calls[0].connections)
	assert.Equal(t, "hello", processor.calls[0].trigger["post"])
}

func TestWorker_HandleRejectsUnexpectedEvents(t *testing.T) {
	worker := NewWorker("w1", &mocks.MockEventBus{}, &recordingProcessor{}, testLogger)

	err := worker.handle(context.Background(), "not an event")
	assert.Error(t, err)
}

func TestWorker_StartReportsSubscribeFailure(t *testing.T) {
	bus := &mocks.MockEventBus{}
	bus.On("Handle", events.DispatchRequestedEvent, mock.Anything).Return(nil)
	bus.On("Subscribe", mock.Anything).Return(errors.New("no brokers"))

	err := NewWorker("w1", bus, &recordingProcessor{}, testLogger).Start(context.Background())

	require.ErrorContains(t, err, "failed to subscribe to dispatch jobs")
	bus.AssertExpectations(t)
}

func TestWorker_StartReportsHandlerRegistrationFailure(t *testing.T) {
	bus := &mocks.MockEventBus{}
	bus.On("Handle", events.DispatchRequestedEvent, mock.Anything).Return(errors.New("duplicate"))

	err := NewWorker("w1", bus, &recordingProcessor{}, testLogger).Start(context.Background())

	require.ErrorContains(t, err, "failed to register dispatch handler")
	bus.AssertNotCalled(t, "Subscribe", mock.Anything)
}
