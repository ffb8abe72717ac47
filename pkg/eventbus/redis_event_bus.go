package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukex/notimaster/pkg/events"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const (
	DefaultRedisQueue       = "notimaster:dispatch"
	defaultRedisMaxAttempts = 3
	redisPopTimeout         = time.Second
)

// redisEnvelope is the list element: the event payload plus the metadata a
// watermill message would carry.
type redisEnvelope struct {
	ID        string           `json:"id"`
	Key       string           `json:"key"`
	EventType events.EventType `json:"event_type"`
	Attempts  int              `json:"attempts"`
	Payload   json.RawMessage  `json:"payload"`
}

// RedisEventBus is a work queue on a Redis list: producers LPUSH, consumers
// BRPOP. A failed handler pushes the message back until MaxAttempts is reached.
type RedisEventBus struct {
	client      redis.UniversalClient
	queue       string
	maxAttempts int
	logger      *slog.Logger

	mu            sync.RWMutex
	subscriptions map[events.EventType]EventHandler

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

type RedisOption func(*RedisEventBus)

func WithRedisQueue(name string) RedisOption {
	return func(b *RedisEventBus) {
		if name != "" {
			b.queue = name
		}
	}
}

func WithRedisMaxAttempts(n int) RedisOption {
	return func(b *RedisEventBus) {
		if n > 0 {
			b.maxAttempts = n
		}
	}
}

func NewRedisEventBus(client redis.UniversalClient, logger *slog.Logger, opts ...RedisOption) *RedisEventBus {
	b := &RedisEventBus{
		client:        client,
		queue:         DefaultRedisQueue,
		maxAttempts:   defaultRedisMaxAttempts,
		subscriptions: make(map[events.EventType]EventHandler),
		stopCh:        make(chan struct{}),
	}

	for _, opt := range opts {
		opt(b)
	}

	b.logger = logger.With("module", "redis-event-bus", "queue", b.queue)

	return b
}

// NewRedisClient parses a redis:// URL and checks the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = client.Ping(pingCtx).Err()
	if err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

func (b *RedisEventBus) GenerateID() string {
	return uuid.New().String()
}

func (b *RedisEventBus) Publish(ctx context.Context, key string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return b.push(ctx, redisEnvelope{
		ID:        b.GenerateID(),
		Key:       key,
		EventType: event.GetType(),
		Payload:   payload,
	})
}

func (b *RedisEventBus) push(ctx context.Context, envelope redisEnvelope) error {
	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	err = b.client.LPush(ctx, b.queue, data).Err()
	if err != nil {
		return fmt.Errorf("failed to push message to %s: %w", b.queue, err)
	}

	return nil
}

func (b *RedisEventBus) Handle(eventType events.EventType, handler EventHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscriptions[eventType] = handler

	return nil
}

func (b *RedisEventBus) Subscribe(ctx context.Context) error {
	b.wg.Add(1)

	go b.consume(ctx)

	return nil
}

func (b *RedisEventBus) consume(ctx context.Context) {
	defer b.wg.Done()

	b.logger.InfoContext(ctx, "Starting queue consumer")

	for {
		select {
		case <-b.stopCh:
			b.logger.InfoContext(ctx, "Queue consumer stopped")

			return
		case <-ctx.Done():
			b.logger.InfoContext(ctx, "Context cancelled, stopping queue consumer")

			return
		default:
			err := b.processMessage(ctx)
			if err != nil && ctx.Err() == nil {
				b.logger.ErrorContext(ctx, "Error processing message", "error", err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (b *RedisEventBus) processMessage(ctx context.Context) error {
	result, err := b.client.BRPop(ctx, redisPopTimeout, b.queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}

		return fmt.Errorf("failed to pop message from queue: %w", err)
	}

	if len(result) < 2 {
		return nil
	}

	var envelope redisEnvelope

	err = json.Unmarshal([]byte(result[1]), &envelope)
	if err != nil {
		b.logger.ErrorContext(ctx, "Dropping malformed message", "error", err)

		return nil
	}

	b.mu.RLock()
	handler, exists := b.subscriptions[envelope.EventType]
	b.mu.RUnlock()

	if !exists {
		return nil
	}

	event, known := newEvent(envelope.EventType)
	if !known {
		b.logger.WarnContext(ctx, "Dropping message with unknown event type", "event_type", envelope.EventType)

		return nil
	}

	err = json.Unmarshal(envelope.Payload, event)
	if err != nil {
		b.logger.ErrorContext(ctx, "Dropping undecodable event", "event_type", envelope.EventType, "error", err)

		return nil
	}

	err = handler(ctx, event)
	if err == nil {
		return nil
	}

	envelope.Attempts++
	if envelope.Attempts >= b.maxAttempts {
		b.logger.ErrorContext(ctx, "Giving up on message",
			"message_id", envelope.ID,
			"attempts", envelope.Attempts,
			"error", err,
		)

		return nil
	}

	b.logger.WarnContext(ctx, "Handler failed, requeueing message",
		"message_id", envelope.ID,
		"attempts", envelope.Attempts,
		"error", err,
	)

	return b.push(ctx, envelope)
}

func (b *RedisEventBus) Close() error {
	b.once.Do(func() {
		close(b.stopCh)
	})

	b.wg.Wait()

	return b.client.Close()
}
