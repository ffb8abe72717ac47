// Package kafka fires triggers from messages on a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/protocol"
)

const (
	// TriggerIDHeader names the message header that selects the trigger.
	TriggerIDHeader = "trigger_id"

	// DefaultConsumerGroup is used when Options.ConsumerGroup is empty.
	DefaultConsumerGroup = "notimaster-triggers"

	// TriggerContextKafkaKey holds the topic, partition and offset of the message.
	TriggerContextKafkaKey = "kafka"
)

const (
	kafkaSessionTimeout    = 10 * time.Second
	kafkaHeartbeatInterval = 3 * time.Second
	kafkaRetryInterval     = 5 * time.Second
)

var errMissingTriggerID = errors.New("message carries no trigger id")

// TriggerChecker reports whether a trigger id exists.
type TriggerChecker interface {
	Has(id string) bool
}

type Options struct {
	Brokers       []string
	Topic         string
	ConsumerGroup string
}

// envelope is the message body. Data becomes the trigger context.
type envelope struct {
	TriggerID string         `json:"trigger_id"`
	Data      map[string]any `json:"data"`
}

type Source struct {
	opts     Options
	triggers TriggerChecker
	logger   *slog.Logger

	mu       sync.Mutex
	consumer sarama.ConsumerGroup
	callback protocol.TriggerCallback
	cancel   context.CancelFunc
	done     chan struct{}
}

var _ protocol.TriggerSource = (*Source)(nil)

func New(triggers TriggerChecker, opts Options, logger *slog.Logger) (*Source, error) {
	if opts.ConsumerGroup == "" {
		opts.ConsumerGroup = DefaultConsumerGroup
	}

	source := &Source{
		opts:     opts,
		triggers: triggers,
		logger: logger.With(
			"module", "kafka_source",
			"topic", opts.Topic,
			"consumer_group", opts.ConsumerGroup,
		),
	}

	err := source.Validate()
	if err != nil {
		return nil, err
	}

	return source, nil
}

func (s *Source) Validate() error {
	if s.opts.Topic == "" {
		return errors.New("kafka trigger topic is required")
	}

	if len(s.opts.Brokers) == 0 {
		return errors.New("kafka trigger brokers are required")
	}

	return nil
}

func (s *Source) Start(ctx context.Context, callback protocol.TriggerCallback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.consumer != nil {
		return nil
	}

	s.logger.InfoContext(ctx, "Starting Kafka trigger source", "brokers", s.opts.Brokers)

	config := sarama.NewConfig()
	config.Version = sarama.V2_6_0_0
	config.Consumer.Group.Session.Timeout = kafkaSessionTimeout
	config.Consumer.Group.Heartbeat.Interval = kafkaHeartbeatInterval
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Return.Errors = true

	consumer, err := sarama.NewConsumerGroup(s.opts.Brokers, s.opts.ConsumerGroup, config)
	if err != nil {
		return fmt.Errorf("failed to create Kafka consumer group: %w", err)
	}

	consumeCtx, cancel := context.WithCancel(ctx)

	s.consumer = consumer
	s.callback = callback
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.consume(consumeCtx, consumer, s.done)
	go s.monitorErrors(consumeCtx, consumer)

	return nil
}

func (s *Source) Stop(ctx context.Context) error {
	s.mu.Lock()
	consumer, cancel, done := s.consumer, s.cancel, s.done
	s.consumer = nil
	s.mu.Unlock()

	if consumer == nil {
		return nil
	}

	s.logger.InfoContext(ctx, "Stopping Kafka trigger source")

	cancel()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	err := consumer.Close()
	if err != nil {
		return fmt.Errorf("failed to close Kafka consumer group: %w", err)
	}

	return nil
}

func (s *Source) consume(ctx context.Context, consumer sarama.ConsumerGroup, done chan struct{}) {
	defer close(done)

	handler := &consumerGroupHandler{source: s}

	for ctx.Err() == nil {
		err := consumer.Consume(ctx, []string{s.opts.Topic}, handler)
		if err == nil || errors.Is(err, sarama.ErrClosedConsumerGroup) {
			continue
		}

		s.logger.ErrorContext(ctx, "Kafka consumer error", "error", err)

		select {
		case <-ctx.Done():
		case <-time.After(kafkaRetryInterval):
		}
	}
}

func (s *Source) monitorErrors(ctx context.Context, consumer sarama.ConsumerGroup) {
	for {
		select {
		case err, ok := <-consumer.Errors():
			if !ok {
				return
			}

			s.logger.ErrorContext(ctx, "Kafka consumer group error", "error", err)
		case <-ctx.Done():
			return
		}
	}
}

// handle fires the trigger a message names. Messages that cannot be fired are
// logged and skipped so the partition keeps moving.
func (s *Source) handle(ctx context.Context, message *sarama.ConsumerMessage) {
	logger := s.logger.With("partition", message.Partition, "offset", message.Offset)

	triggerID, data, err := decode(message)
	if err != nil {
		logger.WarnContext(ctx, "Skipping Kafka message", "error", err)

		return
	}

	if !s.triggers.Has(triggerID) {
		logger.WarnContext(ctx, "Skipping Kafka message for unknown trigger", "trigger_id", triggerID)

		return
	}

	s.mu.Lock()
	callback := s.callback
	s.mu.Unlock()

	if callback == nil {
		return
	}

	err = callback(ctx, triggerID, data)
	if err != nil {
		logger.ErrorContext(ctx, "Kafka trigger failed", "trigger_id", triggerID, "error", err)
	}
}

// decode resolves the trigger id from the header, the body or the message
// key, in that order.
func decode(message *sarama.ConsumerMessage) (string, models.TriggerContext, error) {
	var body envelope

	if len(message.Value) > 0 {
		err := json.Unmarshal(message.Value, &body)
		if err != nil {
			return "", nil, fmt.Errorf("invalid message body: %w", err)
		}
	}

	triggerID := body.TriggerID

	for _, header := range message.Headers {
		if header != nil && string(header.Key) == TriggerIDHeader && len(header.Value) > 0 {
			triggerID = string(header.Value)
		}
	}

	if triggerID == "" {
		triggerID = string(message.Key)
	}

	if triggerID == "" {
		return "", nil, errMissingTriggerID
	}

	data := models.TriggerContext(body.Data).Clone()
	data[TriggerContextKafkaKey] = map[string]any{
		"topic":     message.Topic,
		"partition": message.Partition,
		"offset":    message.Offset,
	}

	return triggerID, data, nil
}

type consumerGroupHandler struct {
	source *Source
}

func (h *consumerGroupHandler) Setup(session sarama.ConsumerGroupSession) error {
	h.source.logger.InfoContext(session.Context(), "Kafka consumer group session started")

	return nil
}

func (h *consumerGroupHandler) Cleanup(session sarama.ConsumerGroupSession) error {
	h.source.logger.InfoContext(session.Context(), "Kafka consumer group session ended")

	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		h.source.handle(session.Context(), message)
		session.MarkMessage(message, "")
	}

	return nil
}
