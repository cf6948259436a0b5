package querycache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"jobpilot-admin/pkg/logger"
)

// KafkaBusConfig contains configuration for the Kafka invalidation bus
type KafkaBusConfig struct {
	Brokers  []string
	Topic    string
	GroupID  string
	RetryMax int
	Timeout  time.Duration
}

// DefaultKafkaBusConfig returns a default bus configuration
func DefaultKafkaBusConfig() KafkaBusConfig {
	return KafkaBusConfig{
		Brokers:  []string{"localhost:9092"},
		Topic:    "jobpilot-invalidations",
		GroupID:  "jobpilot-admin",
		RetryMax: 3,
		Timeout:  10 * time.Second,
	}
}

// KafkaBus broadcasts invalidations through a Kafka topic. Every replica
// joins its own consumer group so each one sees every message.
type KafkaBus struct {
	producer sarama.SyncProducer
	group    sarama.ConsumerGroup
	topic    string
	log      *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewKafkaBus connects a producer and a consumer group. origin makes the
// group id unique to this replica.
func NewKafkaBus(cfg KafkaBusConfig, origin string, log *logger.Logger) (*KafkaBus, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultKafkaBusConfig().Topic
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Retry.Max = cfg.RetryMax
	if cfg.Timeout > 0 {
		saramaConfig.Producer.Timeout = cfg.Timeout
	}
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID+"-"+origin, saramaConfig)
	if err != nil {
		producer.Close()
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return newKafkaBus(producer, group, cfg.Topic, log), nil
}

func newKafkaBus(producer sarama.SyncProducer, group sarama.ConsumerGroup, topic string, log *logger.Logger) *KafkaBus {
	if log == nil {
		log = logger.GetDefault()
	}
	return &KafkaBus{producer: producer, group: group, topic: topic, log: log}
}

func (b *KafkaBus) Publish(ctx context.Context, msg Invalidation) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixNano()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal invalidation: %w", err)
	}

	kafkaMsg := &sarama.ProducerMessage{
		Topic: b.topic,
		Key:   sarama.StringEncoder(msg.Origin),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("origin"), Value: []byte(msg.Origin)},
		},
		Timestamp: time.Unix(0, msg.Timestamp),
	}

	partition, offset, err := b.producer.SendMessage(kafkaMsg)
	if err != nil {
		return fmt.Errorf("failed to send invalidation to kafka: %w", err)
	}

	b.log.DebugWithContext(ctx, "Published invalidation", map[string]interface{}{
		"topic":     b.topic,
		"partition": partition,
		"offset":    offset,
	})
	return nil
}

// Subscribe consumes the topic in the background until ctx is done
func (b *KafkaBus) Subscribe(ctx context.Context, handler func(Invalidation)) error {
	if b.group == nil {
		return fmt.Errorf("kafka bus has no consumer group")
	}

	subCtx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.cancel = cancel
	b.mu.Unlock()

	consumer := &invalidationConsumer{bus: b, handler: handler}

	b.wg.Add(2)
	go func() {
		defer b.wg.Done()
		for err := range b.group.Errors() {
			b.log.ErrorWithContext(subCtx, "Invalidation consumer group error", err, nil)
		}
	}()
	go func() {
		defer b.wg.Done()
		for {
			if err := b.group.Consume(subCtx, []string{b.topic}, consumer); err != nil {
				b.log.ErrorWithContext(subCtx, "Error consuming invalidations", err, nil)
				select {
				case <-subCtx.Done():
					return
				case <-time.After(time.Second):
				}
			}
			if subCtx.Err() != nil {
				return
			}
		}
	}()

	return nil
}

func (b *KafkaBus) Close() error {
	b.mu.Lock()
	cancel := b.cancel
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	var firstErr error
	if b.group != nil {
		if err := b.group.Close(); err != nil {
			firstErr = fmt.Errorf("failed to close consumer group: %w", err)
		}
	}
	if err := b.producer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close producer: %w", err)
	}
	b.wg.Wait()
	return firstErr
}

// invalidationConsumer implements sarama.ConsumerGroupHandler
type invalidationConsumer struct {
	bus     *KafkaBus
	handler func(Invalidation)
}

func (h *invalidationConsumer) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *invalidationConsumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *invalidationConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok || message == nil {
				return nil
			}
			if err := h.handleMessage(message); err != nil {
				h.bus.log.ErrorWithContext(session.Context(), "Skipping invalidation message", err, map[string]interface{}{
					"partition": message.Partition,
					"offset":    message.Offset,
				})
			}
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *invalidationConsumer) handleMessage(message *sarama.ConsumerMessage) error {
	var msg Invalidation
	if err := json.Unmarshal(message.Value, &msg); err != nil {
		return fmt.Errorf("failed to unmarshal invalidation: %w", err)
	}
	h.handler(msg)
	return nil
}
