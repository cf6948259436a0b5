package querycache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"jobpilot-admin/internal/shared/constants"
	"jobpilot-admin/pkg/cache"
	"jobpilot-admin/pkg/logger"
)

const defaultCloseTimeout = 5 * time.Second

// RedisBus broadcasts invalidations over Redis Pub/Sub
type RedisBus struct {
	cache   cache.Service
	channel string
	log     *logger.Logger

	mu       sync.Mutex
	running  bool
	cancelFn context.CancelFunc
	doneCh   chan struct{}
}

// RedisBusOption configures a RedisBus
type RedisBusOption func(*RedisBus)

// WithRedisChannel sets the Pub/Sub channel name
func WithRedisChannel(channel string) RedisBusOption {
	return func(b *RedisBus) {
		if channel != "" {
			b.channel = channel
		}
	}
}

func WithRedisLogger(l *logger.Logger) RedisBusOption {
	return func(b *RedisBus) { b.log = l }
}

// NewRedisBus creates a bus on an existing cache service. The caller keeps
// ownership of the underlying client.
func NewRedisBus(c cache.Service, opts ...RedisBusOption) *RedisBus {
	b := &RedisBus{
		cache:   c,
		channel: constants.DEFAULT_INVALIDATION_CHANNEL,
		log:     logger.GetDefault(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Channel returns the Pub/Sub channel in use
func (b *RedisBus) Channel() string {
	return b.channel
}

func (b *RedisBus) Publish(ctx context.Context, msg Invalidation) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixNano()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal invalidation: %w", err)
	}

	if err := b.cache.Publish(ctx, b.channel, data); err != nil {
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}
	return nil
}

// Subscribe confirms the subscription and then delivers messages from a
// background goroutine until ctx is done or Close is called.
func (b *RedisBus) Subscribe(ctx context.Context, handler func(Invalidation)) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	b.running = true
	subCtx, cancel := context.WithCancel(ctx)
	b.cancelFn = cancel
	b.doneCh = make(chan struct{})
	done := b.doneCh
	b.mu.Unlock()

	pubsub := b.cache.Subscribe(subCtx, b.channel)
	if _, err := pubsub.Receive(subCtx); err != nil {
		pubsub.Close()
		cancel()
		close(done)
		b.mu.Lock()
		b.running = false
		b.mu.Unlock()
		return fmt.Errorf("failed to subscribe to channel %s: %w", b.channel, err)
	}

	b.log.InfoWithContext(ctx, "Subscribed to invalidation channel", map[string]interface{}{"channel": b.channel})

	go func() {
		defer close(done)
		defer pubsub.Close()
		defer func() {
			b.mu.Lock()
			b.running = false
			b.mu.Unlock()
		}()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					b.log.Warn("Invalidation channel closed", "channel", b.channel)
					return
				}
				b.handlePayload(subCtx, []byte(m.Payload), handler)
			}
		}
	}()

	return nil
}

func (b *RedisBus) handlePayload(ctx context.Context, payload []byte, handler func(Invalidation)) {
	var msg Invalidation
	if err := json.Unmarshal(payload, &msg); err != nil {
		b.log.ErrorWithContext(ctx, "Failed to unmarshal invalidation", err, map[string]interface{}{
			"payload": string(payload),
		})
		return
	}

	defer func() {
		if r := recover(); r != nil {
			b.log.ErrorWithContext(ctx, "Panic in invalidation handler", nil, map[string]interface{}{"panic": r})
		}
	}()
	handler(msg)
}

// Close stops the subscription and waits for the receive loop to exit
func (b *RedisBus) Close() error {
	b.mu.Lock()
	cancel, done := b.cancelFn, b.doneCh
	b.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-time.After(defaultCloseTimeout):
		return fmt.Errorf("timeout waiting for invalidation subscription to stop")
	}
}
