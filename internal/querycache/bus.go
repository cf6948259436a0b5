package querycache

import (
	"context"
	"sync"

	"jobpilot-admin/internal/shared/constants"
	"jobpilot-admin/pkg/logger"
)

// Invalidation is the message peers exchange after a mutation
type Invalidation struct {
	Origin    string               `json:"origin"`
	Tags      []constants.CacheTag `json:"tags"`
	Timestamp int64                `json:"timestamp"`
}

// InvalidationBus carries invalidations between replicas. Subscribe starts
// delivery in the background and stops when ctx is done.
type InvalidationBus interface {
	Publish(ctx context.Context, msg Invalidation) error
	Subscribe(ctx context.Context, handler func(Invalidation)) error
	Close() error
}

// LocalBus delivers invalidations to handlers in the same process
type LocalBus struct {
	mu       sync.RWMutex
	handlers map[uint64]func(Invalidation)
	next     uint64
	log      *logger.Logger
}

func NewLocalBus(log *logger.Logger) *LocalBus {
	if log == nil {
		log = logger.GetDefault()
	}
	return &LocalBus{handlers: make(map[uint64]func(Invalidation)), log: log}
}

// Publish calls every handler synchronously. A panicking handler is logged
// and does not stop the others.
func (b *LocalBus) Publish(ctx context.Context, msg Invalidation) error {
	b.mu.RLock()
	handlers := make([]func(Invalidation), 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatch(ctx, h, msg)
	}
	return nil
}

func (b *LocalBus) Subscribe(ctx context.Context, handler func(Invalidation)) error {
	b.mu.Lock()
	b.next++
	id := b.next
	b.handlers[id] = handler
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}()
	return nil
}

func (b *LocalBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[uint64]func(Invalidation))
	return nil
}

func (b *LocalBus) dispatch(ctx context.Context, h func(Invalidation), msg Invalidation) {
	defer func() {
		if r := recover(); r != nil {
			b.log.ErrorWithContext(ctx, "invalidation handler panicked", nil, map[string]interface{}{"panic": r})
		}
	}()
	h(msg)
}
