package querycache

import (
	"context"
	"fmt"
	"sync"
)

// Subscription delivers results for one query. Results holds at most one
// unread result; a newer one replaces it. The channel is closed on
// Unsubscribe and when the entry is forgotten.
type Subscription struct {
	Results <-chan Result

	cache *Cache
	entry *entry
	id    uint64
	once  sync.Once
}

// Unsubscribe releases the subscription. The last subscriber leaving
// cancels any in-flight fetch. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.cache.unsubscribe(s.entry, s.id)
	})
}

// Refetch asks for a fresh fetch unless one is already running
func (s *Subscription) Refetch() error {
	return s.cache.refetch(s.entry)
}

// Key returns the cache key of the subscribed query
func (s *Subscription) Key() string {
	return s.entry.id
}

// FetchAs runs a one-shot Fetch and asserts the cached data type
func FetchAs[T any](ctx context.Context, c *Cache, q Query) (T, error) {
	var zero T

	r, err := c.Fetch(ctx, q)
	if err != nil {
		return zero, err
	}
	if r.Data == nil {
		return zero, nil
	}
	v, ok := r.Data.(T)
	if !ok {
		return zero, fmt.Errorf("query %s: cached %T, want %T", q.Name, r.Data, zero)
	}
	return v, nil
}
