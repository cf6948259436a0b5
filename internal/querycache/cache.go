// Package querycache caches upstream reads per session and refreshes them when
// a mutation invalidates one of their tags.
//
// Each entry has at most one fetch in flight. Subscribed entries refetch once
// per invalidation; invalidations that land while a fetch is running collapse
// into a single follow-up fetch. Entries nobody subscribes to are only marked
// stale and refetch on their next use.
package querycache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobpilot-admin/internal/shared/constants"
	"jobpilot-admin/pkg/logger"
)

// Config configures a Cache
type Config struct {
	// KeepUnused is how long a result outlives its last subscriber
	KeepUnused time.Duration
	Bus        InvalidationBus
	Metrics    *Metrics
	Logger     *logger.Logger
}

type entry struct {
	id    string
	scope string
	name  constants.QueryName
	tags  []constants.CacheTag
	fetch FetchFunc

	result   Result
	settled  bool
	stale    bool
	inFlight bool
	followUp bool
	fetchSeq uint64

	ctx    context.Context
	cancel context.CancelFunc
	subs   map[uint64]chan Result
	evict  *time.Timer
}

func (e *entry) provides(tags map[constants.CacheTag]bool) bool {
	for _, t := range e.tags {
		if tags[t] {
			return true
		}
	}
	return false
}

// Stats is a point-in-time view of the cache
type Stats struct {
	Entries     int `json:"entries"`
	Subscribers int `json:"subscribers"`
	InFlight    int `json:"inFlight"`
}

// Cache is a tag-invalidated query cache
type Cache struct {
	origin     string
	keepUnused time.Duration
	bus        InvalidationBus
	metrics    *Metrics
	log        *logger.Logger

	base       context.Context
	cancelBase context.CancelFunc

	mu      sync.Mutex
	entries map[string]*entry
	nextSub uint64
	closed  bool
}

func New(cfg Config) *Cache {
	if cfg.KeepUnused < 0 {
		cfg.KeepUnused = 0
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.GetDefault()
	}

	base, cancel := context.WithCancel(context.Background())
	return &Cache{
		origin:     uuid.NewString(),
		keepUnused: cfg.KeepUnused,
		bus:        cfg.Bus,
		metrics:    cfg.Metrics,
		log:        cfg.Logger,
		base:       base,
		cancelBase: cancel,
		entries:    make(map[string]*entry),
	}
}

// Origin identifies this cache on the invalidation bus
func (c *Cache) Origin() string {
	return c.origin
}

// Metrics returns the cache's collectors
func (c *Cache) Metrics() *Metrics {
	return c.metrics
}

// Start listens for invalidations broadcast by peer replicas
func (c *Cache) Start(ctx context.Context) error {
	if c.bus == nil {
		return nil
	}
	return c.bus.Subscribe(ctx, c.applyRemote)
}

// Close cancels every fetch and ends every subscription
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.cancelBase()
	for id, e := range c.entries {
		c.dropLocked(id, e)
	}
}

// Subscribe registers interest in q. The subscription immediately receives
// the cached result (or a pending one) and every later update. A missing or
// stale result triggers a fetch.
func (c *Cache) Subscribe(q Query) (*Subscription, error) {
	if q.Fetch == nil {
		return nil, fmt.Errorf("query %s has no fetch function", q.Name)
	}
	tags := constants.TagsProvidedBy(q.Name)
	if len(tags) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuery, q.Name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrCacheClosed
	}

	id := q.entryID()
	e, ok := c.entries[id]
	if !ok {
		e = &entry{
			id:    id,
			scope: q.Scope,
			name:  q.Name,
			tags:  tags,
			subs:  make(map[uint64]chan Result),
		}
		c.entries[id] = e
		c.metrics.entries.Set(float64(len(c.entries)))
	}
	e.fetch = q.Fetch
	if e.evict != nil {
		e.evict.Stop()
		e.evict = nil
	}

	c.nextSub++
	subID := c.nextSub
	ch := make(chan Result, 1)
	e.subs[subID] = ch
	c.metrics.subscribers.Inc()

	// A failed result is shown but never trusted by a new subscriber.
	if e.settled && e.result.Status == StatusRejected && !e.inFlight {
		e.stale = true
	}

	if e.settled {
		r := e.result
		r.Stale = e.stale
		deliver(ch, r)
	} else {
		deliver(ch, Result{Status: StatusPending})
	}

	if (!e.settled || e.stale) && !e.inFlight {
		c.startFetchLocked(e)
	}

	return &Subscription{Results: ch, cache: c, entry: e, id: subID}, nil
}

// Fetch is a one-shot read: it waits for the first settled, non-stale result
// and releases its subscription.
func (c *Cache) Fetch(ctx context.Context, q Query) (Result, error) {
	sub, err := c.Subscribe(q)
	if err != nil {
		return Result{}, err
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case r, ok := <-sub.Results:
			if !ok {
				return Result{}, ErrSubscriptionClosed
			}
			if !r.Settled() {
				continue
			}
			return r, r.Err
		}
	}
}

// Invalidate marks every entry providing one of tags as stale, refetches the
// subscribed ones and broadcasts the invalidation to peers. It returns how
// many refetches were started.
func (c *Cache) Invalidate(ctx context.Context, tags ...constants.CacheTag) int {
	if len(tags) == 0 {
		return 0
	}

	refetched := c.invalidateLocal(tags)
	c.metrics.invalidationsTotal.WithLabelValues("local").Inc()
	c.log.LogInvalidation(ctx, "local", tagStrings(tags), refetched)

	if c.bus != nil {
		msg := Invalidation{Origin: c.origin, Tags: tags, Timestamp: time.Now().UnixNano()}
		if err := c.bus.Publish(ctx, msg); err != nil {
			c.metrics.publishErrors.Inc()
			c.log.ErrorWithContext(ctx, "failed to broadcast invalidation", err, map[string]interface{}{
				"tags": tagStrings(tags),
			})
		}
	}
	return refetched
}

// Mutate runs fn and, only when it succeeds, invalidates exactly the tags
// the static graph declares for mutation.
func (c *Cache) Mutate(ctx context.Context, mutation constants.Mutation, fn func(ctx context.Context) error) error {
	tags, ok := constants.TagsInvalidatedBy(mutation)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMutation, mutation)
	}

	if err := fn(ctx); err != nil {
		return err
	}

	c.Invalidate(ctx, tags...)
	return nil
}

// Forget drops every entry of one scope and closes its subscriptions
func (c *Cache) Forget(scope string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, e := range c.entries {
		if e.scope == scope {
			c.dropLocked(id, e)
		}
	}
	c.metrics.entries.Set(float64(len(c.entries)))
}

// Stats returns entry, subscriber and in-flight counts
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var s Stats
	s.Entries = len(c.entries)
	for _, e := range c.entries {
		s.Subscribers += len(e.subs)
		if e.inFlight {
			s.InFlight++
		}
	}
	return s
}

func (c *Cache) applyRemote(msg Invalidation) {
	if msg.Origin == c.origin || len(msg.Tags) == 0 {
		return
	}
	refetched := c.invalidateLocal(msg.Tags)
	c.metrics.invalidationsTotal.WithLabelValues("remote").Inc()
	c.log.LogInvalidation(context.Background(), "remote", tagStrings(msg.Tags), refetched)
}

func (c *Cache) invalidateLocal(tags []constants.CacheTag) int {
	set := make(map[constants.CacheTag]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	refetched := 0
	for _, e := range c.entries {
		if !e.provides(set) {
			continue
		}
		e.stale = true
		if len(e.subs) == 0 {
			continue
		}
		if e.inFlight {
			e.followUp = true
			continue
		}
		c.startFetchLocked(e)
		refetched++
	}
	c.metrics.refetchesTotal.Add(float64(refetched))
	return refetched
}

// startFetchLocked launches a fetch for e. Caller holds c.mu.
func (c *Cache) startFetchLocked(e *entry) {
	if e.cancel == nil {
		e.ctx, e.cancel = context.WithCancel(c.base)
	}
	e.fetchSeq++
	e.inFlight = true
	e.followUp = false
	c.metrics.inFlight.Inc()

	go c.run(e, e.fetchSeq, e.ctx, e.fetch)
}

func (c *Cache) run(e *entry, seq uint64, ctx context.Context, fetch FetchFunc) {
	start := time.Now()
	data, err := safeFetch(ctx, fetch)
	c.metrics.observeFetch(string(e.name), err, time.Since(start))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics.inFlight.Dec()

	// Superseded, abandoned by its last subscriber, or dropped.
	if seq != e.fetchSeq || ctx.Err() != nil {
		return
	}
	e.inFlight = false

	r := Result{
		Status:    StatusFulfilled,
		Data:      data,
		Version:   e.result.Version + 1,
		UpdatedAt: time.Now(),
	}
	if err != nil {
		r.Status = StatusRejected
		r.Err = err
		r.Data = e.result.Data
	}
	e.result = r
	e.settled = true
	e.stale = false

	if e.followUp {
		e.stale = true
		r.Stale = true
		c.broadcastLocked(e, r)
		if len(e.subs) > 0 {
			c.startFetchLocked(e)
		}
		return
	}
	c.broadcastLocked(e, r)
}

// safeFetch turns a panicking fetch into an error so one bad query cannot
// take the process down from a background goroutine.
func safeFetch(ctx context.Context, fetch FetchFunc) (data interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, fmt.Errorf("%w: %v", ErrFetchPanicked, r)
		}
	}()
	return fetch(ctx)
}

func (c *Cache) broadcastLocked(e *entry, r Result) {
	for _, ch := range e.subs {
		deliver(ch, r)
	}
}

func (c *Cache) unsubscribe(e *entry, subID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, ok := e.subs[subID]
	if !ok {
		return
	}
	delete(e.subs, subID)
	close(ch)
	c.metrics.subscribers.Dec()

	if len(e.subs) > 0 || c.entries[e.id] != e {
		return
	}

	// Nobody is left to see the in-flight fetch.
	if e.cancel != nil {
		e.cancel()
		e.ctx, e.cancel = nil, nil
	}
	if e.inFlight {
		e.inFlight = false
		e.followUp = false
		e.fetchSeq++
		e.stale = true
	}

	if c.keepUnused == 0 {
		delete(c.entries, e.id)
		c.metrics.entries.Set(float64(len(c.entries)))
		return
	}
	e.evict = time.AfterFunc(c.keepUnused, func() { c.evict(e) })
}

func (c *Cache) evict(e *entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cur, ok := c.entries[e.id]; ok && cur == e && len(e.subs) == 0 {
		delete(c.entries, e.id)
		c.metrics.entries.Set(float64(len(c.entries)))
	}
}

func (c *Cache) refetch(e *entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries[e.id] != e || len(e.subs) == 0 {
		return ErrSubscriptionClosed
	}
	if !e.inFlight {
		e.stale = e.settled
		c.startFetchLocked(e)
	}
	return nil
}

// dropLocked removes e and ends its subscriptions. Caller holds c.mu.
func (c *Cache) dropLocked(id string, e *entry) {
	if e.evict != nil {
		e.evict.Stop()
		e.evict = nil
	}
	if e.cancel != nil {
		e.cancel()
		e.ctx, e.cancel = nil, nil
	}
	e.fetchSeq++
	e.inFlight = false
	for subID, ch := range e.subs {
		delete(e.subs, subID)
		close(ch)
		c.metrics.subscribers.Dec()
	}
	delete(c.entries, id)
}

// deliver replaces whatever the subscriber has not read yet with r
func deliver(ch chan Result, r Result) {
	select {
	case ch <- r:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- r:
	default:
	}
}

func tagStrings(tags []constants.CacheTag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}
