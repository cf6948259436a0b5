package listview

import (
	"context"
	"errors"
	"sync"
	"time"

	"jobpilot-admin/internal/apiclient"
	"jobpilot-admin/internal/forms"
	"jobpilot-admin/internal/normalize"
	"jobpilot-admin/internal/querycache"
	"jobpilot-admin/internal/roles"
	"jobpilot-admin/pkg/logger"
)

var (
	ErrScreenNotFound = errors.New("screen not found")
	ErrScreenClosed   = errors.New("screen closed")
)

// Error kinds carried by FrameError
const (
	ErrorKindTransport = "transport"
	ErrorKindAPI       = "api"
	ErrorKindParse     = "parse"
	ErrorKindUnknown   = "unknown"
)

// Source turns a list state into the cached query that loads it
type Source func(state State) querycache.Query

// Listing is implemented by normalize.Page for any item type
type Listing interface {
	AnyItems() []interface{}
	TotalCount() int
}

// FrameError describes why the latest load failed
type FrameError struct {
	Kind    string `json:"kind"`
	Status  int    `json:"status,omitempty"`
	Message string `json:"message"`
}

// Frame is everything a list screen renders
type Frame struct {
	Seq         uint64            `json:"seq"`
	Resource    string            `json:"resource"`
	State       State             `json:"state"`
	Status      string            `json:"status"`
	Items       []interface{}     `json:"items"`
	Total       int               `json:"total"`
	Summary     string            `json:"summary"`
	Permissions roles.Permissions `json:"permissions"`
	Stale       bool              `json:"stale"`
	Error       *FrameError       `json:"error,omitempty"`
}

// ScreenConfig configures a Screen
type ScreenConfig struct {
	ID          string
	Scope       string
	Resource    string
	Cache       *querycache.Cache
	Source      Source
	Permissions roles.Permissions
	State       State
	Debounce    time.Duration
	Logger      *logger.Logger
}

// Screen follows one list through state changes and cache invalidations and
// pushes a Frame to its watchers on every result.
type Screen struct {
	id       string
	scope    string
	resource string
	cache    *querycache.Cache
	source   Source
	perms    roles.Permissions
	debounce time.Duration
	log      *logger.Logger

	mu          sync.Mutex
	state       State
	pending     State
	debouncing  bool
	debounceGen uint64
	timer       *time.Timer
	sub         *querycache.Subscription
	subGen      uint64
	seq         uint64
	last        Frame
	watchers    map[uint64]chan Frame
	nextWatcher uint64
	lastUsed    time.Time
	closed      bool
}

// NewScreen creates a screen and subscribes it to its first page
func NewScreen(cfg ScreenConfig) (*Screen, error) {
	if cfg.Cache == nil || cfg.Source == nil {
		return nil, errors.New("screen needs a cache and a source")
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.GetDefault()
	}

	state := cfg.State.Normalized()
	s := &Screen{
		id:       cfg.ID,
		scope:    cfg.Scope,
		resource: cfg.Resource,
		cache:    cfg.Cache,
		source:   cfg.Source,
		perms:    cfg.Permissions,
		debounce: cfg.Debounce,
		log:      cfg.Logger,
		state:    state,
		watchers: make(map[uint64]chan Frame),
		lastUsed: time.Now(),
	}
	s.last = Frame{
		Resource:    s.resource,
		State:       state,
		Status:      querycache.StatusPending.String(),
		Items:       []interface{}{},
		Summary:     Summary(state, 0),
		Permissions: s.perms,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.subscribeLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Screen) ID() string       { return s.id }
func (s *Screen) Scope() string    { return s.scope }
func (s *Screen) Resource() string { return s.resource }

// State returns the state the screen is showing. A debounced search that has
// not fired yet is not included.
func (s *Screen) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Last returns the most recent frame
func (s *Screen) Last() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Watch returns a channel that starts with the latest frame and then gets
// every new one. Unread frames are replaced by newer ones. The channel is
// closed by the returned stop func or when the screen closes.
func (s *Screen) Watch() (<-chan Frame, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Frame, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	s.nextWatcher++
	id := s.nextWatcher
	s.watchers[id] = ch
	s.lastUsed = time.Now()
	ch <- s.last

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if w, ok := s.watchers[id]; ok {
				delete(s.watchers, id)
				close(w)
			}
			s.lastUsed = time.Now()
		})
	}
}

// Update applies a state change. A change that only touches the search text
// is debounced; anything else re-subscribes at once.
func (s *Screen) Update(p Patch) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return State{}, ErrScreenClosed
	}
	s.lastUsed = time.Now()

	base := s.state
	if s.debouncing {
		base = s.pending
	}
	next := base.Apply(p)

	if p.OnlySearch() && s.debounce > 0 {
		s.pending = next
		s.debouncing = true
		s.debounceGen++
		gen := s.debounceGen
		if s.timer != nil {
			s.timer.Stop()
		}
		s.timer = time.AfterFunc(s.debounce, func() { s.flushSearch(gen) })
		return next, nil
	}

	s.cancelDebounceLocked()
	if next.Equal(s.state) {
		return s.state, nil
	}
	s.state = next
	return next, s.subscribeLocked()
}

// Retry refetches the current page
func (s *Screen) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrScreenClosed
	}
	s.lastUsed = time.Now()

	if s.sub != nil {
		err := s.sub.Refetch()
		if err == nil {
			return nil
		}
		if !errors.Is(err, querycache.ErrSubscriptionClosed) {
			return err
		}
	}
	return s.subscribeLocked()
}

// Close unsubscribes and closes every watcher channel
func (s *Screen) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.cancelDebounceLocked()
	if s.sub != nil {
		s.sub.Unsubscribe()
		s.sub = nil
	}
	for id, ch := range s.watchers {
		delete(s.watchers, id)
		close(ch)
	}
}

// idleSince reports when the screen was last used and whether anyone watches it
func (s *Screen) idleSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed, len(s.watchers) > 0
}

func (s *Screen) flushSearch(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.debouncing || gen != s.debounceGen {
		return
	}
	s.debouncing = false
	s.timer = nil
	if s.pending.Equal(s.state) {
		return
	}
	s.state = s.pending
	if err := s.subscribeLocked(); err != nil {
		s.log.Warn("debounced search failed to subscribe", "screen_id", s.id, "error", err.Error())
	}
}

func (s *Screen) cancelDebounceLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.debouncing = false
	s.debounceGen++
}

// subscribeLocked swaps the subscription for one matching s.state.
// Caller holds s.mu.
func (s *Screen) subscribeLocked() error {
	if s.sub != nil {
		s.sub.Unsubscribe()
		s.sub = nil
	}
	s.subGen++
	gen := s.subGen
	state := s.state

	sub, err := s.cache.Subscribe(s.source(state))
	if err != nil {
		s.publishLocked(s.frameFor(state, querycache.Result{Status: querycache.StatusRejected, Err: err}))
		return err
	}
	s.sub = sub

	s.log.DebugWithContext(context.Background(), "screen subscribed", map[string]interface{}{
		"screen_id": s.id,
		"resource":  s.resource,
		"key":       sub.Key(),
		"filters":   state.filterKeys(),
	})

	go s.pump(sub, gen, state)
	return nil
}

func (s *Screen) pump(sub *querycache.Subscription, gen uint64, state State) {
	for r := range sub.Results {
		s.mu.Lock()
		if s.closed || gen != s.subGen {
			s.mu.Unlock()
			return
		}
		s.publishLocked(s.frameFor(state, r))
		s.mu.Unlock()
	}
}

func (s *Screen) publishLocked(f Frame) {
	s.seq++
	f.Seq = s.seq
	s.last = f
	for _, ch := range s.watchers {
		deliverFrame(ch, f)
	}
}

func (s *Screen) frameFor(state State, r querycache.Result) Frame {
	f := Frame{
		Resource:    s.resource,
		State:       state,
		Status:      r.Status.String(),
		Items:       []interface{}{},
		Permissions: s.perms,
		Stale:       r.Stale,
	}

	switch data := r.Data.(type) {
	case nil:
	case Listing:
		f.Items = data.AnyItems()
		f.Total = data.TotalCount()
	default:
		f.Items = []interface{}{data}
		f.Total = 1
	}
	f.Summary = Summary(state, f.Total)

	if r.Err != nil {
		f.Error = classify(r.Err)
	}
	return f
}

func classify(err error) *FrameError {
	fe := &FrameError{Kind: ErrorKindUnknown, Message: forms.UserMessage(err, "")}

	var apiErr *apiclient.APIError
	switch {
	case normalize.IsParseError(err):
		fe.Kind = ErrorKindParse
	case errors.As(err, &apiErr):
		fe.Kind = ErrorKindAPI
		fe.Status = apiErr.Status
	case apiclient.IsTransport(err):
		fe.Kind = ErrorKindTransport
	}
	return fe
}

func deliverFrame(ch chan Frame, f Frame) {
	select {
	case ch <- f:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- f:
	default:
	}
}
