package listview

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobpilot-admin/pkg/logger"
)

// Registry owns the open screens of every session
type Registry struct {
	idle time.Duration
	log  *logger.Logger

	mu      sync.Mutex
	screens map[string]*Screen
}

// NewRegistry creates a registry. Screens nobody has watched or updated for
// idle are closed by Sweep; zero disables sweeping.
func NewRegistry(idle time.Duration, log *logger.Logger) *Registry {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Registry{idle: idle, log: log, screens: make(map[string]*Screen)}
}

// Open creates and registers a screen. An empty cfg.ID gets a fresh uuid.
func (r *Registry) Open(cfg ScreenConfig) (*Screen, error) {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.Logger == nil {
		cfg.Logger = r.log
	}

	s, err := NewScreen(cfg)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if old, ok := r.screens[s.id]; ok {
		defer old.Close()
	}
	r.screens[s.id] = s
	r.mu.Unlock()
	return s, nil
}

// Get returns the screen with id if it belongs to scope
func (r *Registry) Get(id, scope string) (*Screen, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.screens[id]
	if !ok || s.scope != scope {
		return nil, ErrScreenNotFound
	}
	return s, nil
}

// Close closes and forgets one screen
func (r *Registry) Close(id, scope string) error {
	r.mu.Lock()
	s, ok := r.screens[id]
	if !ok || s.scope != scope {
		r.mu.Unlock()
		return ErrScreenNotFound
	}
	delete(r.screens, id)
	r.mu.Unlock()

	s.Close()
	return nil
}

// DropScope closes every screen of one session
func (r *Registry) DropScope(scope string) int {
	r.mu.Lock()
	var dropped []*Screen
	for id, s := range r.screens {
		if s.scope == scope {
			dropped = append(dropped, s)
			delete(r.screens, id)
		}
	}
	r.mu.Unlock()

	for _, s := range dropped {
		s.Close()
	}
	return len(dropped)
}

// Sweep closes screens that are unwatched and idle since before now-idle
func (r *Registry) Sweep(now time.Time) int {
	if r.idle <= 0 {
		return 0
	}

	r.mu.Lock()
	var expired []*Screen
	for id, s := range r.screens {
		lastUsed, watched := s.idleSince()
		if !watched && now.Sub(lastUsed) >= r.idle {
			expired = append(expired, s)
			delete(r.screens, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if r.idle <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := r.Sweep(now); n > 0 {
				r.log.Info("closed idle screens", "count", n)
			}
		}
	}
}

// CloseAll closes every screen, used on shutdown
func (r *Registry) CloseAll() {
	r.mu.Lock()
	screens := r.screens
	r.screens = make(map[string]*Screen)
	r.mu.Unlock()

	for _, s := range screens {
		s.Close()
	}
}

// Len returns the number of open screens
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.screens)
}
