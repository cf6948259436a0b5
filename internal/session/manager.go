package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"jobpilot-admin/pkg/logger"
)

// Option configures a Manager
type Option func(*Manager)

func WithLogger(l *logger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithRemoteLogout sets the call made to the API on explicit logout
func WithRemoteLogout(fn RemoteLogoutFunc) Option {
	return func(m *Manager) { m.remote = fn }
}

// WithLogoutHook registers a hook run after every logout, explicit or forced
func WithLogoutHook(hook LogoutHook) Option {
	return func(m *Manager) { m.hooks = append(m.hooks, hook) }
}

// Manager maps session ids to stores. A store missing from memory is
// restored from storage at most once, however many requests ask for it
// concurrently.
type Manager struct {
	storage Storage
	log     *logger.Logger
	remote  RemoteLogoutFunc
	hooks   []LogoutHook

	mu     sync.RWMutex
	stores map[string]*Store
	group  singleflight.Group
}

func NewManager(storage Storage, opts ...Option) *Manager {
	m := &Manager{
		storage: storage,
		log:     logger.GetDefault(),
		stores:  make(map[string]*Store),
	}
	for _, opt := range opts {
		opt(m)
	}
	// Logged out stores are dropped so the map only holds live sessions.
	m.hooks = append(m.hooks, func(ctx context.Context, sessionID string) {
		m.Drop(sessionID)
	})
	return m
}

// AddLogoutHook registers a hook after construction. Stores created earlier
// do not see it.
func (m *Manager) AddLogoutHook(hook LogoutHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook)
}

// New creates a fresh unauthenticated session with a random id
func (m *Manager) New() *Store {
	id := uuid.NewString()
	store := m.newStore(id)
	store.restored = true

	m.mu.Lock()
	m.stores[id] = store
	m.mu.Unlock()
	return store
}

// Get returns the store for id, restoring it from storage on first access.
// A session with nothing persisted comes back unauthenticated.
func (m *Manager) Get(ctx context.Context, id string) (*Store, error) {
	m.mu.RLock()
	store, ok := m.stores[id]
	m.mu.RUnlock()
	if ok {
		return store, nil
	}

	v, err, _ := m.group.Do(id, func() (interface{}, error) {
		m.mu.RLock()
		existing, ok := m.stores[id]
		m.mu.RUnlock()
		if ok {
			return existing, nil
		}

		restored := m.newStore(id)
		if err := restored.RestoreFromStorage(ctx); err != nil {
			return nil, err
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		if existing, ok := m.stores[id]; ok {
			return existing, nil
		}
		m.stores[id] = restored
		return restored, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Store), nil
}

// Drop forgets the in-memory store for id without touching storage
func (m *Manager) Drop(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, id)
}

// Len returns the number of stores held in memory
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.stores)
}

func (m *Manager) newStore(id string) *Store {
	m.mu.RLock()
	hooks := append([]LogoutHook(nil), m.hooks...)
	m.mu.RUnlock()
	return newStore(id, m.storage, m.log, m.remote, hooks)
}
