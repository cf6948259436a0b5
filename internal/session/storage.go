package session

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrMalformedLoginResponse = errors.New("malformed login response")
	ErrNotAuthenticated       = errors.New("session is not authenticated")
	ErrSessionNotFound        = errors.New("session not found")
)

// Storage persists session records. Load returns ErrSessionNotFound when
// nothing is stored for the id.
type Storage interface {
	Load(ctx context.Context, sessionID string) (Record, error)
	Save(ctx context.Context, sessionID string, rec Record) error
	Clear(ctx context.Context, sessionID string) error
}

type memoryStorage struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStorage keeps sessions in process memory. Sessions do not survive
// a restart and are not shared between replicas.
func NewMemoryStorage() Storage {
	return &memoryStorage{records: make(map[string]Record)}
}

func (m *memoryStorage) Load(ctx context.Context, sessionID string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return copyRecord(rec), nil
}

func (m *memoryStorage) Save(ctx context.Context, sessionID string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(rec) == 0 {
		delete(m.records, sessionID)
		return nil
	}
	m.records[sessionID] = copyRecord(rec)
	return nil
}

func (m *memoryStorage) Clear(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, sessionID)
	return nil
}

func copyRecord(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
