package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobpilot-admin/internal/shared/constants"
	"jobpilot-admin/pkg/cache"
)

type redisStorage struct {
	cache cache.Service
	ttl   time.Duration
}

// NewRedisStorage stores each session field under its own key so the layout
// matches the dashboard's accessToken, refreshToken and user entries.
func NewRedisStorage(c cache.Service, ttl time.Duration) Storage {
	if ttl <= 0 {
		ttl = constants.TTL_SESSION_DEFAULT
	}
	return &redisStorage{cache: c, ttl: ttl}
}

func (r *redisStorage) Load(ctx context.Context, sessionID string) (Record, error) {
	rec := make(Record, len(constants.SessionFields))
	for _, field := range constants.SessionFields {
		var value string
		err := r.cache.Get(ctx, constants.BuildSessionKey(sessionID, field), &value)
		if errors.Is(err, cache.ErrCacheMiss) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading session field %s: %w", field, err)
		}
		rec[field] = value
	}

	if len(rec) == 0 {
		return nil, ErrSessionNotFound
	}
	return rec, nil
}

func (r *redisStorage) Save(ctx context.Context, sessionID string, rec Record) error {
	var stale []string
	for _, field := range constants.SessionFields {
		key := constants.BuildSessionKey(sessionID, field)
		value, ok := rec[field]
		if !ok || value == "" {
			stale = append(stale, key)
			continue
		}
		if err := r.cache.Set(ctx, key, value, r.ttl); err != nil {
			return fmt.Errorf("saving session field %s: %w", field, err)
		}
	}

	if err := r.cache.Delete(ctx, stale...); err != nil {
		return fmt.Errorf("clearing stale session fields: %w", err)
	}
	return nil
}

// Clear removes every key under the session's prefix, including fields an
// older release may have written.
func (r *redisStorage) Clear(ctx context.Context, sessionID string) error {
	return r.cache.DeletePattern(ctx, constants.BuildSessionPattern(sessionID))
}
