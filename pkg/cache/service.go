package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanBatchSize = 100

var ErrCacheMiss = errors.New("cache miss")

// Service stores JSON values and relays Pub/Sub messages over one Redis
// connection.
type Service interface {
	// Get decodes the value at key into dest, or returns ErrCacheMiss
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error

	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) *redis.PubSub

	Ping(ctx context.Context) error
}

type service struct {
	rdb redis.UniversalClient
}

func NewService(client redis.UniversalClient) Service {
	return &service{rdb: client}
}

func (s *service) Get(ctx context.Context, key string, dest interface{}) error {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return ErrCacheMiss
	case err != nil:
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *service) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return wrap("set "+key, s.rdb.Set(ctx, key, raw, ttl).Err())
}

func (s *service) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return wrap("delete", s.rdb.Del(ctx, keys...).Err())
}

// DeletePattern walks the keyspace with SCAN and deletes each matching batch
func (s *service) DeletePattern(ctx context.Context, pattern string) error {
	iter := uint64(0)
	for {
		keys, next, err := s.rdb.Scan(ctx, iter, pattern, scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("scan %s: %w", pattern, err)
		}
		if err := s.Delete(ctx, keys...); err != nil {
			return err
		}
		if next == 0 {
			return nil
		}
		iter = next
	}
}

func (s *service) Publish(ctx context.Context, channel string, payload []byte) error {
	return wrap("publish to "+channel, s.rdb.Publish(ctx, channel, payload).Err())
}

func (s *service) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	return s.rdb.Subscribe(ctx, channel)
}

func (s *service) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
