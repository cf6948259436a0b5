package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "/api/v1", cfg.GetAPIBasePath())
	assert.Equal(t, ":8080", cfg.GetServerAddress())
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, "local", cfg.QueryCache.Bus)
	assert.True(t, cfg.Upstream.NgrokHeader)
	assert.Equal(t, int64(2*1024*1024), cfg.Upload.UserImageMaxSize)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.CVMaxSize)
	assert.Equal(t, cfg.JWT.Secret, cfg.Session.SealKey)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "https://jobpilot.example.com/")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("INVALIDATION_BUS", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("QUERY_KEEP_UNUSED", "5s")
	t.Setenv("UPSTREAM_NGROK_HEADER", "false")
	t.Setenv("UPSTREAM_RATE_LIMIT", "12.5")

	cfg := Load()

	assert.Equal(t, "https://jobpilot.example.com/api/v1", cfg.GetUpstreamBaseURL())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Second, cfg.QueryCache.KeepUnused)
	assert.False(t, cfg.Upstream.NgrokHeader)
	assert.InDelta(t, 12.5, cfg.Upstream.RateLimit, 0.0001)
	assert.True(t, cfg.NeedsRedis())
	assert.False(t, cfg.NeedsPostgres())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("SCREEN_SEARCH_DEBOUNCE", "soon")

	cfg := Load()

	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 300*time.Millisecond, cfg.Screen.SearchDebounce)
}
