package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig() *Config {
	return &Config{
		Enabled:         true,
		WindowDuration:  time.Minute,
		DefaultRequests: 3,
		AuthRequests:    1,
		WriteRequests:   2,
		StreamRequests:  1,
		HealthRequests:  100,
	}
}

func expectWindow(mock redismock.ClientMock, key string, limit int) *redismock.ExpectedCmd {
	return mock.ExpectEval(slidingWindowScript, []string{key},
		fixedNow.Add(-time.Minute).UnixMilli(),
		fixedNow.UnixMilli(),
		limit,
		60,
		strconv.FormatInt(fixedNow.UnixNano(), 10),
	)
}

func newTestLimiter(cfg *Config) (*RateLimiter, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	rl := NewRateLimiter(db, cfg)
	rl.now = func() time.Time { return fixedNow }
	return rl, mock
}

func TestGetRateLimitType(t *testing.T) {
	tests := []struct {
		method, path string
		want         RateLimitType
	}{
		{http.MethodGet, "/health", RateLimitTypeHealth},
		{http.MethodGet, "/metrics", RateLimitTypeHealth},
		{http.MethodPost, "/api/v1/auth/login", RateLimitTypeAuth},
		{http.MethodGet, "/api/v1/screens/:id/events", RateLimitTypeStream},
		{http.MethodPatch, "/api/v1/job/update-status/:id", RateLimitTypeWrite},
		{http.MethodDelete, "/api/v1/faq/delete/:id", RateLimitTypeWrite},
		{http.MethodGet, "/api/v1/user/get-all", RateLimitTypeDefault},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, getRateLimitType(tt.method, tt.path))
		})
	}
}

func TestIsAllowed_DisabledSkipsRedis(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	rl, mock := newTestLimiter(cfg)

	res, err := rl.IsAllowed(context.Background(), "10.0.0.1", RateLimitTypeWrite)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 2, res.Limit)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsAllowed_Whitelisted(t *testing.T) {
	cfg := testConfig()
	cfg.WhitelistedIPs = []string{"10.0.0.9"}
	rl, mock := newTestLimiter(cfg)

	res, err := rl.IsAllowed(context.Background(), "10.0.0.9", RateLimitTypeAuth)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsAllowed_SlidingWindow(t *testing.T) {
	rl, mock := newTestLimiter(testConfig())
	ctx := context.Background()
	key := "jobpilot:ratelimit:10.0.0.1:default"

	expectWindow(mock, key, 3).SetVal([]interface{}{int64(1), int64(2)})
	expectWindow(mock, key, 3).SetVal([]interface{}{int64(4), int64(0)})

	res, err := rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeDefault)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 2, res.Remaining)
	assert.Equal(t, fixedNow.Add(time.Minute).Unix(), res.ResetTime)

	res, err = rl.IsAllowed(ctx, "10.0.0.1", RateLimitTypeDefault)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsAllowed_RedisError(t *testing.T) {
	rl, mock := newTestLimiter(testConfig())
	expectWindow(mock, "jobpilot:ratelimit:10.0.0.1:auth", 1).SetErr(assert.AnError)

	_, err := rl.IsAllowed(context.Background(), "10.0.0.1", RateLimitTypeAuth)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestMiddleware_RejectsOverBudget(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl, mock := newTestLimiter(testConfig())
	key := "jobpilot:ratelimit:192.0.2.1:auth"
	expectWindow(mock, key, 1).SetVal([]interface{}{int64(1), int64(0)})
	expectWindow(mock, key, 1).SetVal([]interface{}{int64(2), int64(0)})

	engine := gin.New()
	engine.Use(Middleware(rl))
	engine.POST("/api/v1/auth/login", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	first := httptest.NewRecorder()
	engine.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := httptest.NewRecorder()
	engine.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "Too many requests")
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	require.NoError(t, mock.ExpectationsWereMet())
}
