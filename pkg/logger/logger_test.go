package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture() (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewWithHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &out))
	return out
}

func TestGetLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, getLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, getLogLevel("warning"))
	assert.Equal(t, slog.LevelInfo, getLogLevel("loud"))
}

func TestErrorWithContext(t *testing.T) {
	l, buf := capture()
	l.ErrorWithContext(context.Background(), "refetch failed", errors.New("boom"), map[string]interface{}{"query": "Users"})

	line := lastLine(t, buf)
	assert.Equal(t, "refetch failed", line["msg"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "Users", line["query"])
}

func TestLogHTTPRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l, buf := capture()

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Header(requestIDHeader, "req-1")
		start := time.Now()
		c.Next()
		l.LogHTTPRequest(c, time.Since(start))
	})
	engine.GET("/api/v1/report/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/report/7", nil))

	line := lastLine(t, buf)
	assert.Equal(t, "INFO", line["level"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "/api/v1/report/:id", line["route"])
	assert.EqualValues(t, http.StatusNotFound, line["status"])
}
