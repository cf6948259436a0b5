package ratelimit

import (
	"net/http"
	"strconv"
	"strings"

	"jobpilot-admin/internal/shared/utils/response"
	"jobpilot-admin/pkg/logger"

	"github.com/gin-gonic/gin"
)

var healthPrefixes = []string{"/health", "/ping", "/status", "/metrics"}

// Middleware rejects requests over their class's budget with 429. Clients
// are keyed by gin's ClientIP, which honours the engine's trusted proxies.
func Middleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		clientIP := c.ClientIP()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		result, err := rateLimiter.IsAllowed(ctx, clientIP, getRateLimitType(c.Request.Method, route))
		if err != nil {
			logger.GetDefault().ErrorWithContext(ctx, "rate limit check failed", err,
				map[string]interface{}{"ip": clientIP, "route": route})
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Rate limit check failed", nil, nil)
			c.Abort()
			return
		}

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime, 10))

		if result.Allowed {
			c.Next()
			return
		}

		logger.GetDefault().LogRateLimitExceeded(ctx, clientIP, route)
		h.Set("Retry-After", strconv.FormatInt(int64(rateLimiter.config.WindowDuration.Seconds()), 10))
		response.RespondJSON(c, "error", http.StatusTooManyRequests, "Too many requests, please slow down", nil,
			map[string]interface{}{"limit": result.Limit, "reset_time": result.ResetTime})
		c.Abort()
	}
}

func getRateLimitType(method, route string) RateLimitType {
	for _, p := range healthPrefixes {
		if strings.HasPrefix(route, p) {
			return RateLimitTypeHealth
		}
	}
	if strings.Contains(route, "/auth/") {
		return RateLimitTypeAuth
	}
	// screen event streams hold a connection open
	if strings.HasSuffix(route, "/events") {
		return RateLimitTypeStream
	}

	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return RateLimitTypeDefault
	default:
		return RateLimitTypeWrite
	}
}
