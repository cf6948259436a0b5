package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jobpilot-admin/internal/session"
	"jobpilot-admin/internal/shared/utils/response"
	"jobpilot-admin/pkg/logger"
)

const (
	ContextSessionKey   = "session"
	ContextClaimsKey    = "session_claims"
	ContextRequestIDKey = "request_id"
	RequestIDHeader     = "X-Request-ID"
)

// RequestID tags every request with an id, reusing the caller's when sent
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// SessionAuth requires a valid service token whose session is still
// authenticated. The session is restored from storage on first use.
func SessionAuth(tokens *TokenIssuer, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Authorization header is required", nil, nil)
			c.Abort()
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			logger.GetDefault().LogAuthFailure(c.Request.Context(), "invalid service token", c.ClientIP())
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid or expired token", nil, nil)
			c.Abort()
			return
		}

		store, err := sessions.Get(c.Request.Context(), claims.SessionID)
		if err != nil || !store.IsAuthenticated() {
			logger.GetDefault().LogAuthFailure(c.Request.Context(), "session not authenticated", c.ClientIP())
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Session expired, please log in again", nil, nil)
			c.Abort()
			return
		}

		c.Set(ContextClaimsKey, claims)
		c.Set(ContextSessionKey, store)
		c.Next()
	}
}

// OptionalSession attaches the session when a valid token is sent and lets
// the request through either way.
func OptionalSession(tokens *TokenIssuer, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			c.Next()
			return
		}

		if store, err := sessions.Get(c.Request.Context(), claims.SessionID); err == nil {
			c.Set(ContextClaimsKey, claims)
			c.Set(ContextSessionKey, store)
		}
		c.Next()
	}
}

// SessionFrom returns the session SessionAuth or OptionalSession attached
func SessionFrom(c *gin.Context) (*session.Store, bool) {
	v, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil, false
	}
	store, ok := v.(*session.Store)
	return store, ok && store != nil
}

// ClaimsFrom returns the verified service token claims
func ClaimsFrom(c *gin.Context) (*SessionClaims, bool) {
	v, ok := c.Get(ContextClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*SessionClaims)
	return claims, ok
}

// RequestIDFrom returns the id RequestID assigned
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(ContextRequestIDKey)
}

// LoggerFrom returns the default logger tagged with request and session ids
func LoggerFrom(c *gin.Context) *logger.Logger {
	l := logger.GetDefault()
	if id := RequestIDFrom(c); id != "" {
		l = l.WithRequestID(id)
	}
	if store, ok := SessionFrom(c); ok {
		l = l.WithSessionID(store.ID())
	}
	return l
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
