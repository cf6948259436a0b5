package constants

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Redis key layout
// Pattern: jobpilot:{module}:{identifier}:{field?}

// ================== TTL DURATIONS ==================

const (
	TTL_SESSION_DEFAULT = 7 * 24 * time.Hour // persisted dashboard session
	TTL_QUERY_UNUSED    = 60 * time.Second   // cached result with no subscriber left
	TTL_SCREEN_IDLE     = 10 * time.Minute   // screen with no open event stream
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "jobpilot"
)

// ================== SESSION MODULE ==================

// Persisted session fields. The names match what the dashboard kept in local storage.
const (
	SESSION_FIELD_ACCESS_TOKEN  = "accessToken"
	SESSION_FIELD_REFRESH_TOKEN = "refreshToken"
	SESSION_FIELD_USER          = "user"
)

// SessionFields lists every persisted session field
var SessionFields = []string{
	SESSION_FIELD_ACCESS_TOKEN,
	SESSION_FIELD_REFRESH_TOKEN,
	SESSION_FIELD_USER,
}

const (
	CACHE_KEY_SESSION = CACHE_PREFIX + ":session:" // + session-id + :field
)

// ================== RATE LIMIT MODULE ==================

const (
	CACHE_KEY_RATE_LIMIT = CACHE_PREFIX + ":ratelimit:" // + ip + :type
)

// ================== INVALIDATION BUS ==================

const (
	DEFAULT_INVALIDATION_CHANNEL = CACHE_PREFIX + ":invalidations"
)

// ================== CACHE INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_SESSION = CACHE_PREFIX + ":session:" // + session-id + :*
)

// ================== KEY BUILDERS ==================

// BuildSessionKey returns the Redis key holding one persisted session field
func BuildSessionKey(sessionID, field string) string {
	return fmt.Sprintf("%s%s:%s", CACHE_KEY_SESSION, sessionID, field)
}

// BuildSessionPattern matches every persisted field of one session
func BuildSessionPattern(sessionID string) string {
	return PATTERN_INVALIDATE_SESSION + sessionID + ":*"
}

// BuildRateLimitKey returns the sliding-window key for a client and limit type
func BuildRateLimitKey(clientIP, limitType string) string {
	return fmt.Sprintf("%s%s:%s", CACHE_KEY_RATE_LIMIT, clientIP, limitType)
}

// BuildQueryKey returns a stable query-cache key: the query name plus its
// non-empty parameters in sorted order.
func BuildQueryKey(name QueryName, params url.Values) string {
	if len(params) == 0 {
		return string(name)
	}

	keys := make([]string, 0, len(params))
	for k, v := range params {
		if len(v) == 0 || (len(v) == 1 && v[0] == "") {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return string(name)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(string(name))
	b.WriteByte('?')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		vals := append([]string(nil), params[k]...)
		sort.Strings(vals)
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(strings.Join(vals, ",")))
	}
	return b.String()
}
