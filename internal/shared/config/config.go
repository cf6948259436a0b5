package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"jobpilot-admin/internal/shared/constants"
)

// Config holds all configuration for the admin sync service
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// JWT configuration for the tokens this service hands to the dashboard
	JWT JWTConfig

	// Rate limiting
	RateLimit RateLimitConfig

	// File upload
	Upload UploadConfig

	// Upstream JobPilot API
	Upstream UpstreamConfig

	// Session persistence
	Session SessionConfig

	// Query cache and invalidation fan-out
	QueryCache QueryCacheConfig

	// Kafka (invalidation bus)
	Kafka KafkaConfig

	// Screens
	Screen ScreenConfig

	// Logging
	LogLevel string

	MetricsEnabled bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret       string
	JWTExpiresIn time.Duration
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool          `json:"enabled"`
	WindowDuration  time.Duration `json:"window_duration"`
	DefaultRequests int           `json:"default_requests"`
	AuthRequests    int           `json:"auth_requests"`
	WriteRequests   int           `json:"write_requests"`
	StreamRequests  int           `json:"stream_requests"`
	HealthRequests  int           `json:"health_requests"`
	WhitelistedIPs  []string      `json:"whitelisted_ips"`
}

// UploadConfig holds file upload limits
type UploadConfig struct {
	MaxSize           int64
	UserImageMaxSize  int64
	ProfileImageMax   int64
	CVMaxSize         int64
	LibraryFileMax    int64
	LibraryThumbMax   int64
	MultipartMemLimit int64
}

// UpstreamConfig describes how to reach the JobPilot REST API
type UpstreamConfig struct {
	BaseURL     string
	APIPath     string
	Timeout     time.Duration
	NgrokHeader bool
	RateLimit   float64
	Burst       int
}

// SessionConfig selects and tunes the session storage backend
type SessionConfig struct {
	Store   string // memory, redis or postgres
	SealKey string
	TTL     time.Duration
}

// QueryCacheConfig tunes the tag-invalidated query cache
type QueryCacheConfig struct {
	KeepUnused time.Duration
	Bus        string // local, redis or kafka
	Channel    string
}

// KafkaConfig holds Kafka connection settings for the invalidation bus
type KafkaConfig struct {
	Brokers           []string
	InvalidationTopic string
	GroupID           string
}

// ScreenConfig tunes server-side list screens
type ScreenConfig struct {
	SearchDebounce time.Duration
	IdleTimeout    time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 0), // SSE streams stay open
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		// Database configuration
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "jobpilot_admin"),
			User:     getEnv("DB_USER", "jobpilot"),
			Password: getEnv("DB_PASSWORD", "jobpilot_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		},

		// Redis configuration
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},

		// JWT configuration
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
			JWTExpiresIn: getDurationEnvSeconds("JWT_EXPIRES_IN", 12*time.Hour),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:         getBoolEnv("RATE_LIMIT_ENABLED", false),
			WindowDuration:  getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests: getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 120),
			AuthRequests:    getIntEnv("RATE_LIMIT_AUTH_REQUESTS", 10),
			WriteRequests:   getIntEnv("RATE_LIMIT_WRITE_REQUESTS", 60),
			StreamRequests:  getIntEnv("RATE_LIMIT_STREAM_REQUESTS", 30),
			HealthRequests:  getIntEnv("RATE_LIMIT_HEALTH_REQUESTS", 600),
			WhitelistedIPs:  getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		// File upload
		Upload: UploadConfig{
			MaxSize:           getInt64Env("MAX_UPLOAD_SIZE", 200*1024*1024),
			UserImageMaxSize:  getInt64Env("UPLOAD_USER_IMAGE_MAX", 2*1024*1024),
			ProfileImageMax:   getInt64Env("UPLOAD_PROFILE_IMAGE_MAX", 5*1024*1024),
			CVMaxSize:         getInt64Env("UPLOAD_CV_MAX", 5*1024*1024),
			LibraryFileMax:    getInt64Env("UPLOAD_LIBRARY_FILE_MAX", 200*1024*1024),
			LibraryThumbMax:   getInt64Env("UPLOAD_LIBRARY_THUMB_MAX", 5*1024*1024),
			MultipartMemLimit: getInt64Env("UPLOAD_MULTIPART_MEMORY", 32*1024*1024),
		},

		// Upstream JobPilot API
		Upstream: UpstreamConfig{
			BaseURL:     strings.TrimRight(getEnv("UPSTREAM_BASE_URL", "http://localhost:9090"), "/"),
			APIPath:     getEnv("UPSTREAM_API_PATH", "/api/v1"),
			Timeout:     getDurationEnv("UPSTREAM_TIMEOUT", 30*time.Second),
			NgrokHeader: getBoolEnv("UPSTREAM_NGROK_HEADER", true),
			RateLimit:   getFloatEnv("UPSTREAM_RATE_LIMIT", 0),
			Burst:       getIntEnv("UPSTREAM_BURST", 10),
		},

		// Session persistence
		Session: SessionConfig{
			Store:   getEnv("SESSION_STORE", "memory"),
			SealKey: getEnv("SESSION_SEAL_KEY", ""),
			TTL:     getDurationEnv("SESSION_TTL", constants.TTL_SESSION_DEFAULT),
		},

		// Query cache
		QueryCache: QueryCacheConfig{
			KeepUnused: getDurationEnv("QUERY_KEEP_UNUSED", constants.TTL_QUERY_UNUSED),
			Bus:        getEnv("INVALIDATION_BUS", "local"),
			Channel:    getEnv("INVALIDATION_CHANNEL", constants.DEFAULT_INVALIDATION_CHANNEL),
		},

		// Kafka
		Kafka: KafkaConfig{
			Brokers:           getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			InvalidationTopic: getEnv("KAFKA_INVALIDATION_TOPIC", "jobpilot-cache-invalidations"),
			GroupID:           getEnv("KAFKA_GROUP_ID", ""),
		},

		// Screens
		Screen: ScreenConfig{
			SearchDebounce: getDurationEnv("SCREEN_SEARCH_DEBOUNCE", 300*time.Millisecond),
			IdleTimeout:    getDurationEnv("SCREEN_IDLE_TIMEOUT", constants.TTL_SCREEN_IDLE),
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		MetricsEnabled: getBoolEnv("METRICS_ENABLED", true),
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port
	if cfg.Session.SealKey == "" {
		cfg.Session.SealKey = cfg.JWT.Secret
	}

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// envOr parses key with parse and returns fallback when the variable is
// unset or does not parse.
func envOr[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		return fallback
	}
	return v
}

func getEnv(key, fallback string) string {
	return envOr(key, fallback, func(s string) (string, error) { return s, nil })
}

func getIntEnv(key string, fallback int) int {
	return envOr(key, fallback, strconv.Atoi)
}

func getInt64Env(key string, fallback int64) int64 {
	return envOr(key, fallback, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
}

func getFloatEnv(key string, fallback float64) float64 {
	return envOr(key, fallback, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func getBoolEnv(key string, fallback bool) bool {
	return envOr(key, fallback, strconv.ParseBool)
}

// getDurationEnv accepts Go duration syntax ("300ms", "5m")
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	return envOr(key, fallback, time.ParseDuration)
}

// getDurationEnvSeconds reads a whole number of seconds
func getDurationEnvSeconds(key string, fallback time.Duration) time.Duration {
	return envOr(key, fallback, func(s string) (time.Duration, error) {
		n, err := strconv.Atoi(s)
		return time.Duration(n) * time.Second, err
	})
}

// getStringSliceEnv splits a comma-separated list, dropping blank entries
func getStringSliceEnv(key string, fallback []string) []string {
	return envOr(key, fallback, func(s string) ([]string, error) {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		if len(out) == 0 {
			return nil, errors.New("empty list")
		}
		return out, nil
	})
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}

// GetUpstreamBaseURL returns the upstream root every API path is appended to
func (c *Config) GetUpstreamBaseURL() string {
	return c.Upstream.BaseURL + c.Upstream.APIPath
}

// NeedsPostgres reports whether any configured component persists to Postgres
func (c *Config) NeedsPostgres() bool {
	return c.Session.Store == "postgres"
}

// NeedsRedis reports whether any configured component talks to Redis
func (c *Config) NeedsRedis() bool {
	return c.Session.Store == "redis" || c.QueryCache.Bus == "redis" || c.RateLimit.Enabled
}
