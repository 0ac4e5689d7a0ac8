package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	Analytics AnalyticsConfig
	Mail      MailConfig
	Logging   LoggingConfig
	Metrics   MetricsConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// SecurityConfig holds request screening settings
type SecurityConfig struct {
	// AllowedOrigins is the scheme://host allow-list used for the CSRF
	// origin check and for CORS response headers.
	AllowedOrigins []string
	// MaxBodyBytes bounds the raw request body, checked before JSON parsing.
	MaxBodyBytes int64
	// AnonymizerSecret seeds the daily-rotating IP salt. Must be set in
	// production; the default exists so local runs work out of the box.
	AnonymizerSecret string
}

// RateLimitConfig holds sliding-window admission settings
type RateLimitConfig struct {
	// Backend selects the window store: "memory" (per-instance) or "redis"
	// (shared across instances).
	Backend     string
	MaxRequests int
	Window      time.Duration
	// LimitLeads enables rate limiting on the lead-capture endpoint.
	// The pitch endpoint is always limited.
	LimitLeads bool
}

// AnalyticsConfig holds event recording settings
type AnalyticsConfig struct {
	Enabled        bool
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	// BufferSize bounds the background recorder queue; events beyond it
	// are dropped and counted, never blocking a response.
	BufferSize     int
	PitchRetention time.Duration
	LeadRetention  time.Duration
}

// MailConfig holds lead-notification settings
type MailConfig struct {
	Enabled  bool
	SMTPHost string
	SMTPPort int
	Username string
	Password string
	From     string
	To       string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

// MetricsConfig holds metrics/monitoring settings
type MetricsConfig struct {
	Enabled  bool
	Endpoint string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     time.Duration(getEnvInt("SERVER_READ_TIMEOUT_SEC", 15)) * time.Second,
			WriteTimeout:    time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT_SEC", 15)) * time.Second,
			ShutdownTimeout: time.Duration(getEnvInt("SERVER_SHUTDOWN_TIMEOUT_SEC", 10)) * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins:   getEnvList("ALLOWED_ORIGINS", "https://markokrajceski.com,https://www.markokrajceski.com,http://localhost:3000"),
			MaxBodyBytes:     int64(getEnvInt("MAX_BODY_BYTES", 10*1024)), // 10 KiB default
			AnonymizerSecret: getEnv("ANONYMIZER_SECRET", "dev-only-salt"),
		},
		RateLimit: RateLimitConfig{
			Backend:     getEnv("RATE_LIMIT_BACKEND", "memory"),
			MaxRequests: getEnvInt("RATE_LIMIT_MAX_REQUESTS", 10),
			Window:      time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SEC", 60)) * time.Second,
			LimitLeads:  getEnvBool("RATE_LIMIT_LEADS", false),
		},
		Analytics: AnalyticsConfig{
			Enabled:        getEnvBool("ANALYTICS_ENABLED", true),
			RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword:  getEnv("REDIS_PASSWORD", ""),
			RedisDB:        getEnvInt("REDIS_DB", 0),
			BufferSize:     getEnvInt("ANALYTICS_BUFFER_SIZE", 256),
			PitchRetention: time.Duration(getEnvInt("PITCH_RETENTION_DAYS", 7)) * 24 * time.Hour,
			LeadRetention:  time.Duration(getEnvInt("LEAD_RETENTION_DAYS", 30)) * 24 * time.Hour,
		},
		Mail: MailConfig{
			Enabled:  getEnvBool("MAIL_ENABLED", false),
			SMTPHost: getEnv("SMTP_HOST", ""),
			SMTPPort: getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", "noreply@markokrajceski.com"),
			To:       getEnv("MAIL_TO", "hello@markokrajceski.com"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Metrics: MetricsConfig{
			Enabled:  getEnvBool("METRICS_ENABLED", true),
			Endpoint: getEnv("METRICS_ENDPOINT", "/metrics"),
		},
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable with a fallback default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvList retrieves a comma-separated environment variable as a slice
func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
