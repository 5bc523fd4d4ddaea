package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Environment        string
	ServerPort         int
	LogLevel           string
	CORSAllowedOrigins []string

	// API client
	APIBaseURL string
	APITimeout time.Duration

	// Mock backend
	MockEnabled    bool
	MockDelayScale float64
	UpstreamURL    string

	// Tokens issued by the mock login endpoint
	JWTSecret string
	TokenTTL  time.Duration

	// Durable session storage
	StorageBackend string
	StoragePath    string
	RedisURL       string
	Postgres       PostgresConfig

	// View timings
	ToastDuration        time.Duration
	ReplyCollapseDelay   time.Duration
	SessionCheckInterval time.Duration

	// Tracing
	OTLPEndpoint     string
	TraceSampleRatio float64

	// Dev server login throttling; X-Forwarded-For is only read from TrustedProxies
	LoginRateLimit  int
	LoginRateWindow time.Duration
	TrustedProxies  []string
}

// PostgresConfig describes the postgres storage backend
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// Storage backends
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	apiTimeout, err := time.ParseDuration(getEnv("API_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}

	mockEnabled, err := strconv.ParseBool(getEnv("MOCK_API", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid MOCK_API: %w", err)
	}

	delayScale, err := strconv.ParseFloat(getEnv("MOCK_DELAY_SCALE", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MOCK_DELAY_SCALE: %w", err)
	}
	if delayScale < 0 {
		return nil, fmt.Errorf("invalid MOCK_DELAY_SCALE: must not be negative")
	}

	tokenTTL, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}

	backend := strings.ToLower(getEnv("STORAGE_BACKEND", StorageFile))
	switch backend {
	case StorageMemory, StorageFile, StorageRedis, StoragePostgres:
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND: %q", backend)
	}

	pgPort, err := strconv.Atoi(getEnv("POSTGRES_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid POSTGRES_PORT: %w", err)
	}

	toast, err := time.ParseDuration(getEnv("TOAST_DURATION", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOAST_DURATION: %w", err)
	}

	collapse, err := time.ParseDuration(getEnv("REPLY_COLLAPSE_DELAY", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPLY_COLLAPSE_DELAY: %w", err)
	}

	sessionCheck, err := time.ParseDuration(getEnv("SESSION_CHECK_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_CHECK_INTERVAL: %w", err)
	}

	sampleRatio, err := strconv.ParseFloat(getEnv("OTEL_TRACES_SAMPLE_RATIO", "1"), 64)
	if err != nil || sampleRatio < 0 || sampleRatio > 1 {
		return nil, fmt.Errorf("invalid OTEL_TRACES_SAMPLE_RATIO: must be between 0 and 1")
	}

	loginLimit, err := strconv.Atoi(getEnv("LOGIN_RATE_LIMIT", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_LIMIT: %w", err)
	}

	return &Config{
		Environment:          getEnv("ENVIRONMENT", "development"),
		ServerPort:           port,
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins:   parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:4200", "http://localhost:3000"}),
		APIBaseURL:           strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080"), "/"),
		APITimeout:           apiTimeout,
		MockEnabled:          mockEnabled,
		MockDelayScale:       delayScale,
		UpstreamURL:          getEnv("UPSTREAM_URL", ""),
		JWTSecret:            getEnv("JWT_SECRET", "change-me-in-production"),
		TokenTTL:             tokenTTL,
		StorageBackend:       backend,
		StoragePath:          getEnv("STORAGE_PATH", defaultStoragePath()),
		RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379"),
		ToastDuration:        toast,
		ReplyCollapseDelay:   collapse,
		SessionCheckInterval: sessionCheck,
		OTLPEndpoint:         getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		TraceSampleRatio:     sampleRatio,
		LoginRateLimit:       loginLimit,
		LoginRateWindow:      time.Minute,
		TrustedProxies:       parseCSVEnv("TRUSTED_PROXIES", nil),
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     pgPort,
			User:     getEnv("POSTGRES_USER", "reviewdesk"),
			Password: getEnv("POSTGRES_PASSWORD", "dev"),
			Database: getEnv("POSTGRES_DB", "reviewdesk"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
	}, nil
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "reviewdesk", "storage.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
