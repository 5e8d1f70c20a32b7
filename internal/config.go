// Package internal holds application-level configuration and logging
// for the SafaStep admin console.
package internal

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Port     int
	LogLevel string

	// Platform API
	APIBaseURL string

	// Session cookie keys (hex-encoded). The hash key authenticates the
	// identity cookie; the block key encrypts it.
	SessionHashKey  []byte
	SessionBlockKey []byte

	// How long a verified token is trusted before the console re-checks
	// it against the verify endpoint.
	VerifyCacheTTL time.Duration

	// Listing page size, shared by all resource screens.
	PageSize int

	// Local audit trail
	AuditDBPath string

	// Template directory (dev hot-reload reads from disk)
	TemplatesDir string

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string
	MetricsPassword string
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8000"),

		VerifyCacheTTL: getEnvDuration("VERIFY_CACHE_TTL", 1*time.Minute),
		PageSize:       getEnvInt("PAGE_SIZE", 10),

		AuditDBPath:  getEnv("AUDIT_DB_PATH", "./data/audit.db"),
		TemplatesDir: getEnv("TEMPLATES_DIR", "web/templates"),

		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	// Required cookie keys
	hashKey, err := getEnvHexKey("SESSION_HASH_KEY", 32, 64)
	if err != nil {
		return nil, err
	}
	cfg.SessionHashKey = hashKey

	blockKey, err := getEnvHexKey("SESSION_BLOCK_KEY", 16, 32)
	if err != nil {
		return nil, err
	}
	cfg.SessionBlockKey = blockKey

	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("PAGE_SIZE must be positive, got: %d", cfg.PageSize)
	}

	return cfg, nil
}

// IsSecure reports whether cookies should carry the Secure flag.
func (c *Config) IsSecure() bool {
	return c.Env != "development"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvHexKey decodes a required hex-encoded key and validates its length.
func getEnvHexKey(key string, minLen, maxLen int) ([]byte, error) {
	value := os.Getenv(key)
	if value == "" {
		return nil, fmt.Errorf("%s is required", key)
	}
	decoded, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%s must be hex-encoded: %w", key, err)
	}
	if len(decoded) < minLen || len(decoded) > maxLen {
		return nil, fmt.Errorf("%s must decode to between %d and %d bytes, got %d", key, minLen, maxLen, len(decoded))
	}
	return decoded, nil
}
