package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort  string `validate:"required,numeric"`
	ServerHost  string
	CORSOrigins []string

	// Database configuration
	DBDriver   string `validate:"required,oneof=postgres sqlite"`
	SQLitePath string `validate:"required_if=DBDriver sqlite"`
	DBHost     string `validate:"required_if=DBDriver postgres"`
	DBPort     string `validate:"required_if=DBDriver postgres"`
	DBUser     string `validate:"required_if=DBDriver postgres"`
	DBPassword string
	DBName     string `validate:"required_if=DBDriver postgres"`
	DBSSLMode  string `validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`

	// Redis configuration. Redis is optional; without it caching and the
	// suggestion rate limit are disabled.
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int `validate:"gte=0,lte=15"`
	RedisURL      string

	// DeepSeek is optional; without a key suggestions are synthesized offline.
	DeepSeekAPIKey string
	DeepSeekAPIURL string `validate:"omitempty,url"`

	// VisionAPIURL is the base URL of the photo and pantry analysis functions.
	VisionAPIURL string `validate:"omitempty,url"`

	// Optional S3 object holding the catalog seed.
	AWSRegion       string
	CatalogS3Bucket string
	CatalogS3Key    string `validate:"required_with=CatalogS3Bucket"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json console"`

	// SuggestionRateLimit is the number of suggestion calls a user may make
	// per minute.
	SuggestionRateLimit int `validate:"gte=1"`
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{Environment: env}

	// Load configuration based on environment
	switch env {
	case CI:
		loadCIConfig(cfg)
	case Development, Test:
		if err := loadDevConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load development configuration: %w", err)
		}
	case Production:
		loadProdConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadCIConfig loads configuration for CI environment from environment variables only
func loadCIConfig(cfg *Config) {
	loadCommon(cfg, os.Getenv)
	cfg.DBPassword = firstNonEmpty(os.Getenv("TEST_DB_PASSWORD"), os.Getenv("DB_PASSWORD"))
	cfg.RedisPassword = firstNonEmpty(os.Getenv("TEST_REDIS_PASSWORD"), os.Getenv("REDIS_PASSWORD"))
	cfg.RedisURL = firstNonEmpty(os.Getenv("TEST_REDIS_URL"), os.Getenv("REDIS_URL"))
}

// loadDevConfig loads a local .env file when present, then reads environment
// variables with Docker secrets taking precedence
func loadDevConfig(cfg *Config) error {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	loadCommon(cfg, secretOrEnv)
	return nil
}

// loadProdConfig loads configuration for production environment; secrets are
// read from the Docker secrets directory
func loadProdConfig(cfg *Config) {
	loadCommon(cfg, secretOrEnv)
	cfg.DBPassword = readSecret("db_password")
	cfg.RedisPassword = readSecret("redis_password")
	cfg.DeepSeekAPIKey = readSecret("deepseek_api_key")
}

// loadCommon fills every setting through lookup, which receives the
// environment variable name.
func loadCommon(cfg *Config, lookup func(string) string) {
	get := func(name, def string) string {
		return firstNonEmpty(lookup(name), def)
	}

	cfg.ServerPort = get("SERVER_PORT", "8080")
	cfg.ServerHost = get("SERVER_HOST", "0.0.0.0")
	cfg.CORSOrigins = splitList(get("CORS_ORIGINS", "http://localhost:5173"))

	cfg.DBDriver = strings.ToLower(get("DB_DRIVER", "postgres"))
	cfg.SQLitePath = get("SQLITE_PATH", "mealplanner.db")
	cfg.DBHost = get("DB_HOST", "localhost")
	cfg.DBPort = get("DB_PORT", "5432")
	cfg.DBUser = get("DB_USER", "postgres")
	cfg.DBPassword = lookup("DB_PASSWORD")
	cfg.DBName = get("DB_NAME", "mealplanner")
	cfg.DBSSLMode = get("DB_SSL_MODE", "disable")

	cfg.RedisHost = lookup("REDIS_HOST")
	cfg.RedisPort = get("REDIS_PORT", "6379")
	cfg.RedisPassword = lookup("REDIS_PASSWORD")
	cfg.RedisURL = lookup("REDIS_URL")
	cfg.RedisDB = atoi(lookup("REDIS_DB"), 0)

	cfg.DeepSeekAPIKey = lookup("DEEPSEEK_API_KEY")
	if cfg.DeepSeekAPIKey == "" {
		if path := lookup("DEEPSEEK_API_KEY_FILE"); path != "" {
			if data, err := os.ReadFile(path); err == nil {
				cfg.DeepSeekAPIKey = strings.TrimSpace(string(data))
			}
		}
	}
	cfg.DeepSeekAPIURL = lookup("DEEPSEEK_API_URL")
	cfg.VisionAPIURL = lookup("VISION_API_URL")

	cfg.AWSRegion = get("AWS_REGION", "us-east-1")
	cfg.CatalogS3Bucket = lookup("CATALOG_S3_BUCKET")
	cfg.CatalogS3Key = lookup("CATALOG_S3_KEY")

	cfg.LogLevel = strings.ToLower(get("LOG_LEVEL", "info"))
	cfg.LogFormat = strings.ToLower(get("LOG_FORMAT", "json"))
	cfg.SuggestionRateLimit = atoi(lookup("SUGGESTION_RATE_LIMIT"), 10)
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	sslMode := c.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, sslMode)
}

// RedisEnabled reports whether a Redis server is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// secretOrEnv maps an environment variable name to its Docker secret file
// (lower-cased) and falls back to the environment.
func secretOrEnv(name string) string {
	if v := readSecret(strings.ToLower(name)); v != "" {
		return v
	}
	return os.Getenv(name)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func atoi(s string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return n
	}
	return def
}
