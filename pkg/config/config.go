package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Dataset     DatasetConfig
	Matching    MatchingConfig
	Directory   DirectoryConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Typesense   TypesenseConfig
	Cache       CacheConfig
	Geolocation GeolocationConfig
	Logging     LoggingConfig
	OTEL        OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// DatasetConfig describes where the medication table lives and how it is refreshed.
type DatasetConfig struct {
	// URI is a local path (.csv/.xlsx), an http(s) URL, a postgres:// DSN or the
	// literal "postgres" to reuse the Database section.
	URI            string
	Sheet          string
	Table          string
	Watch          bool
	ReloadInterval time.Duration
	// Cache keeps one parsed snapshot in memory instead of re-reading the
	// source on every query.
	Cache bool
	// Events announces refreshes on Redis and follows other replicas'.
	Events bool
}

// MatchingConfig holds the record matcher policy knobs
type MatchingConfig struct {
	Threshold     int
	CodeMinLength int
	CodeMaxLength int
	SuggestLimit  int
}

// DirectoryConfig points at the facility address book
type DirectoryConfig struct {
	Path    string
	Geocode bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	Enabled bool
	URL     string
	APIKey  string
}

// CacheConfig holds TTLs for the answer and HTTP caches
type CacheConfig struct {
	AnswerTTL  time.Duration
	SuggestTTL time.Duration
}

// GeolocationConfig holds geolocation provider configuration
type GeolocationConfig struct {
	Provider string
	APIKey   string
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Environment string
	Level       string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables. A .env file (or the
// file named by ENV_FILE) is read first when present.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Dataset: DatasetConfig{
			URI:            getEnv("DATASET_URI", "data/medicamentos.csv"),
			Sheet:          getEnv("DATASET_SHEET", ""),
			Table:          getEnv("DATASET_TABLE", "medications"),
			Watch:          getEnvAsBool("DATASET_WATCH", false),
			ReloadInterval: getEnvAsDuration("DATASET_RELOAD_INTERVAL", 0),
			Cache:          getEnvAsBool("DATASET_CACHE", false),
			Events:         getEnvAsBool("DATASET_EVENTS", false),
		},
		Matching: MatchingConfig{
			Threshold:     getEnvAsInt("MATCH_THRESHOLD", 60),
			CodeMinLength: getEnvAsInt("CODE_MIN_LENGTH", 3),
			CodeMaxLength: getEnvAsInt("CODE_MAX_LENGTH", 5),
			SuggestLimit:  getEnvAsInt("SUGGEST_LIMIT", 10),
		},
		Directory: DirectoryConfig{
			Path:    getEnv("DIRECTORY_PATH", "data/enderecos.json"),
			Geocode: getEnvAsBool("DIRECTORY_GEOCODE", false),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "chat_medicamentos"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			Enabled: getEnvAsBool("TYPESENSE_ENABLED", false),
			URL:     getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey:  getEnv("TYPESENSE_API_KEY", "xyz"),
		},
		Cache: CacheConfig{
			AnswerTTL:  getEnvAsDuration("ANSWER_CACHE_TTL", 10*time.Minute),
			SuggestTTL: getEnvAsDuration("SUGGEST_CACHE_TTL", time.Minute),
		},
		Geolocation: GeolocationConfig{
			Provider: getEnv("GEOLOCATION_PROVIDER", "mock"),
			APIKey:   getEnv("GEOLOCATION_API_KEY", ""),
		},
		Logging: LoggingConfig{
			Environment: getEnv("APP_ENV", "development"),
			Level:       getEnv("LOG_LEVEL", "info"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "chat-medicamentos"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Dataset.URI) == "" {
		return fmt.Errorf("DATASET_URI must not be empty")
	}
	if c.Matching.Threshold < 0 || c.Matching.Threshold > 100 {
		return fmt.Errorf("MATCH_THRESHOLD must be within [0,100], got %d", c.Matching.Threshold)
	}
	if c.Matching.CodeMinLength <= 0 || c.Matching.CodeMaxLength < c.Matching.CodeMinLength {
		return fmt.Errorf("invalid code length bounds [%d,%d]", c.Matching.CodeMinLength, c.Matching.CodeMaxLength)
	}
	if c.Matching.SuggestLimit <= 0 {
		return fmt.Errorf("SUGGEST_LIMIT must be positive, got %d", c.Matching.SuggestLimit)
	}
	if c.Dataset.ReloadInterval < 0 {
		return fmt.Errorf("DATASET_RELOAD_INTERVAL must not be negative")
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
