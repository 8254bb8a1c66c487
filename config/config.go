package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultPort = "8080"

// Config is the process configuration, read once from the environment at startup.
type Config struct {
	Port           string
	Production     bool
	AllowedOrigins []string
	SkipMigrations bool

	Database DatabaseConfig
	Redis    RedisConfig

	RateLimitEnabled     bool
	RateLimitMaxRequests int64
	RateLimitWindow      time.Duration

	GCSBucket         string
	PubSubProjectID   string
	BackupEventsTopic string
}

type DatabaseConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string

	// pool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

func init() {
	// Load env from .env
	godotenv.Load()
}

func LoadConfig() *Config {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	return &Config{
		Port:           port,
		Production:     strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production"),
		AllowedOrigins: splitAndTrim(os.Getenv("CORS_ALLOWED_ORIGINS")),
		SkipMigrations: boolFromEnv("SKIP_MIGRATIONS"),
		Database: DatabaseConfig{
			User:            os.Getenv("DB_USER"),
			Password:        os.Getenv("DB_PASSWORD"),
			Host:            os.Getenv("DB_HOST"),
			Port:            os.Getenv("DB_PORT"),
			Name:            os.Getenv("DB_NAME"),
			MaxOpenConns:    intFromEnv("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    intFromEnv("DB_MAX_IDLE_CONNS", 10),
			ConnMaxIdleTime: time.Duration(intFromEnv("DB_CONN_MAX_IDLE_TIME_SECONDS", 30)) * time.Second,
			ConnMaxLifetime: time.Duration(intFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second,
			ConnectTimeout:  time.Duration(intFromEnv("DB_CONNECT_TIMEOUT_SECONDS", 2)) * time.Second,
		},
		Redis: RedisConfig{
			Address:  strings.TrimSpace(os.Getenv("REDIS_ADDRESS")),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       intFromEnv("REDIS_DB", 0),
		},
		RateLimitEnabled:     boolFromEnv("RATE_LIMIT_ENABLED"),
		RateLimitMaxRequests: int64(intFromEnv("RATE_LIMIT_MAX_REQUESTS", 600)),
		RateLimitWindow:      time.Duration(intFromEnv("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		GCSBucket:            strings.TrimSpace(os.Getenv("GCS_BUCKET")),
		PubSubProjectID:      getPubSubProjectID(),
		BackupEventsTopic:    strings.TrimSpace(os.Getenv("BACKUP_EVENTS_TOPIC")),
	}
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolFromEnv(key string) bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv(key)), "true")
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// retryDelay is the capped exponential backoff used by every dependency connect loop.
func retryDelay(attempt int) time.Duration {
	sleep := time.Second * time.Duration(1<<min(attempt, 5))
	if sleep > 30*time.Second {
		sleep = 30 * time.Second
	}
	return sleep
}
