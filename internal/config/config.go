package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string
	DatabaseURL    string
	DatabasePath   string
	MigrationsPath string

	// Sync engine
	SyncInterval   time.Duration
	SyncPageSize   int
	SyncMaxLexemes int // 0 = fetch everything

	// Task selection
	RecencyWindow time.Duration

	// API
	AdminToken string
	JWTSecret  string

	// Alerting (Amazon SES)
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AlertEmail   string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is honored when present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		DatabaseType:   getEnv("DATABASE_TYPE", "sqlite"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DatabasePath:   getEnv("DB_PATH", "./sprachtrainer.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		SyncInterval:   getDuration("SYNC_INTERVAL", 15*time.Minute),
		SyncPageSize:   getInt("SYNC_PAGE_SIZE", 500),
		SyncMaxLexemes: getInt("SYNC_MAX_LEXEMES", 0),
		RecencyWindow:  getDuration("RECENCY_WINDOW", 6*time.Hour),
		AdminToken:     getEnv("ADMIN_TOKEN", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		AWSRegion:      getEnv("AWS_REGION", "eu-central-1"),
		SESFromEmail:   getEnv("SES_FROM_EMAIL", ""),
		SESFromName:    getEnv("SES_FROM_NAME", "Sprachtrainer"),
		AlertEmail:     getEnv("ALERT_EMAIL", ""),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration reads a duration environment variable (e.g. "15m", "6h")
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid %s value %q, using default %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

// getInt reads an integer environment variable
func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid %s value %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
