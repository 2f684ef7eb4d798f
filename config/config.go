// Package config reads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Addr            string
	Store           string
	SQLitePath      string
	DatabaseURL     string
	StrictLifecycle bool
	BulkWorkers     int
	LogLevel        string
	LogFormat       string
	AllowedOrigins  []string
	Environment     string
}

// Load reads a .env file when one exists, then the environment.
// Variables already set in the environment win over the file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "config: ignoring .env: %v\n", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() Config {
	return Config{
		Addr:            getEnv("PAYROLL_ADDR", ":8080"),
		Store:           strings.ToLower(getEnv("PAYROLL_STORE", StoreSQLite)),
		SQLitePath:      getEnv("PAYROLL_SQLITE_PATH", "payroll.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		StrictLifecycle: getEnvBool("PAYROLL_STRICT_LIFECYCLE", false),
		BulkWorkers:     getEnvInt("PAYROLL_BULK_WORKERS", 4),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		AllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		Environment:     getEnv("APP_ENV", "development"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("PAYROLL_SQLITE_PATH is required for the sqlite store")
		}
	case StorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case StoreMemory:
		if c.Environment == "production" {
			return fmt.Errorf("the memory store is not allowed in production")
		}
	default:
		return fmt.Errorf("PAYROLL_STORE must be one of sqlite, postgres, memory (got %q)", c.Store)
	}
	if c.BulkWorkers <= 0 {
		return fmt.Errorf("PAYROLL_BULK_WORKERS must be positive")
	}
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("PAYROLL_ADDR is required")
	}
	return nil
}
