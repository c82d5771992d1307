// Package config reads carelog settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds the process settings.
type Config struct {
	DBPath      string
	Store       string
	PostgresDSN string
	RedisAddr   string
	SessionTTL  time.Duration
	HTTPAddr    string
	ChatURL     string
	ChatTimeout time.Duration
	CurrentWeek int64
	CatalogPath string
	SessionIdle time.Duration
}

// Load reads envFile when it exists (an empty name means ".env") and then
// the environment. Variables already set in the environment win over the
// file.
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables and validates it.
func FromEnv() (Config, error) {
	cfg := Config{
		DBPath:      getenvDefault("CARELOG_DB", "carelog.db"),
		Store:       getenvDefault("CARELOG_STORE", StoreSQLite),
		PostgresDSN: os.Getenv("CARELOG_PG_DSN"),
		RedisAddr:   os.Getenv("CARELOG_REDIS_ADDR"),
		SessionTTL:  time.Duration(getenvIntDefault("CARELOG_SESSION_TTL_SECONDS", 86400)) * time.Second,
		HTTPAddr:    getenvDefault("CARELOG_HTTP_ADDR", ":8080"),
		ChatURL:     os.Getenv("CARELOG_CHAT_URL"),
		ChatTimeout: time.Duration(getenvIntDefault("CARELOG_CHAT_TIMEOUT_SECONDS", 10)) * time.Second,
		CurrentWeek: getenvInt64Default("CARELOG_CURRENT_WEEK", 1),
		CatalogPath: os.Getenv("CARELOG_CATALOG"),
		SessionIdle: time.Duration(getenvIntDefault("CARELOG_SESSION_IDLE_SECONDS", 1800)) * time.Second,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("CARELOG_DB is required when CARELOG_STORE=sqlite")
		}
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("CARELOG_PG_DSN is required when CARELOG_STORE=postgres")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("CARELOG_STORE must be sqlite, postgres or memory, got %q", c.Store)
	}
	if c.CurrentWeek < 1 {
		return fmt.Errorf("CARELOG_CURRENT_WEEK must be at least 1, got %d", c.CurrentWeek)
	}
	return nil
}

func getenvDefault(key, val string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return val
}

func getenvIntDefault(key string, val int) int {
	v := os.Getenv(key)
	if v == "" {
		return val
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return val
	}
	return n
}

func getenvInt64Default(key string, val int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return val
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return val
	}
	return n
}
