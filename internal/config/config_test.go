package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"CARELOG_DB", "CARELOG_STORE", "CARELOG_PG_DSN", "CARELOG_REDIS_ADDR",
	"CARELOG_SESSION_TTL_SECONDS", "CARELOG_HTTP_ADDR", "CARELOG_CHAT_URL",
	"CARELOG_CHAT_TIMEOUT_SECONDS", "CARELOG_CURRENT_WEEK", "CARELOG_CATALOG",
	"CARELOG_SESSION_IDLE_SECONDS",
}

// clearEnv blanks every carelog variable for the test. godotenv skips keys
// that are already present, so they are unset rather than emptied.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, Config{
		DBPath:      "carelog.db",
		Store:       StoreSQLite,
		SessionTTL:  24 * time.Hour,
		HTTPAddr:    ":8080",
		ChatTimeout: 10 * time.Second,
		CurrentWeek: 1,
		SessionIdle: 30 * time.Minute,
	}, cfg)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CARELOG_STORE", "postgres")
	t.Setenv("CARELOG_PG_DSN", "postgres://localhost/carelog")
	t.Setenv("CARELOG_CURRENT_WEEK", "12")
	t.Setenv("CARELOG_CHAT_TIMEOUT_SECONDS", "3")
	t.Setenv("CARELOG_SESSION_TTL_SECONDS", "not-a-number")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, int64(12), cfg.CurrentWeek)
	assert.Equal(t, 3*time.Second, cfg.ChatTimeout)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL, "unparseable values fall back to the default")
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"postgres without dsn", map[string]string{"CARELOG_STORE": "postgres"}, "CARELOG_PG_DSN is required"},
		{"unknown store", map[string]string{"CARELOG_STORE": "mongo"}, `got "mongo"`},
		{"week zero", map[string]string{"CARELOG_CURRENT_WEEK": "0"}, "CARELOG_CURRENT_WEEK must be at least 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CARELOG_STORE=memory\nCARELOG_HTTP_ADDR=:9999\n"), 0o600))
	t.Setenv("CARELOG_HTTP_ADDR", ":7000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, ":7000", cfg.HTTPAddr, "environment wins over the file")
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.Store)
}
