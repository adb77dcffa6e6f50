package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"LEDGER_DATA_DIR", "LEDGER_DB_PATH", "LEDGER_SEED_FILE", "LEDGER_EXPORT_DIR", "LEDGER_ADDR", "LEDGER_STORE_TIMEOUT", "DEBUG"} {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./data", cfg.Storage.DataDir)
	assert.Empty(t, cfg.Storage.DBPath)
	assert.Empty(t, cfg.Storage.ExportDir)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Storage.Timeout)
	assert.False(t, cfg.Debug)
}

func TestLoadFromEnvFile(t *testing.T) {
	for _, key := range []string{"LEDGER_DATA_DIR", "LEDGER_EXPORT_DIR", "LEDGER_ADDR", "LEDGER_STORE_TIMEOUT", "DEBUG"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	envFile := filepath.Join(t.TempDir(), "test.env")
	content := "LEDGER_DATA_DIR=/srv/ledger\nLEDGER_ADDR=:9090\nLEDGER_STORE_TIMEOUT=250ms\nLEDGER_EXPORT_DIR=/srv/books\nDEBUG=true\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "/srv/ledger", cfg.Storage.DataDir)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/srv/books", cfg.Storage.ExportDir)
	assert.Equal(t, 250*time.Millisecond, cfg.Storage.Timeout)
	assert.True(t, cfg.Debug)
}

func TestLoadMissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoadInvalidTimeout(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not a duration", "soon"},
		{"zero", "0s"},
		{"negative", "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LEDGER_STORE_TIMEOUT", tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Storage: StorageConfig{DataDir: "./data", Timeout: time.Second},
		Server:  ServerConfig{Addr: ":8080"},
	}

	assert.NoError(t, cfg.Validate([]string{"storage", "dataDir"}, []string{"server", "addr"}, []string{"storage", "timeout"}))

	err := cfg.Validate([]string{"storage", "dbPath"}, []string{"storage", "seedFile"}, []string{"storage", "exportDir"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.dbPath")
	assert.Contains(t, err.Error(), "storage.seedFile")
	assert.Contains(t, err.Error(), "storage.exportDir")
}
