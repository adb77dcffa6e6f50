// Package config provides configuration management for the ledger.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	Storage StorageConfig
	Server  ServerConfig
	Debug   bool
}

// StorageConfig represents data file locations and store access limits.
type StorageConfig struct {
	DataDir  string
	DBPath   string
	SeedFile string
	// ExportDir is where the export command writes Beancount files.
	ExportDir string
	// Timeout bounds every store round trip.
	Timeout time.Duration
}

// ServerConfig represents HTTP server configuration.
type ServerConfig struct {
	Addr string
}

const (
	defaultDataDir      = "./data"
	defaultAddr         = ":8080"
	defaultStoreTimeout = 5 * time.Second
)

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	timeout, err := parseDurationEnv("LEDGER_STORE_TIMEOUT", defaultStoreTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_STORE_TIMEOUT: %w", err)
	}

	config := &Config{
		Storage: StorageConfig{
			DataDir:   getEnvOrDefault("LEDGER_DATA_DIR", defaultDataDir),
			DBPath:    os.Getenv("LEDGER_DB_PATH"),
			SeedFile:  os.Getenv("LEDGER_SEED_FILE"),
			ExportDir: os.Getenv("LEDGER_EXPORT_DIR"),
			Timeout:   timeout,
		},
		Server: ServerConfig{
			Addr: getEnvOrDefault("LEDGER_ADDR", defaultAddr),
		},
		Debug: os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// Validate validates the configuration.
// It checks if all required fields are set.
func (c *Config) Validate(required ...[]string) error {
	var missing []string

	for _, path := range required {
		if len(path) < 2 {
			continue
		}

		var value string
		switch path[0] {
		case "storage":
			switch path[1] {
			case "dataDir":
				value = c.Storage.DataDir
			case "dbPath":
				value = c.Storage.DBPath
			case "seedFile":
				value = c.Storage.SeedFile
			case "exportDir":
				value = c.Storage.ExportDir
			case "timeout":
				if c.Storage.Timeout > 0 {
					value = "set"
				}
			}
		case "server":
			if path[1] == "addr" {
				value = c.Server.Addr
			}
		}

		if value == "" {
			missing = append(missing, strings.Join(path, "."))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDurationEnv parses a Go duration from an environment variable.
// Returns defaultValue if the environment variable is not set.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration value for %s: %s", key, value)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("duration for %s must be positive: %s", key, value)
	}

	return parsed, nil
}
