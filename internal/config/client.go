package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends accepted by GOBARBER_STORAGE.
const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// ClientConfig holds settings for the gobarber CLI and any other process that
// keeps a signed-in session on the client side.
type ClientConfig struct {
	// APIURL is the base URL of the GoBarber API.
	APIURL string `env:"GOBARBER_API_URL" envDefault:"http://localhost:3333"`

	// Storage selects where the session is persisted: file, redis or memory.
	Storage string `env:"GOBARBER_STORAGE" envDefault:"file"`

	// StateFile is the session file used by the file backend. Defaults to
	// <user config dir>/gobarber/storage.json.
	StateFile string `env:"GOBARBER_STATE_FILE"`

	// RedisURL is used by the redis backend.
	RedisURL string `env:"GOBARBER_REDIS_URL" envDefault:"redis://localhost:6379"`

	// Namespace prefixes both storage keys (<ns>:user, <ns>:token).
	Namespace string `env:"GOBARBER_NAMESPACE" envDefault:"@Gobarber"`

	// Timeout bounds every API request.
	Timeout time.Duration `env:"GOBARBER_TIMEOUT" envDefault:"10s"`

	LogLevel string `env:"GOBARBER_LOG_LEVEL" envDefault:"warn"`
}

// LoadClient reads the client configuration from the environment.
func LoadClient() (*ClientConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &ClientConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing client config: %w", err)
	}

	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	switch cfg.Storage {
	case StorageFile, StorageRedis, StorageMemory:
	default:
		return nil, fmt.Errorf("GOBARBER_STORAGE must be one of file, redis, memory; got %q", cfg.Storage)
	}

	if cfg.Namespace == "" {
		return nil, fmt.Errorf("GOBARBER_NAMESPACE must not be empty")
	}

	if cfg.Storage == StorageFile && cfg.StateFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolving config dir: %w", err)
		}
		cfg.StateFile = filepath.Join(dir, "gobarber", "storage.json")
	}

	return cfg, nil
}

// SlogLevel maps LogLevel to a slog level.
func (c *ClientConfig) SlogLevel() slog.Level {
	return parseLevel(c.LogLevel, slog.LevelWarn)
}
