// Package config loads runtime settings from an optional YAML file and
// ATTENDANCE_* environment variables. Environment values win.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendText   = "text"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Load modes. LoadModeReseed resets each restored student to a single fresh
// attendance entry; LoadModeRestore keeps the persisted count and history.
const (
	LoadModeReseed  = "reseed"
	LoadModeRestore = "restore"
)

const (
	defaultBcryptCost = 12
	defaultSessionTTL = 8 * time.Hour
	minSecretLength   = 32
)

var defaultPaths = map[string]string{
	BackendText:   "attendance_data.txt",
	BackendSQLite: "attendance.db",
	BackendBadger: "attendance.badger",
}

type Config struct {
	Admin struct {
		Password      string        `yaml:"password"`
		PasswordHash  string        `yaml:"password_hash"`
		BcryptCost    int           `yaml:"bcrypt_cost"`
		SessionSecret string        `yaml:"session_secret"`
		SessionTTL    time.Duration `yaml:"session_ttl"`
	} `yaml:"admin"`

	Storage struct {
		Backend  string `yaml:"backend"`
		Path     string `yaml:"path"`
		LoadMode string `yaml:"load_mode"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
}

// Default returns a configuration with every optional field filled in.
// The admin password is left empty and must be supplied.
func Default() *Config {
	cfg := &Config{}
	cfg.Admin.BcryptCost = defaultBcryptCost
	cfg.Admin.SessionTTL = defaultSessionTTL
	cfg.Storage.Backend = BackendText
	cfg.Storage.LoadMode = LoadModeReseed
	cfg.Logging.Level = "info"
	return cfg
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is non-empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = defaultPaths[cfg.Storage.Backend]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Admin.Password = envOrDefault("ATTENDANCE_ADMIN_PASSWORD", c.Admin.Password)
	c.Admin.PasswordHash = envOrDefault("ATTENDANCE_ADMIN_PASSWORD_HASH", c.Admin.PasswordHash)
	c.Admin.SessionSecret = envOrDefault("ATTENDANCE_SESSION_SECRET", c.Admin.SessionSecret)
	c.Storage.Backend = envOrDefault("ATTENDANCE_STORAGE_BACKEND", c.Storage.Backend)
	c.Storage.Path = envOrDefault("ATTENDANCE_STORAGE_PATH", c.Storage.Path)
	c.Storage.LoadMode = envOrDefault("ATTENDANCE_LOAD_MODE", c.Storage.LoadMode)
	c.Logging.Level = envOrDefault("ATTENDANCE_LOG_LEVEL", c.Logging.Level)
	c.Logging.File = envOrDefault("ATTENDANCE_LOG_FILE", c.Logging.File)

	if v := os.Getenv("ATTENDANCE_BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ATTENDANCE_BCRYPT_COST: %w", err)
		}
		c.Admin.BcryptCost = cost
	}
	if v := os.Getenv("ATTENDANCE_SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ATTENDANCE_SESSION_TTL: %w", err)
		}
		c.Admin.SessionTTL = ttl
	}
	return nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Admin.Password == "" && c.Admin.PasswordHash == "" {
		return errors.New("admin password is required (ATTENDANCE_ADMIN_PASSWORD or ATTENDANCE_ADMIN_PASSWORD_HASH)")
	}
	if c.Admin.BcryptCost < 4 || c.Admin.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost must be between 4 and 14, got %d", c.Admin.BcryptCost)
	}
	if c.Admin.SessionSecret != "" && len(c.Admin.SessionSecret) < minSecretLength {
		return fmt.Errorf("session secret must be at least %d characters", minSecretLength)
	}
	if c.Admin.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.Admin.SessionTTL)
	}

	if _, ok := defaultPaths[c.Storage.Backend]; !ok {
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Path == "" {
		return errors.New("storage path is required")
	}
	switch c.Storage.LoadMode {
	case LoadModeReseed, LoadModeRestore:
	default:
		return fmt.Errorf("unknown load mode %q", c.Storage.LoadMode)
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Logging.Level ("debug", "info", "warn", "error").
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.Logging.Level, err)
	}
	return level, nil
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
