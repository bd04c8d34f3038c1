// Package config loads monedero.yaml and the environment overrides that sit
// on top of it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	// Time zone names resolve even where the host has no zoneinfo.
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/monedero-app/monedero/internal/logging"
)

// FileName is the config file inside the data home.
const FileName = "monedero.yaml"

// Environment variables that override the file.
const (
	EnvHome     = "MONEDERO_HOME"
	EnvBackend  = "MONEDERO_BACKEND"
	EnvTimezone = "MONEDERO_TIMEZONE"
	EnvLogLevel = "MONEDERO_LOG_LEVEL"
)

// Backend selects the key-value store implementation.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
)

// Config represents the top-level monedero.yaml configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Display DisplayConfig `yaml:"display"`
	Log     LogConfig     `yaml:"log"`
	History HistoryConfig `yaml:"history"`
}

// StorageConfig selects where data lives.
type StorageConfig struct {
	Backend Backend `yaml:"backend"`
	// Path is relative to the data home unless absolute. Empty means the
	// backend's default: "data" for file, "monedero.db" for sqlite.
	Path string `yaml:"path,omitempty"`
}

// DisplayConfig controls how amounts and dates are shown.
type DisplayConfig struct {
	Currency string `yaml:"currency"`
	Timezone string `yaml:"timezone"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level string `yaml:"level"`
}

// HistoryConfig controls git snapshots of the data home.
type HistoryConfig struct {
	// AutoSnapshot commits the data home after every change.
	AutoSnapshot bool   `yaml:"auto_snapshot"`
	AuthorName   string `yaml:"author_name"`
	AuthorEmail  string `yaml:"author_email"`
}

// Default returns a Config with sensible defaults for a new data home.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{Backend: BackendFile},
		Display: DisplayConfig{Currency: "Lps", Timezone: "UTC"},
		Log:     LogConfig{Level: "warn"},
		History: HistoryConfig{
			AuthorName:  "monedero",
			AuthorEmail: "monedero@localhost",
		},
	}
}

// Load reads a monedero.yaml file from disk. Fields missing from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// LoadHome reads home/monedero.yaml, falling back to Default when the file
// does not exist, then applies environment overrides and validates.
func LoadHome(home string) (*Config, error) {
	cfg, err := Load(filepath.Join(home, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given .env files into the
// process environment. Missing files are skipped; variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvBackend)); v != "" {
		c.Storage.Backend = Backend(strings.ToLower(v))
	}
	if v := strings.TrimSpace(getenv(EnvTimezone)); v != "" {
		c.Display.Timezone = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	case "memory":
		errs = append(errs, fmt.Errorf("storage.backend: memory keeps nothing between commands (want file or sqlite)"))
	default:
		errs = append(errs, fmt.Errorf("storage.backend: unknown backend %q (want file or sqlite)", c.Storage.Backend))
	}

	if _, err := time.LoadLocation(c.Display.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("display.timezone: %w", err))
	}

	if c.History.AutoSnapshot && strings.TrimSpace(c.History.AuthorEmail) == "" {
		errs = append(errs, fmt.Errorf("history.author_email: required when auto_snapshot is on"))
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}

// Location returns the display time zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// StorePath resolves the storage path against home.
func (c *Config) StorePath(home string) string {
	p := c.Storage.Path
	if p == "" {
		switch c.Storage.Backend {
		case BackendSQLite:
			p = "monedero.db"
		default:
			p = "data"
		}
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(home, p)
}

// ResolveHome picks the data home: the explicit flag value, then
// MONEDERO_HOME, then ~/.monedero.
func ResolveHome(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvHome); env != "" {
		return filepath.Abs(env)
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(userHome, ".monedero"), nil
}
