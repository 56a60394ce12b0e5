package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is looked up in the working directory by Load
const DefaultFileName = ".bazaar.toml"

// Config represents the application configuration
type Config struct {
	Version int             `toml:"version"`
	Search  SearchSettings  `toml:"search"`
	Catalog CatalogSettings `toml:"catalog"`
	Log     LogSettings     `toml:"log"`
	Metrics MetricsSettings `toml:"metrics"`
}

// SearchSettings tune the incremental search coordinator
type SearchSettings struct {
	DebounceMs  int `toml:"debounce_ms"`
	MaxWaitMs   int `toml:"max_wait_ms"` // 0 disables the ceiling
	ResultLimit int `toml:"result_limit"`
}

// CatalogSettings locate the listing database
type CatalogSettings struct {
	Path         string `toml:"path"`
	LatencyMinMs int    `toml:"latency_min_ms"` // artificial provider latency
	LatencyMaxMs int    `toml:"latency_max_ms"`
}

// LogSettings control the log file. The TUI owns the terminal, so logs never go to stderr.
type LogSettings struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsSettings control the Prometheus endpoint. Empty Addr disables it.
type MetricsSettings struct {
	Addr string `toml:"addr"`
}

// Debounce returns the quiescence window
func (s SearchSettings) Debounce() time.Duration {
	return time.Duration(s.DebounceMs) * time.Millisecond
}

// MaxWait returns the debounce ceiling
func (s SearchSettings) MaxWait() time.Duration {
	return time.Duration(s.MaxWaitMs) * time.Millisecond
}

// LatencyRange returns the artificial latency bounds
func (c CatalogSettings) LatencyRange() (time.Duration, time.Duration) {
	return time.Duration(c.LatencyMinMs) * time.Millisecond, time.Duration(c.LatencyMaxMs) * time.Millisecond
}

// Validate rejects settings the application cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.Search.DebounceMs < 0 {
		errs = append(errs, fmt.Errorf("search.debounce_ms must not be negative, got %d", c.Search.DebounceMs))
	}
	if c.Search.MaxWaitMs < 0 {
		errs = append(errs, fmt.Errorf("search.max_wait_ms must not be negative, got %d", c.Search.MaxWaitMs))
	}
	if c.Search.MaxWaitMs > 0 && c.Search.MaxWaitMs < c.Search.DebounceMs {
		errs = append(errs, fmt.Errorf("search.max_wait_ms (%d) must not be shorter than search.debounce_ms (%d)",
			c.Search.MaxWaitMs, c.Search.DebounceMs))
	}
	if c.Search.ResultLimit <= 0 {
		errs = append(errs, fmt.Errorf("search.result_limit must be positive, got %d", c.Search.ResultLimit))
	}
	if c.Catalog.Path == "" {
		errs = append(errs, errors.New("catalog.path must be set"))
	}
	if c.Catalog.LatencyMinMs < 0 || c.Catalog.LatencyMaxMs < c.Catalog.LatencyMinMs {
		errs = append(errs, fmt.Errorf("catalog latency range [%d, %d] is invalid",
			c.Catalog.LatencyMinMs, c.Catalog.LatencyMaxMs))
	}
	return errors.Join(errs...)
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
}

// configService is the concrete implementation
type configService struct {
	filePath string
}

// NewConfigService creates a config service reading .bazaar.toml from the working directory
func NewConfigService() ConfigService {
	return &configService{filePath: DefaultFileName}
}

// Load loads the configuration from the default file, falling back to defaults
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cs.read(cs.filePath)
}

// LoadFromPath loads configuration from a specific path. The file must exist.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	return cs.read(path)
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// read parses path on top of the defaults, so omitted keys keep their default values
func (cs *configService) read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("failed to parse config %s: %s", path, strict.String())
		}
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Search: SearchSettings{
			DebounceMs:  300,
			MaxWaitMs:   0,
			ResultLimit: 50,
		},
		Catalog: CatalogSettings{
			Path: "bazaar.db",
		},
		Log: LogSettings{
			File:  "bazaar.log",
			Level: "info",
		},
	}
}
