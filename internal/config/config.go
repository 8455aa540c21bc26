package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/natefinch/atomic"
	"github.com/pelletier/go-toml/v2"

	"peoplesearch/internal/eventbus"
)

// FileName is the default config file name
const FileName = "peoplesearch.toml"

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the application configuration
type Config struct {
	Version     int            `toml:"version" validate:"eq=1"`
	PeopleFile  string         `toml:"people_file"`
	LogFile     string         `toml:"log_file" validate:"required"`
	LogLevel    string         `toml:"log_level" validate:"oneof=debug info warn error"`
	MetricsFile string         `toml:"metrics_file"`
	Search      SearchSettings `toml:"search"`
}

// SearchSettings holds the search pipeline timings in milliseconds
type SearchSettings struct {
	DebounceMillis        int `toml:"debounce_ms" validate:"gte=0"`
	ProcessingDelayMillis int `toml:"processing_delay_ms" validate:"gte=0"`
	GracePeriodMillis     int `toml:"grace_period_ms" validate:"gte=0"`
}

// Debounce returns the debounce window
func (s SearchSettings) Debounce() time.Duration {
	return time.Duration(s.DebounceMillis) * time.Millisecond
}

// ProcessingDelay returns the simulated lookup latency
func (s SearchSettings) ProcessingDelay() time.Duration {
	return time.Duration(s.ProcessingDelayMillis) * time.Millisecond
}

// GracePeriod returns the resubscription grace window
func (s SearchSettings) GracePeriod() time.Duration {
	return time.Duration(s.GracePeriodMillis) * time.Millisecond
}

// Service handles configuration management
type Service interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Validate(config *Config) error
	Path() string
}

// service is the concrete implementation
type service struct {
	bus      eventbus.EventBus
	filePath string
	validate *validator.Validate
}

// DefaultPath returns the config location under the user config directory
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "peoplesearch", FileName)
}

// NewService creates a config service for path. An empty path means
// DefaultPath. bus may be nil.
func NewService(path string, bus eventbus.EventBus) Service {
	if path == "" {
		path = DefaultPath()
	}
	return &service{
		bus:      bus,
		filePath: path,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Path returns the file Load and Save operate on
func (cs *service) Path() string {
	return cs.filePath
}

// Load loads the configuration from file, returning defaults if it does not exist
func (cs *service) Load() (*Config, error) {
	cfg, err := cs.LoadFromPath(cs.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{Path: cs.filePath})
	}
	return cfg, nil
}

// Save saves the configuration to file
func (cs *service) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// LoadFromPath loads configuration from a specific path.
// Keys missing from the file keep their default values.
func (cs *service) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cs.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path, replacing it atomically
func (cs *service) SaveToPath(config *Config, path string) error {
	if err := cs.Validate(config); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks field constraints
func (cs *service) Validate(cfg *Config) error {
	if err := cs.validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		LogFile:  "peoplesearch.log",
		LogLevel: "info",
		Search: SearchSettings{
			DebounceMillis:        1000,
			ProcessingDelayMillis: 1000,
			GracePeriodMillis:     5000,
		},
	}
}

// Environment variables read by ApplyEnv
const (
	EnvPeopleFile  = "PEOPLESEARCH_PEOPLE_FILE"
	EnvLogFile     = "PEOPLESEARCH_LOG_FILE"
	EnvLogLevel    = "PEOPLESEARCH_LOG_LEVEL"
	EnvMetricsFile = "PEOPLESEARCH_METRICS_FILE"
	EnvDebounce    = "PEOPLESEARCH_DEBOUNCE_MS"
	EnvDelay       = "PEOPLESEARCH_PROCESSING_DELAY_MS"
	EnvGrace       = "PEOPLESEARCH_GRACE_PERIOD_MS"
)

// ApplyEnv overrides cfg with any PEOPLESEARCH_* variables set in the
// environment, using lookup (os.LookupEnv in production)
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvPeopleFile:  &cfg.PeopleFile,
		EnvLogFile:     &cfg.LogFile,
		EnvLogLevel:    &cfg.LogLevel,
		EnvMetricsFile: &cfg.MetricsFile,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		EnvDebounce: &cfg.Search.DebounceMillis,
		EnvDelay:    &cfg.Search.ProcessingDelayMillis,
		EnvGrace:    &cfg.Search.GracePeriodMillis,
	}
	for key, dst := range ints {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, v)
		}
		*dst = n
	}
	return nil
}
