// config.go loads integration settings from a TOML file.

package duckbug

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/lixenwraith/config"
)

// configPrefix is the TOML table holding duckbug settings.
const configPrefix = "duckbug."

// Config holds file-backed integration settings. The core never validates
// Endpoint; an empty endpoint yields a malformed destination.
type Config struct {
	// Endpoint is the base URL of the remote collector.
	Endpoint string `toml:"endpoint"`

	// Console channels to intercept
	InterceptLog   bool `toml:"intercept_log"`
	InterceptWarn  bool `toml:"intercept_warn"`
	InterceptError bool `toml:"intercept_error"`

	// TimeoutMs bounds a single remote delivery.
	TimeoutMs int64 `toml:"timeout_ms"`

	// QueueSize is the async buffer in front of the remote sink.
	QueueSize int64 `toml:"queue_size"`

	// Verbose enables frame and context output on the stderr sink.
	Verbose bool `toml:"verbose"`
}

var defaultConfig = Config{
	Endpoint:       "",
	InterceptLog:   false,
	InterceptWarn:  true,
	InterceptError: true,
	TimeoutMs:      5000,
	QueueSize:      1000,
	Verbose:        false,
}

// DefaultConfig returns a copy of the default configuration.
func DefaultConfig() *Config {
	copied := defaultConfig
	return &copied
}

// NewConfigFromFile loads configuration from the [duckbug] table of a TOML
// file. A missing file yields the defaults.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	loader := config.New()
	if err := loader.RegisterStruct(configPrefix, *cfg); err != nil {
		return nil, fmt.Errorf("register config struct: %w", err)
	}

	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmt.Errorf("load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, cfg); err != nil {
		return nil, fmt.Errorf("extract config values: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks numeric settings.
func (c *Config) Validate() error {
	if c.TimeoutMs <= 0 {
		return fmt.Errorf("duckbug: timeout_ms must be positive: %d", c.TimeoutMs)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("duckbug: queue_size must be positive: %d", c.QueueSize)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	copied := *c
	return &copied
}

// InterceptorConfig returns the console channels selected by c.
func (c *Config) InterceptorConfig() InterceptorConfig {
	return InterceptorConfig{
		LogReports: LogReports{
			Log:   c.InterceptLog,
			Warn:  c.InterceptWarn,
			Error: c.InterceptError,
		},
	}
}

// extractConfig copies every toml-tagged field found by the loader into cfg.
func extractConfig(loader *config.Config, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("toml")
		if tag == "" {
			continue
		}

		val, found := loader.Get(configPrefix + tag)
		if !found {
			continue
		}
		if err := setField(v.Field(i), val); err != nil {
			return fmt.Errorf("field %s: %w", tag, err)
		}
	}
	return nil
}

func setField(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(s)
	case reflect.Int64:
		switch n := value.(type) {
		case int64:
			field.SetInt(n)
		case int:
			field.SetInt(int64(n))
		case float64:
			field.SetInt(int64(n))
		default:
			return fmt.Errorf("expected integer, got %T", value)
		}
	case reflect.Bool:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}
	return nil
}
