// Package config loads msgidl.yaml. Every key can be overridden by an
// MSGIDL_ environment variable, with dots replaced by underscores
// (MSGIDL_CACHE_BACKEND for cache.backend).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/rclgo/msgidl/internal/compiler/cache"
)

// FileName is the config file looked up in the working directory and the
// package root
const FileName = "msgidl.yaml"

// Config represents the msgidl configuration
type Config struct {
	Package string        `mapstructure:"package" yaml:"package,omitempty"`
	Workers int           `mapstructure:"workers" yaml:"workers"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Watch   WatchConfig   `mapstructure:"watch" yaml:"watch"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// OutputConfig selects how results are printed
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
}

// WatchConfig configures the watch command
type WatchConfig struct {
	Debounce  time.Duration `mapstructure:"debounce" yaml:"debounce"`
	Addr      string        `mapstructure:"addr" yaml:"addr,omitempty"`
	Profiling bool          `mapstructure:"profiling" yaml:"profiling,omitempty"`

	// AuthSecret signs bearer tokens for the status server; empty leaves
	// it open
	AuthSecret string `mapstructure:"auth_secret" yaml:"auth_secret,omitempty"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// CacheConfig selects the parse cache backing store
type CacheConfig struct {
	Backend string        `mapstructure:"backend" yaml:"backend"`
	DSN     string        `mapstructure:"dsn" yaml:"dsn,omitempty"`
	Prefix  string        `mapstructure:"prefix" yaml:"prefix,omitempty"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl,omitempty"`
}

// MetricsConfig enables the Prometheus registry exposed by watch
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Prefix  string `mapstructure:"prefix" yaml:"prefix,omitempty"`
}

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Workers: 4,
		Output:  OutputConfig{Format: FormatText},
		Watch:   WatchConfig{Debounce: 100 * time.Millisecond},
		Log:     LogConfig{Level: "info"},
		Cache:   CacheConfig{Backend: cache.BackendMemory, Prefix: "msgidl"},
		Metrics: MetricsConfig{Prefix: "msgidl"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("package", d.Package)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("watch.addr", d.Watch.Addr)
	v.SetDefault("watch.profiling", d.Watch.Profiling)
	v.SetDefault("watch.auth_secret", d.Watch.AuthSecret)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.dsn", d.Cache.DSN)
	v.SetDefault("cache.prefix", d.Cache.Prefix)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.prefix", d.Metrics.Prefix)
}

// Load reads the configuration. An explicit path must exist; otherwise
// msgidl.yaml is looked up in the working directory and a missing file
// means defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("MSGIDL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks enumerated values and ranges
func (c *Config) Validate() error {
	switch c.Output.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("output.format must be one of text, json, yaml; got %q", c.Output.Format)
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}

	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	switch c.Cache.Backend {
	case cache.BackendNone, cache.BackendMemory:
	case cache.BackendSQLite, cache.BackendPostgres, cache.BackendRedis:
		if c.Cache.DSN == "" {
			return fmt.Errorf("cache.dsn is required for the %s backend", c.Cache.Backend)
		}
	default:
		return fmt.Errorf("unknown cache.backend %q", c.Cache.Backend)
	}

	return nil
}

// CacheOptions converts the cache section for cache.OpenStore
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend: c.Cache.Backend,
		DSN:     c.Cache.DSN,
		Prefix:  c.Cache.Prefix,
		TTL:     c.Cache.TTL,
	}
}

// Write saves cfg as YAML at path
func Write(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	v := viper.New()
	v.Set("package", cfg.Package)
	v.Set("workers", cfg.Workers)
	v.Set("output.format", cfg.Output.Format)
	v.Set("watch.debounce", cfg.Watch.Debounce.String())
	if cfg.Watch.Addr != "" {
		v.Set("watch.addr", cfg.Watch.Addr)
	}
	v.Set("log.level", cfg.Log.Level)
	v.Set("cache.backend", cfg.Cache.Backend)
	if cfg.Cache.DSN != "" {
		v.Set("cache.dsn", cfg.Cache.DSN)
	}
	v.Set("metrics.enabled", cfg.Metrics.Enabled)

	v.SetConfigType("yaml")
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// FindPackageRoot walks up from dir to the nearest directory holding a
// package.xml
func FindPackageRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "package.xml")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a ROS package (no package.xml found)")
		}
		dir = parent
	}
}
