// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration. Values come from, in
// increasing precedence: SetDefaults, the config file, LAYERLIFT_* environment
// variables, and command line flags bound through viper.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Capture CaptureConfig `mapstructure:"capture" yaml:"capture"`
	Convert ConvertConfig `mapstructure:"convert" yaml:"convert"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the headless Chrome instances used by live
// page capture.
type BrowserConfig struct {
	Headless   bool     `mapstructure:"headless" yaml:"headless"`
	DisableGPU bool     `mapstructure:"disable_gpu" yaml:"disable_gpu"`
	Args       []string `mapstructure:"args" yaml:"args"`
}

// ViewportConfig is the emulated viewport in CSS pixels.
type ViewportConfig struct {
	Width  float64 `mapstructure:"width" yaml:"width"`
	Height float64 `mapstructure:"height" yaml:"height"`
}

// CaptureConfig tunes how pages are loaded and snapshotted.
type CaptureConfig struct {
	Viewport          ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
	NavigationTimeout time.Duration  `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	SettleDelay       time.Duration  `mapstructure:"settle_delay" yaml:"settle_delay"`
	RateLimit         float64        `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// ConvertConfig tunes capture to layer document conversion.
type ConvertConfig struct {
	Concurrency int  `mapstructure:"concurrency" yaml:"concurrency"`
	Pretty      bool `mapstructure:"pretty" yaml:"pretty"`
}

// StorageConfig holds the document archive connection details.
type StorageConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	URL     string `mapstructure:"url" yaml:"url"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "layerlift")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_gpu", true)

	// -- Capture --
	v.SetDefault("capture.viewport.width", 1280.0)
	v.SetDefault("capture.viewport.height", 800.0)
	v.SetDefault("capture.navigation_timeout", "60s")
	v.SetDefault("capture.settle_delay", "1500ms")
	v.SetDefault("capture.rate_limit", 0.0)

	// -- Convert --
	v.SetDefault("convert.concurrency", 4)
	v.SetDefault("convert.pretty", false)

	// -- Storage --
	v.SetDefault("storage.enabled", false)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data.
	v.BindEnv("storage.url", "LAYERLIFT_STORAGE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Manually load the URL if Unmarshal didn't pick it up.
	if cfg.Storage.Enabled && cfg.Storage.URL == "" {
		cfg.Storage.URL = os.Getenv("LAYERLIFT_STORAGE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Convert.Concurrency <= 0 {
		return fmt.Errorf("convert.concurrency must be a positive integer")
	}
	if err := c.Capture.Validate(); err != nil {
		return fmt.Errorf("capture configuration invalid: %w", err)
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the capture settings.
func (cc *CaptureConfig) Validate() error {
	if cc.Viewport.Width <= 0 || cc.Viewport.Height <= 0 {
		return fmt.Errorf("capture.viewport dimensions must be positive, got %gx%g",
			cc.Viewport.Width, cc.Viewport.Height)
	}
	if cc.NavigationTimeout <= 0 {
		return fmt.Errorf("capture.navigation_timeout must be a positive duration")
	}
	if cc.SettleDelay < 0 {
		return fmt.Errorf("capture.settle_delay cannot be negative")
	}
	if cc.RateLimit < 0 {
		return fmt.Errorf("capture.rate_limit cannot be negative")
	}
	return nil
}

// Validate checks the storage settings.
func (sc *StorageConfig) Validate() error {
	if !sc.Enabled {
		return nil
	}
	if sc.URL == "" {
		return fmt.Errorf("storage URL is required but not found. Ensure LAYERLIFT_STORAGE_URL is set")
	}
	return nil
}
