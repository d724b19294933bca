package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/fystack/wt-reader/pkg/common/enum"
)

var validate = validator.New()

type Config struct {
	Engine      enum.EngineType `yaml:"engine"       validate:"required,oneof=wiredtiger badger pebble bolt memory"`
	ErrorPrefix string          `yaml:"error_prefix"`
	Open        OpenConfig      `yaml:"open"`
	Log         LogConfig       `yaml:"log"`
	Output      OutputConfig    `yaml:"output"`
}

type OpenConfig struct {
	// Retries is the number of extra attempts while the store is locked.
	Retries       int           `yaml:"retries"        validate:"min=0,max=100"`
	RetryInterval time.Duration `yaml:"retry_interval" validate:"min=0"`
	LockTimeout   time.Duration `yaml:"lock_timeout"   validate:"min=0"`
}

type LogConfig struct {
	Level      string `yaml:"level"       validate:"oneof=debug info warn error"`
	TimeFormat string `yaml:"time_format"`
	NoColor    bool   `yaml:"no_color"`
}

type OutputConfig struct {
	Format       enum.OutputFormat `yaml:"format"        validate:"oneof=text json"`
	PreviewBytes int               `yaml:"preview_bytes" validate:"min=0,max=4096"`
}

func Default() Config {
	return Config{
		Engine:      enum.EngineWiredTiger,
		ErrorPrefix: "wt-reader: ",
		Open: OpenConfig{
			Retries:       0,
			RetryInterval: 200 * time.Millisecond,
			LockTimeout:   time.Second,
		},
		Log: LogConfig{
			Level:      "info",
			TimeFormat: time.TimeOnly,
		},
		Output: OutputConfig{
			Format: enum.OutputText,
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills fields an explicit empty value in the file cleared.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Engine == "" {
		c.Engine = d.Engine
	}
	if c.Open.RetryInterval == 0 {
		c.Open.RetryInterval = d.Open.RetryInterval
	}
	if c.Open.LockTimeout == 0 {
		c.Open.LockTimeout = d.Open.LockTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.TimeFormat == "" {
		c.Log.TimeFormat = d.Log.TimeFormat
	}
	if c.Output.Format == "" {
		c.Output.Format = d.Output.Format
	}
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
