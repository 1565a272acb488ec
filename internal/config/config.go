// Package config resolves studio settings from defaults, an optional config
// file, ASCIISTUDIO_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lehigh-university-libraries/asciistudio/internal/glyph"
	"github.com/lehigh-university-libraries/asciistudio/internal/images"
)

const EnvPrefix = "ASCIISTUDIO"

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Log    LogConfig
	Render RenderConfig
	Load   LoadConfig
	Limits LimitsConfig
	Fetch  FetchConfig
	Prompt string
}

type LogConfig struct {
	Level    string
	Encoding string
}

type RenderConfig struct {
	Ramp     string
	Resample string
}

type LoadConfig struct {
	AutoResize bool
}

// LimitsConfig bounds the width and height accepted by the set command.
type LimitsConfig struct {
	MinDimension int
	MaxDimension int
}

type FetchConfig struct {
	Timeout  time.Duration
	MaxBytes int64
}

// flagKeys maps persistent flag names to config keys.
var flagKeys = map[string]string{
	"log-level":    "log.level",
	"log-encoding": "log.encoding",
	"ramp":         "render.ramp",
	"resample":     "render.resample",
	"auto-resize":  "load.auto_resize",
}

// New returns a viper instance with defaults and environment lookup set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("render.ramp", glyph.StandardRamp)
	v.SetDefault("render.resample", "cubic")
	v.SetDefault("load.auto_resize", true)
	v.SetDefault("limits.min_dimension", 10)
	v.SetDefault("limits.max_dimension", 5000)
	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.max_bytes", images.DefaultMaxBytes)
	v.SetDefault("prompt", "AAS: ")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds the known flags in fs to their config keys. Flags that are
// not defined in fs are skipped.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads cfgFile when given and decodes the result.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}

	cfg := &Config{
		Log: LogConfig{
			Level:    v.GetString("log.level"),
			Encoding: v.GetString("log.encoding"),
		},
		Render: RenderConfig{
			Ramp:     v.GetString("render.ramp"),
			Resample: v.GetString("render.resample"),
		},
		Load: LoadConfig{
			AutoResize: v.GetBool("load.auto_resize"),
		},
		Limits: LimitsConfig{
			MinDimension: v.GetInt("limits.min_dimension"),
			MaxDimension: v.GetInt("limits.max_dimension"),
		},
		Fetch: FetchConfig{
			Timeout:  v.GetDuration("fetch.timeout"),
			MaxBytes: v.GetInt64("fetch.max_bytes"),
		},
		Prompt: v.GetString("prompt"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := glyph.NewRamp(c.Render.Ramp); err != nil {
		return fmt.Errorf("%w: render.ramp: %w", ErrInvalidConfig, err)
	}
	if _, err := images.ParseResampling(c.Render.Resample); err != nil {
		return fmt.Errorf("%w: render.resample: %w", ErrInvalidConfig, err)
	}
	if c.Limits.MinDimension < 1 || c.Limits.MaxDimension < c.Limits.MinDimension {
		return fmt.Errorf("%w: limits must satisfy 1 <= min_dimension <= max_dimension, got %d..%d",
			ErrInvalidConfig, c.Limits.MinDimension, c.Limits.MaxDimension)
	}
	if c.Fetch.Timeout <= 0 || c.Fetch.MaxBytes <= 0 {
		return fmt.Errorf("%w: fetch.timeout and fetch.max_bytes must be positive", ErrInvalidConfig)
	}
	return nil
}

// GlyphRamp returns the configured ramp. Validate has already checked it.
func (c *Config) GlyphRamp() glyph.Ramp {
	ramp, err := glyph.NewRamp(c.Render.Ramp)
	if err != nil {
		return glyph.Standard
	}
	return ramp
}
