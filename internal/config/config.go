// Package config assembles the application's configuration from defaults,
// an optional TOML file, environment variables and CLI flags, in that
// order of increasing precedence, using Viper the way the teacher project
// used Cobra for flags.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every tunable of a single emulator run.
type Config struct {
	ClockHz    float64           `mapstructure:"clock_hz" validate:"gte=60,lte=100000"`
	Scale      int               `mapstructure:"scale" validate:"gte=1,lte=64"`
	Fullscreen bool              `mapstructure:"fullscreen"`
	Verbose    bool              `mapstructure:"verbose"`
	Keymap     map[string]string `mapstructure:"keymap"`
}

// ConfigError wraps a failure to load or validate configuration, surfaced
// before any VM thread begins.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config: %s", e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }

const (
	defaultClockHz = 500
	defaultScale   = 16
)

func defaults() Config {
	return Config{
		ClockHz: defaultClockHz,
		Scale:   defaultScale,
	}
}

// Load merges defaults, an optional TOML file at path (ignored if empty or
// missing), CHIP8_-prefixed environment variables, and flags, then
// validates the result.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	def := defaults()
	v.SetDefault("clock_hz", def.ClockHz)
	v.SetDefault("scale", def.Scale)
	v.SetDefault("fullscreen", def.Fullscreen)
	v.SetDefault("verbose", def.Verbose)

	v.SetEnvPrefix("CHIP8")
	v.AutomaticEnv()

	if path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			v.SetConfigFile(path)
			v.SetConfigType("toml")

			if err := v.ReadInConfig(); err != nil {
				return Config{}, &ConfigError{Err: fmt.Errorf("reading %q: %w", path, err)}
			}
		}
	}

	if flags != nil {
		// Bind each flag under its mapstructure key explicitly rather than
		// v.BindPFlags(flags), which registers flags under their literal
		// (dashed) names: Viper does not normalize "-" to "_", so a flag
		// named "clock-hz" would never satisfy the "clock_hz" struct tag.
		for key, flagName := range map[string]string{
			"clock_hz":   "clock-hz",
			"scale":      "scale",
			"fullscreen": "fs",
			"verbose":    "verbose",
		} {
			flag := flags.Lookup(flagName)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, &ConfigError{Err: fmt.Errorf("binding flag %q: %w", flagName, err)}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, &ConfigError{Err: fmt.Errorf("unmarshal: %w", err)}
	}

	if err := validate(cfg); err != nil {
		return Config{}, &ConfigError{Err: err}
	}

	return cfg, nil
}

var validatorInstance = validator.New()

func validate(cfg Config) error {
	if err := validatorInstance.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}
