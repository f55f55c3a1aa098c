package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Settings holds the workflow defaults read from adaptive.yaml and
// ADAPTIVE_* environment variables.
type Settings struct {
	Cascade CascadeSettings `mapstructure:"cascade"`
	Crop    CropSettings    `mapstructure:"crop"`
	Log     LogSettings     `mapstructure:"log"`
}

// CascadeSettings are the defaults for the cascade command.
type CascadeSettings struct {
	MarginMM float64 `mapstructure:"margin_mm"`
	Prefix   string  `mapstructure:"prefix"`
	Suffix   string  `mapstructure:"suffix"`
	Lighten  float64 `mapstructure:"lighten"`
}

// CropSettings are the defaults for the crop command.
type CropSettings struct {
	MarginMM float64 `mapstructure:"margin_mm"`
}

// LogSettings control the slog handler.
type LogSettings struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`

	// Format is text or json.
	Format string `mapstructure:"format"`
}

// LoadSettings reads the settings file under paths.Root, applying defaults
// and ADAPTIVE_* environment overrides. A missing settings file is not an
// error; the defaults apply.
func LoadSettings(paths *Paths) (*Settings, error) {
	v := viper.New()
	v.SetConfigName("adaptive")
	v.SetConfigType("yaml")
	v.AddConfigPath(paths.Root)
	v.SetEnvPrefix("ADAPTIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("cascade.margin_mm", 0.0)
	v.SetDefault("cascade.prefix", "")
	v.SetDefault("cascade.suffix", "_x")
	v.SetDefault("cascade.lighten", 0.4)
	v.SetDefault("crop.margin_mm", 0.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate rejects out-of-range settings, naming the field at fault.
func (s *Settings) Validate() error {
	if s.Cascade.MarginMM < 0 {
		return fmt.Errorf("cascade.margin_mm must be >= 0, got %.2f", s.Cascade.MarginMM)
	}
	if s.Cascade.Lighten < 0 || s.Cascade.Lighten > 1 {
		return fmt.Errorf("cascade.lighten must be in [0, 1], got %.3f", s.Cascade.Lighten)
	}
	if s.Crop.MarginMM < 0 {
		return fmt.Errorf("crop.margin_mm must be >= 0, got %.2f", s.Crop.MarginMM)
	}
	switch s.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", s.Log.Level)
	}
	switch s.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", s.Log.Format)
	}
	return nil
}
