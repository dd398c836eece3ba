package cli

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/JonMunkholm/vizboard/internal/config"
)

// Settings are the CLI options read from flags, VIZBOARD_* environment
// variables and an optional YAML config file.
type Settings struct {
	Variant       string `mapstructure:"variant" yaml:"variant"`
	Format        string `mapstructure:"format" yaml:"format"`
	Width         int    `mapstructure:"width" yaml:"width"`
	Height        int    `mapstructure:"height" yaml:"height"`
	Workers       int    `mapstructure:"workers" yaml:"workers"`
	MaxRows       int    `mapstructure:"max_rows" yaml:"max_rows"`
	MaxFileSize   int64  `mapstructure:"max_file_size" yaml:"max_file_size"`
	PreviewRows   int    `mapstructure:"preview_rows" yaml:"preview_rows"`
	MaxCategories int    `mapstructure:"max_categories" yaml:"max_categories"`
	LogLevel      string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat     string `mapstructure:"log_format" yaml:"log_format"`
}

// LoadSettings reads settings with precedence flags > env > config file >
// server defaults. A missing default config file is not an error; a missing
// explicit one is.
func LoadSettings(v *viper.Viper, cfgFile string) (*Settings, error) {
	d := config.Defaults()

	v.SetEnvPrefix("VIZBOARD")
	v.AutomaticEnv()

	v.SetDefault("variant", d.Dashboard.Variant)
	v.SetDefault("format", "png")
	v.SetDefault("width", d.Render.Width)
	v.SetDefault("height", d.Render.Height)
	v.SetDefault("workers", d.Render.Workers)
	v.SetDefault("max_rows", d.Upload.MaxRows)
	v.SetDefault("max_file_size", d.Upload.MaxFileSize)
	v.SetDefault("preview_rows", d.Upload.PreviewRows)
	v.SetDefault("max_categories", d.Render.MaxCategories)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("vizboard")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &s, nil
}

// Config builds the service configuration the CLI runs with.
func (s *Settings) Config() (*config.Config, error) {
	cfg := config.Defaults()
	cfg.Dashboard.Variant = s.Variant
	cfg.Render.Width = s.Width
	cfg.Render.Height = s.Height
	cfg.Render.Workers = s.Workers
	cfg.Render.MaxCategories = s.MaxCategories
	cfg.Upload.MaxRows = s.MaxRows
	cfg.Upload.MaxFileSize = s.MaxFileSize
	cfg.Upload.PreviewRows = s.PreviewRows
	cfg.Upload.MaxConcurrent = 1
	cfg.Logging.Level = s.LogLevel
	cfg.Logging.Format = s.LogFormat

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
