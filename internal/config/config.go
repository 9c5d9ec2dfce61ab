// ABOUTME: Application configuration loaded with viper
// ABOUTME: Merges defaults, an optional config file and PODCAST_ environment variables
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "PODCAST"

// Config is the application configuration
type Config struct {
	RecordingsDir  string        `mapstructure:"recordings_dir" validate:"required"`
	DatabasePath   string        `mapstructure:"database_path" validate:"required"`
	SampleRate     int           `mapstructure:"sample_rate" validate:"required,min=8000,max=192000"`
	Channels       int           `mapstructure:"channels" validate:"required,min=1,max=8"`
	TickInterval   time.Duration `mapstructure:"tick_interval" validate:"required,min=1ms"`
	QueueBlocks    int           `mapstructure:"queue_blocks" validate:"required,min=1"`
	DrainTimeout   time.Duration `mapstructure:"drain_timeout" validate:"min=0"`
	InputBackend   string        `mapstructure:"input_backend" validate:"required,oneof=malgo portaudio tone"`
	FramesPerBlock int           `mapstructure:"frames_per_block" validate:"required,min=16,max=65536"`
	LogFile        string        `mapstructure:"log_file"`
	LogLevel       string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	WaveformWidth  int           `mapstructure:"waveform_width" validate:"required,min=10"`
}

func setDefault(v *viper.Viper) {
	v.SetDefault("recordings_dir", "grabaciones")
	v.SetDefault("database_path", "podcast.db")
	v.SetDefault("sample_rate", 44100)
	v.SetDefault("channels", 1)
	v.SetDefault("tick_interval", "50ms")
	v.SetDefault("queue_blocks", 1024)
	v.SetDefault("drain_timeout", "0s")
	v.SetDefault("input_backend", "malgo")
	v.SetDefault("frames_per_block", 512)
	v.SetDefault("log_file", "podcast-recorder.log")
	v.SetDefault("log_level", "info")
	v.SetDefault("waveform_width", 200)
}

// Load reads configuration. path may be empty, in which case only defaults
// and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return nil, fmt.Errorf("config file not found: %s", path)
			}
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc()))
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
