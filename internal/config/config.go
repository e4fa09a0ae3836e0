// Package config loads chaninspectord's configuration via a layered
// viper loader: flags override environment variables override a YAML
// file.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the top-level static configuration for a chaninspectord
// process. The yaml tags keep `chaninspectord config`'s effective-config
// dump loadable as a config file again.
type Config struct {
	SampRate float64       `mapstructure:"samp_rate" yaml:"samp_rate"`
	Log      LogConfig     `mapstructure:"log" yaml:"log"`
	Metrics  MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Audio    AudioConfig   `mapstructure:"audio" yaml:"audio"`
	Rig      RigConfig     `mapstructure:"rig" yaml:"rig"`
	Sweep    SweepConfig   `mapstructure:"sweep" yaml:"sweep"`
}

// LogConfig controls the internal/engx logging facade.
type LogConfig struct {
	Level    string         `mapstructure:"level" yaml:"level"` // debug/info/warn/error
	FilePath string         `mapstructure:"file_path" yaml:"file_path"`
	Rotation RotationConfig `mapstructure:"rotation" yaml:"rotation"`
}

// RotationConfig mirrors lumberjack's own knobs.
type RotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxAgeDays int  `mapstructure:"max_age_days" yaml:"max_age_days"`
	MaxBackups int  `mapstructure:"max_backups" yaml:"max_backups"`
	Compress   bool `mapstructure:"compress" yaml:"compress"`
}

// MetricsConfig controls the internal/telemetry Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Listen  string `mapstructure:"listen" yaml:"listen"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// AudioConfig controls the internal/source/audiosource PortAudio input.
type AudioConfig struct {
	DeviceName string `mapstructure:"device_name" yaml:"device_name"`
	BufferSize int    `mapstructure:"buffer_size" yaml:"buffer_size"`
}

// RigConfig controls the internal/rig Hamlib-backed tuning helper.
type RigConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Model   int    `mapstructure:"model" yaml:"model"`
	Device  string `mapstructure:"device" yaml:"device"`
}

// SweepConfig controls the periodic Halted-entry reaping sweep.
type SweepConfig struct {
	Interval string `mapstructure:"interval" yaml:"interval"`
}

// flagKeys maps each CLI flag name registered by BindFlags to the dotted
// viper/mapstructure key it overrides. BindPFlags alone would bind a flag
// under its own literal (hyphenated) name, which never lines up with the
// nested Config fields Unmarshal populates; bindFlags below uses this table
// to bind each flag to the key it's actually meant to override.
var flagKeys = map[string]string{
	"samp-rate":       "samp_rate",
	"log-level":       "log.level",
	"log-file":        "log.file_path",
	"metrics-enabled": "metrics.enabled",
	"metrics-listen":  "metrics.listen",
	"audio-device":    "audio.device_name",
	"rig-enabled":     "rig.enabled",
	"rig-model":       "rig.model",
	"rig-device":      "rig.device",
	"sweep-interval":  "sweep.interval",
}

// BindFlags registers the CLI flags that can override configuration.
func BindFlags(flags *pflag.FlagSet) {
	flags.Float64("samp-rate", 48000, "upstream source sample rate in Hz")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-file", "", "log file path; empty logs to stderr")
	flags.Bool("metrics-enabled", true, "serve Prometheus metrics")
	flags.String("metrics-listen", ":9092", "metrics listen address")
	flags.String("audio-device", "", "PortAudio input device name; empty uses the default")
	flags.Bool("rig-enabled", false, "retune a Hamlib rig on OPEN")
	flags.Int("rig-model", 1, "Hamlib rig model id")
	flags.String("rig-device", "", "Hamlib rig control device path")
	flags.String("sweep-interval", "30s", "Halted-entry reaping sweep interval")
}

// bindFlags binds every flag BindFlags registers to its nested viper key per
// flagKeys, so flag overrides land on the same Config fields the YAML file
// and environment variables populate.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// Load builds a Config from an optional YAML file at path (ignored if
// empty), environment variables prefixed CHANINSPECTORD_, and flags bound
// via BindFlags, in that ascending precedence order.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("chaninspectord")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, fmt.Errorf("config: bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if cfg.SampRate <= 0 {
		return nil, fmt.Errorf("config: samp_rate must be positive, got %v", cfg.SampRate)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("samp_rate", 48000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.rotation.max_size_mb", 100)
	v.SetDefault("log.rotation.max_age_days", 30)
	v.SetDefault("log.rotation.max_backups", 5)
	v.SetDefault("log.rotation.compress", true)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.listen", ":9092")
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("audio.buffer_size", 4096)
	v.SetDefault("rig.enabled", false)
	v.SetDefault("sweep.interval", "30s")
}
