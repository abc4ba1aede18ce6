// Package config loads mvnaudit settings from an optional YAML file, the
// MVNAUDIT_* environment and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. MVNAUDIT_ORACLE_CONCURRENCY.
	EnvPrefix = "MVNAUDIT"

	// DefaultConfigName is looked up in the working directory when no file is given.
	DefaultConfigName = "mvnaudit"
)

// Config holds all application configuration.
type Config struct {
	Workspace    string             `mapstructure:"workspace"`
	Organization OrganizationConfig `mapstructure:"organization"`
	Oracle       OracleConfig       `mapstructure:"oracle"`
	GitHub       GitHubConfig       `mapstructure:"github"`
	Log          LogConfig          `mapstructure:"log"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
	Tracing      TracingConfig      `mapstructure:"tracing"`
}

type OrganizationConfig struct {
	// Prefixes are the group id prefixes owned by the organization.
	Prefixes []string `mapstructure:"prefixes"`
}

type OracleConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	BaseURL     string        `mapstructure:"base_url"`
	Concurrency int           `mapstructure:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type GitHubConfig struct {
	Org      string `mapstructure:"org"`
	Protocol string `mapstructure:"protocol"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	// File receives run metrics in Prometheus text format; empty disables them.
	File string `mapstructure:"file"`
}

// Validate reports every setting that makes a run impossible.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Organization.Prefixes) == 0 {
		errs = append(errs, errors.New("organization.prefixes must name at least one group prefix"))
	}

	if c.Oracle.Enabled {
		u, err := url.Parse(c.Oracle.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("oracle.base_url %q is not an absolute URL", c.Oracle.BaseURL))
		}
		if c.Oracle.Concurrency < 1 {
			errs = append(errs, fmt.Errorf("oracle.concurrency must be at least 1, got %d", c.Oracle.Concurrency))
		}
		if c.Oracle.Timeout <= 0 {
			errs = append(errs, fmt.Errorf("oracle.timeout must be positive, got %s", c.Oracle.Timeout))
		}
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_rate must be between 0 and 1, got %g", c.Tracing.SampleRate))
	}

	switch c.GitHub.Protocol {
	case "ssh", "https":
	default:
		errs = append(errs, fmt.Errorf("github.protocol must be ssh or https, got %q", c.GitHub.Protocol))
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

type TracingConfig struct {
	// Endpoint is the OTLP gRPC collector (host:port); empty disables tracing.
	Endpoint   string  `mapstructure:"endpoint"`
	SampleRate float64 `mapstructure:"sample_rate"`
}

// NewLogger builds the run's structured logger writing to w.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("log.level %q is not one of debug, info, warn, error", s)
	}
	return level, nil
}

// Loader layers defaults, a config file, the environment and bound flags.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a Loader with defaults and environment overrides in place.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("workspace", ".")
	v.SetDefault("organization.prefixes", []string{"com.arpnetworking"})
	v.SetDefault("oracle.enabled", true)
	v.SetDefault("oracle.base_url", "https://repo.maven.apache.org/maven2")
	v.SetDefault("oracle.concurrency", 4)
	v.SetDefault("oracle.timeout", 10*time.Second)
	v.SetDefault("github.org", "arpnetworking")
	v.SetDefault("github.protocol", "ssh")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("metrics.file", "")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.sample_rate", 1.0)

	return &Loader{v: v}
}

// BindFlag makes flag override key when it is set on the command line.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag to bind to %s", key)
	}
	if err := l.v.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("binding flag --%s to %s: %w", flag.Name, key, err)
	}
	return nil
}

// Load reads path (or mvnaudit.yaml in the working directory when path is
// empty and the file exists) and returns the validated configuration.
func (l *Loader) Load(path string) (*Config, error) {
	if path != "" {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else {
		l.v.SetConfigName(DefaultConfigName)
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		if err := l.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// ConfigFileUsed returns the file Load read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}
