// Package config loads CLI and server settings from flags, an optional YAML
// file, and APPLYFORM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/goliatone/go-applyform/pkg/formdata"
)

// EnvPrefix prefixes every environment variable, e.g. APPLYFORM_LOG_LEVEL.
const EnvPrefix = "APPLYFORM"

// Keys understood by Load. Nested keys map to env vars with "." → "_".
const (
	KeyFormsDir       = "forms_dir"
	KeyAddress        = "address"
	KeyDelimiter      = "delimiter"
	KeyLogLevel       = "log.level"
	KeyLogDevelopment = "log.development"
	KeyHTTPAllow      = "http.allow"
	KeyHTTPTimeout    = "http.timeout"
	KeyHTTPRetries    = "http.retries"
)

// Config is the resolved configuration.
type Config struct {
	FormsDir  string `mapstructure:"forms_dir"`
	Address   string `mapstructure:"address"`
	Delimiter string `mapstructure:"delimiter"`
	Log       Log    `mapstructure:"log"`
	HTTP      HTTP   `mapstructure:"http"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// HTTP configures URL schema sources.
type HTTP struct {
	Allow   bool          `mapstructure:"allow"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retries uint          `mapstructure:"retries"`
}

// New returns a viper instance with defaults and environment binding in
// place. Callers bind their flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyFormsDir, "forms")
	v.SetDefault(KeyAddress, ":8080")
	v.SetDefault(KeyDelimiter, formdata.DefaultDelimiter)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogDevelopment, false)
	v.SetDefault(KeyHTTPAllow, false)
	v.SetDefault(KeyHTTPTimeout, 10*time.Second)
	v.SetDefault(KeyHTTPRetries, 2)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file and returns the merged configuration.
func Load(v *viper.Viper, file string) (Config, error) {
	if v == nil {
		v = New()
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Delimiter) == "" {
		errs = append(errs, errors.New("config: delimiter must not be empty"))
	}
	if strings.ContainsAny(c.Delimiter, "[]") {
		errs = append(errs, fmt.Errorf("config: delimiter %q must not contain brackets", c.Delimiter))
	}
	if c.HTTP.Timeout < 0 {
		errs = append(errs, errors.New("config: http.timeout must not be negative"))
	}
	return errors.Join(errs...)
}
