// Package config provides the server configuration.
package config

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/worldbank-mcp/worldbank"
	"github.com/effective-security/x/configloader"
	"github.com/effective-security/x/values"
	"github.com/go-playground/validator/v10"
)

// Defaults
const (
	DefaultHTTPAddr = "127.0.0.1:8001"
	DefaultMCPPath  = "/mcp"
	DefaultLogLevel = "INFO"
)

// Config of the server
type Config struct {
	WorldBank WorldBank `json:"worldbank" yaml:"worldbank"`
	HTTP      HTTP      `json:"http" yaml:"http"`
	// LogLevel is one of TRACE, DEBUG, INFO, NOTICE, WARNING, ERROR, CRITICAL
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,oneof=TRACE DEBUG INFO NOTICE WARNING ERROR CRITICAL"`
}

// WorldBank specifies the upstream API client
type WorldBank struct {
	BaseURL   string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	UserAgent string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	// Timeout is a duration string, for example 20s
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// HTTP specifies the HTTP listener
type HTTP struct {
	Addr    string `json:"addr,omitempty" yaml:"addr,omitempty" validate:"omitempty,hostname_port"`
	MCPPath string `json:"mcp_path,omitempty" yaml:"mcp_path,omitempty" validate:"omitempty,startswith=/"`
}

var validate = validator.New()

// Default returns the configuration with defaults applied.
func Default() *Config {
	cfg := new(Config)
	cfg.applyDefaults()
	return cfg
}

// LoadConfig from file, empty file name returns defaults.
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	if file != "" {
		err := configloader.UnmarshalAndExpand(file, cfg)
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to load config %q", file)
		}
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.WorldBank.BaseURL = values.StringsCoalesce(c.WorldBank.BaseURL, worldbank.DefaultBaseURL)
	c.WorldBank.UserAgent = values.StringsCoalesce(c.WorldBank.UserAgent, worldbank.DefaultUserAgent)
	c.WorldBank.Timeout = values.StringsCoalesce(c.WorldBank.Timeout, worldbank.DefaultTimeout.String())
	c.HTTP.Addr = values.StringsCoalesce(c.HTTP.Addr, DefaultHTTPAddr)
	c.HTTP.MCPPath = values.StringsCoalesce(c.HTTP.MCPPath, DefaultMCPPath)
	c.LogLevel = values.StringsCoalesce(c.LogLevel, DefaultLogLevel)
}

// Validate returns error if the configuration is invalid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	if _, err := c.WorldBank.TimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// TimeoutDuration returns the parsed upstream timeout.
func (w WorldBank) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(w.Timeout)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid worldbank.timeout: %q", w.Timeout)
	}
	if d <= 0 {
		return 0, errors.Errorf("invalid worldbank.timeout: %q", w.Timeout)
	}
	return d, nil
}

// Client returns the World Bank client configured by w.
func (w WorldBank) Client() (*worldbank.Client, error) {
	timeout, err := w.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return worldbank.New().
		WithBaseURL(w.BaseURL).
		WithUserAgent(w.UserAgent).
		WithTimeout(timeout), nil
}
