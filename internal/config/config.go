// Package config loads boardctl configuration from HCL, .env files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/joho/godotenv"

	"github.com/boardkit/boardclient/pkg/dispatch"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "BOARD_"

// Storage backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config is the boardctl configuration. Values come from, in increasing
// precedence: defaults, the HCL file, a .env file, the environment.
//
// Example configuration (HCL):
//
//	server_url   = "http://127.0.0.1:8000"
//	timeout      = "30s"
//	tls_verify   = true
//	open_browser = false
//	log_level    = "info"
//
//	storage {
//	  backend = "file"
//	  path    = "~/.boardctl"
//	}
type Config struct {
	// ServerURL is the backend base URL (BOARD_SERVER_URL).
	ServerURL string `hcl:"server_url,optional" env:"SERVER_URL" json:"server_url"`

	// Timeout is a Go duration string (BOARD_TIMEOUT).
	Timeout string `hcl:"timeout,optional" env:"TIMEOUT" json:"timeout"`

	// TLSVerify controls certificate verification (BOARD_TLS_VERIFY).
	TLSVerify bool `hcl:"tls_verify,optional" env:"TLS_VERIFY" json:"tls_verify"`

	// OpenBrowser opens navigation targets in the system browser
	// (BOARD_OPEN_BROWSER). When false targets are only logged.
	OpenBrowser bool `hcl:"open_browser,optional" env:"OPEN_BROWSER" json:"open_browser"`

	// LogLevel is an hclog level name (BOARD_LOG_LEVEL).
	LogLevel string `hcl:"log_level,optional" env:"LOG_LEVEL" json:"log_level"`

	// Storage selects where session and navigation state is kept.
	Storage *Storage `hcl:"storage,block" envPrefix:"STORAGE_" json:"storage"`
}

// Storage configures the state backend.
type Storage struct {
	// Backend is one of "file", "redis" or "memory" (BOARD_STORAGE_BACKEND).
	Backend string `hcl:"backend,optional" env:"BACKEND" json:"backend"`

	// Path is the state directory for the file backend (BOARD_STORAGE_PATH).
	Path string `hcl:"path,optional" env:"PATH" json:"path"`

	// RedisAddr is host:port of the redis backend (BOARD_STORAGE_REDIS_ADDR).
	RedisAddr string `hcl:"redis_addr,optional" env:"REDIS_ADDR" json:"redis_addr"`

	// RedisPrefix namespaces keys in redis (BOARD_STORAGE_REDIS_PREFIX).
	RedisPrefix string `hcl:"redis_prefix,optional" env:"REDIS_PREFIX" json:"redis_prefix"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Timeout:   "30s",
		TLSVerify: true,
		LogLevel:  "info",
		Storage:   DefaultStorage(),
	}
}

// DefaultStorage returns a file backend under the user's home directory.
func DefaultStorage() *Storage {
	return &Storage{
		Backend: BackendFile,
		Path:    defaultStatePath(),
	}
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".boardctl"
	}
	return home + string(os.PathSeparator) + ".boardctl"
}

// Load builds the configuration. path is an optional HCL file. dotenvFiles
// are loaded into the environment before it is read; with none given an
// optional ".env" in the working directory is used.
func Load(path string, dotenvFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s", path)
		}
		if err := hclsimple.DecodeFile(path, nil, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file: %w", err)
		}
	}
	cfg.applyDefaults()

	if err := loadDotEnv(dotenvFiles...); err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func loadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) || len(files) > 0 {
			return fmt.Errorf("load .env file: %w", err)
		}
	}
	return nil
}

// applyDefaults fills values an HCL storage block left out.
func (c *Config) applyDefaults() {
	if c.Storage == nil {
		c.Storage = DefaultStorage()
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.Backend == BackendFile && c.Storage.Path == "" {
		c.Storage.Path = defaultStatePath()
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ServerURL, validation.Required, validation.By(httpURL)),
		validation.Field(&c.Timeout, validation.Required, validation.By(positiveDuration)),
		validation.Field(&c.LogLevel, validation.By(logLevel)),
		validation.Field(&c.Storage, validation.Required),
	)
}

// Validate checks the storage block.
func (s *Storage) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Backend, validation.Required,
			validation.In(BackendFile, BackendRedis, BackendMemory)),
		validation.Field(&s.Path, validation.When(s.Backend == BackendFile, validation.Required)),
		validation.Field(&s.RedisAddr, validation.When(s.Backend == BackendRedis, validation.Required)),
	)
}

func httpURL(value any) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil {
		return errors.New("must be a valid URL")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an http or https URL")
	}
	return nil
}

func positiveDuration(value any) error {
	s, _ := value.(string)
	d, err := time.ParseDuration(s)
	if err != nil {
		return errors.New("must be a duration such as 30s")
	}
	if d <= 0 {
		return errors.New("must be positive")
	}
	return nil
}

func logLevel(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if hclog.LevelFromString(s) == hclog.NoLevel {
		return fmt.Errorf("must be one of trace, debug, info, warn, error, off")
	}
	return nil
}

// TimeoutDuration returns Timeout parsed. Call after Validate.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// Level returns LogLevel as an hclog level, defaulting to Info.
func (c *Config) Level() hclog.Level {
	if l := hclog.LevelFromString(strings.TrimSpace(c.LogLevel)); l != hclog.NoLevel {
		return l
	}
	return hclog.Info
}

// Dispatch returns the dispatcher configuration.
func (c *Config) Dispatch() *dispatch.Config {
	cfg := dispatch.DefaultConfig()
	cfg.BaseURL = c.ServerURL
	cfg.Timeout = c.TimeoutDuration()
	tlsVerify := c.TLSVerify
	cfg.TLSVerify = &tlsVerify
	return cfg
}
