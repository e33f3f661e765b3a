// Package config loads the process configuration from the environment.
//
// Values come from the process environment, optionally seeded from a .env file
// in the working directory. The resulting Config is built once at startup and
// shared read-only by every request.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the immutable process configuration.
type Config struct {
	Port         int           `json:"port"`
	Environment  string        `json:"environment"`
	Workers      int           `json:"workers"`
	AllowedHosts []string      `json:"allowed_hosts"`
	StatsDHost   string        `json:"statsd_host"`
	FetchTimeout time.Duration `json:"fetch_timeout"`

	// DefaultQuality is the encode quality used when a request does not set one.
	DefaultQuality int `json:"default_quality"`

	// CacheExpiration is the base client cache lifetime in hours.
	CacheExpiration int `json:"cache_expiration"`

	// CacheJitter bounds the random seconds added to CacheExpiration.
	CacheJitter int `json:"cache_jitter"`

	Logging LoggingConfig `json:"logging"`
}

type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

const (
	keyPort            = "port"
	keyEnvironment     = "environment"
	keyWorkers         = "workers"
	keyAllowedHosts    = "allowed_hosts"
	keyDefaultQuality  = "default_quality"
	keyCacheExpiration = "cache_expiration"
	keyCacheJitter     = "cache_jitter"
	keyStatsDHost      = "statsd_host"
	keyFetchTimeout    = "fetch_timeout"
	keyLogLevel        = "log_level"
	keyLogFormat       = "log_format"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyPort, 8080)
	v.SetDefault(keyEnvironment, "development")
	v.SetDefault(keyWorkers, runtime.NumCPU())
	v.SetDefault(keyAllowedHosts, "")
	v.SetDefault(keyDefaultQuality, 85)
	v.SetDefault(keyCacheExpiration, 1)
	v.SetDefault(keyCacheJitter, 0)
	v.SetDefault(keyStatsDHost, "")
	v.SetDefault(keyFetchTimeout, "0s")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, "json")
}

// Load reads .env (if present) and the environment into a validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	timeout, err := time.ParseDuration(v.GetString(keyFetchTimeout))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", strings.ToUpper(keyFetchTimeout), err)
	}

	cfg := &Config{
		Port:            v.GetInt(keyPort),
		Environment:     v.GetString(keyEnvironment),
		Workers:         v.GetInt(keyWorkers),
		AllowedHosts:    ParseAllowedHosts(v.GetString(keyAllowedHosts)),
		DefaultQuality:  v.GetInt(keyDefaultQuality),
		CacheExpiration: v.GetInt(keyCacheExpiration),
		CacheJitter:     v.GetInt(keyCacheJitter),
		StatsDHost:      v.GetString(keyStatsDHost),
		FetchTimeout:    timeout,
		Logging: LoggingConfig{
			Level:  v.GetString(keyLogLevel),
			Format: v.GetString(keyLogFormat),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseAllowedHosts turns "  x.com,  y.com,z.com" into [x.com y.com z.com].
// All whitespace is removed before splitting and empty entries are dropped.
func ParseAllowedHosts(raw string) []string {
	compact := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, raw)

	var hosts []string
	seen := make(map[string]struct{})
	for _, h := range strings.Split(compact, ",") {
		if h == "" {
			continue
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		hosts = append(hosts, h)
	}
	return hosts
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1, got %d", c.Workers)
	}
	if len(c.AllowedHosts) == 0 {
		return errors.New("ALLOWED_HOSTS must list at least one host")
	}
	if c.DefaultQuality < 0 || c.DefaultQuality > 100 {
		return fmt.Errorf("DEFAULT_QUALITY must be between 0 and 100, got %d", c.DefaultQuality)
	}
	if c.CacheExpiration < 0 {
		return fmt.Errorf("CACHE_EXPIRATION must not be negative, got %d", c.CacheExpiration)
	}
	if c.CacheJitter < 0 {
		return fmt.Errorf("CACHE_JITTER must not be negative, got %d", c.CacheJitter)
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("FETCH_TIMEOUT must not be negative, got %s", c.FetchTimeout)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Logging.Format)
	}
	return nil
}
