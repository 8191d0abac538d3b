// Package config loads subway settings.
//
// Settings are layered, later sources overriding earlier ones:
//
//  1. Built-in defaults ([Default])
//  2. A TOML file (--config, or $XDG_CONFIG_HOME/subway/config.toml if present)
//  3. .env files, loaded into the process environment without overriding it
//  4. SUBWAY_* environment variables
//
// Command-line flags are applied by the CLI on top of the returned Config.
//
// # File Format
//
//	[store]
//	url = "sqlite:///var/lib/subway/subway.db"
//
//	[server]
//	addr = ":8081"
//	allowed_origins = ["http://localhost:5173"]
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "24h"
//
//	[log]
//	level = "debug"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// AppName names the XDG directories used for defaults.
const AppName = "subway"

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config holds all settings.
type Config struct {
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
	Log    LogConfig    `toml:"log"`
}

// StoreConfig selects the line store. See store.Open for URL forms.
type StoreConfig struct {
	URL string `toml:"url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
	ReadTimeout    Duration `toml:"read_timeout"`
	WriteTimeout   Duration `toml:"write_timeout"`
}

// CacheConfig configures the rendered diagram cache.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration is a time.Duration written as a string ("90s", "24h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings: a file store and file cache under
// the XDG data and cache directories, and the API on :8081.
func Default() *Config {
	return &Config{
		Store: StoreConfig{URL: "file://" + filepath.Join(dataDir(), "lines")},
		Server: ServerConfig{
			Addr:           ":8081",
			AllowedOrigins: []string{"*"},
			ReadTimeout:    Duration{15 * time.Second},
			WriteTimeout:   Duration{30 * time.Second},
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			Dir:     cacheDir(),
			TTL:     Duration{24 * time.Hour},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration. path names a TOML file that must exist;
// if empty, the default config file is read when present. envFiles are
// loaded with godotenv; if none are given, ".env" in the working directory
// is loaded when present.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if p := DefaultPath(); fileExists(p) {
			path = p
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if len(envFiles) == 0 {
		if fileExists(".env") {
			envFiles = []string{".env"}
		}
	}
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("load env files: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides settings from SUBWAY_* variables. DATABASE_URL is
// honored as the store URL when SUBWAY_STORE_URL is not set.
func (c *Config) applyEnv() error {
	if v := os.Getenv("SUBWAY_STORE_URL"); v != "" {
		c.Store.URL = v
	} else if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Store.URL = v
	}
	if v := os.Getenv("SUBWAY_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("SUBWAY_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("SUBWAY_CACHE"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("SUBWAY_CACHE_DIR"); v != "" {
		c.Cache.Dir = v
	}
	if v := os.Getenv("SUBWAY_REDIS_URL"); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv("SUBWAY_CACHE_TTL"); v != "" {
		if err := c.Cache.TTL.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("SUBWAY_CACHE_TTL: %w", err)
		}
	}
	if v := os.Getenv("SUBWAY_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Store.URL == "" {
		errs = append(errs, errors.New("store.url is empty"))
	}
	switch c.Cache.Backend {
	case CacheNone:
	case CacheFile:
		if c.Cache.Dir == "" {
			errs = append(errs, errors.New("cache.dir is required for the file cache"))
		}
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			errs = append(errs, errors.New("cache.redis_url is required for the redis cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend %q is not one of none, file, redis", c.Cache.Backend))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	return errors.Join(errs...)
}

// DefaultPath returns $XDG_CONFIG_HOME/subway/config.toml, falling back to
// ~/.config/subway/config.toml.
func DefaultPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "config.toml")
}

func dataDir() string  { return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")) }
func cacheDir() string { return xdgDir("XDG_CACHE_HOME", ".cache") }

func xdgDir(env, fallback string) string {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName)
	}
	return filepath.Join(home, fallback, AppName)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
