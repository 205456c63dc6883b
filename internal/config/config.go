// Package config resolves client settings from, lowest to highest:
// built-in defaults, a TOML file, TODOBOARD_* environment variables and
// command-line overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DefaultBaseURL   = "http://localhost:8080"
	DefaultPrefix    = "api/"
	DefaultTheme     = "classic"
	DefaultLogLevel  = "info"
	DefaultServeAddr = "127.0.0.1:8080"

	fileName = "config.toml"
	appDir   = "todoboard"
)

type Config struct {
	BaseURL   string `toml:"base_url" env:"TODOBOARD_URL"`
	APIPrefix string `toml:"api_prefix" env:"TODOBOARD_API_PREFIX"`
	// User is the lowest-priority identity source; see identity.Resolve.
	User      string `toml:"user"`
	Theme     string `toml:"theme" env:"TODOBOARD_THEME"`
	LogLevel  string `toml:"log_level" env:"TODOBOARD_LOG_LEVEL"`
	LogFile   string `toml:"log_file" env:"TODOBOARD_LOG_FILE"`
	Strict    bool   `toml:"strict" env:"TODOBOARD_STRICT"`
	ServeAddr string `toml:"serve_addr" env:"TODOBOARD_SERVE_ADDR"`

	// Source is the config file that was read, empty if none.
	Source string `toml:"-"`
}

func Default() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		APIPrefix: DefaultPrefix,
		Theme:     DefaultTheme,
		LogLevel:  DefaultLogLevel,
		ServeAddr: DefaultServeAddr,
	}
}

// Overrides carries command-line values. Empty strings and nil pointers
// leave the lower layers alone.
type Overrides struct {
	BaseURL  string
	Theme    string
	LogLevel string
	LogFile  string
	Strict   *bool
}

type LoadInput struct {
	// ConfigPath is an explicit file; it must exist when set.
	ConfigPath string
	Overrides  Overrides
}

func Load(in LoadInput) (Config, error) {
	cfg := Default()

	path, explicit := in.ConfigPath, in.ConfigPath != ""
	if !explicit {
		path = UserConfigPath()
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("config file %s: %w", path, err)
			}
		} else {
			cfg.Source = path
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}

	applyOverrides(&cfg, in.Overrides)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyOverrides(cfg *Config, o Overrides) {
	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
	}
	if o.Theme != "" {
		cfg.Theme = o.Theme
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.LogFile != "" {
		cfg.LogFile = o.LogFile
	}
	if o.Strict != nil {
		cfg.Strict = *o.Strict
	}
}

// Validate normalizes the prefix and rejects settings the client cannot use.
func (c *Config) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.BaseURL))
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url: missing host in %q", c.BaseURL)
	}

	c.APIPrefix = strings.TrimLeft(c.APIPrefix, "/")
	if c.APIPrefix != "" && !strings.HasSuffix(c.APIPrefix, "/") {
		c.APIPrefix += "/"
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// UserConfigPath is $XDG_CONFIG_HOME/todoboard/config.toml, falling back to
// ~/.config/todoboard/config.toml. Empty when neither can be determined.
func UserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir, fileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appDir, fileName)
}
