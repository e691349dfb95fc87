// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved application configuration, populated from the
// config file, COFFER_ environment variables, and command-line flags
// in increasing order of precedence (Viper handles the merge).
type Config struct {
	APIBaseURL string
	DataDir    string
	LogLevel   string
	LogFormat  string
	APITimeout time.Duration
}

// Load reads the merged Viper state into a typed Config and validates
// the pieces that would otherwise fail deep inside a command.
func Load() (*Config, error) {
	cfg := &Config{
		APIBaseURL: viper.GetString("api.base_url"),
		DataDir:    ExpandPath(viper.GetString("data_dir")),
		LogLevel:   viper.GetString("logging.level"),
		LogFormat:  viper.GetString("logging.format"),
		APITimeout: viper.GetDuration("api.timeout"),
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("api.base_url is not set")
	}
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api.base_url %q is not a valid URL", cfg.APIBaseURL)
	}

	if cfg.APITimeout == 0 {
		cfg.APITimeout = 30 * time.Second
	}
	return cfg, nil
}

// ExpandPath resolves a leading ~ and any $VAR references in a
// user-supplied path, so data_dir accepts the forms people actually
// type into config files.
func ExpandPath(path string) string {
	switch {
	case path == "~":
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	case strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return os.ExpandEnv(path)
}
