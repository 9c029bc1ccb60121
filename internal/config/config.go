// Package config loads client configuration from a YAML file and
// SDESK_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/supportdesk-io/sdesk/internal/types"
)

// DefaultUserAgent identifies the client on every request.
const DefaultUserAgent = "sdesk/1.0.0"

// Config represents the client configuration.
type Config struct {
	API   APIConfig  `mapstructure:"api"`
	Auth  AuthConfig `mapstructure:"auth"`
	List  ListConfig `mapstructure:"list"`
	Debug bool       `mapstructure:"debug"`
}

type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

type AuthConfig struct {
	// TokenPath is the well-known token file. Its presence is the
	// sole "logged in" signal at startup.
	TokenPath string `mapstructure:"token_path"`
}

type ListConfig struct {
	Limit int `mapstructure:"limit"`
}

// Load reads configuration from the given file, or from
// $XDG_CONFIG_HOME/sdesk/config.yaml when configFile is empty. A
// missing default config file is not an error; a missing explicit one
// is.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.user_agent", DefaultUserAgent)
	v.SetDefault("auth.token_path", "")
	v.SetDefault("list.limit", types.DefaultLimit)
	v.SetDefault("debug", false)

	v.SetEnvPrefix("SDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "sdesk"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Auth.TokenPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("cannot resolve token path: %w", err)
		}
		cfg.Auth.TokenPath = filepath.Join(dir, "sdesk", "token")
	}

	return &cfg, nil
}
