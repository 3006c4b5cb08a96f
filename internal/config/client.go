package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ClientConfig configures the terminal dashboard.
type ClientConfig struct {
	APIURL        string `mapstructure:"api_url" yaml:"api_url"`
	Token         string `mapstructure:"token" yaml:"token"`
	Locale        string `mapstructure:"locale" yaml:"locale"`
	DropdownLimit int    `mapstructure:"dropdown_limit" yaml:"dropdown_limit"`
	PageLimit     int    `mapstructure:"page_limit" yaml:"page_limit"`
}

// DefaultClientConfigPath is ~/.config/seller-dashboard/config.yaml.
func DefaultClientConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "seller-dashboard", "config.yaml")
}

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"api":    "api_url",
	"token":  "token",
	"locale": "locale",
}

// LoadClientConfig reads path with viper. Flags that were set on the command
// line win over the file; DASHBOARD_* environment variables win over both
// defaults and the file. A missing file is not an error.
func LoadClientConfig(path string, flags *pflag.FlagSet) (*ClientConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("dashboard")
	v.AutomaticEnv()

	v.SetDefault("api_url", "http://localhost:8080/api/v1")
	v.SetDefault("locale", "en")
	v.SetDefault("dropdown_limit", 10)
	v.SetDefault("page_limit", 20)

	if flags != nil {
		for flagName, configKey := range flagKeys {
			if f := flags.Lookup(flagName); f != nil {
				if err := v.BindPFlag(configKey, f); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &ClientConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
