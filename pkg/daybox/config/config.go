package config

import (
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig                   `mapstructure:"server"`
	Database DatabaseConfig                 `mapstructure:"database"`
	Auth     AuthConfig                     `mapstructure:"auth"`
	Preview  PreviewConfig                  `mapstructure:"preview"`
	OAuth    map[string]OAuthProviderConfig `mapstructure:"oauth"`
}

type ServerConfig struct {
	Port    string `mapstructure:"port"`
	BaseURL string `mapstructure:"base_url"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`
}

type PreviewConfig struct {
	Workers        int `mapstructure:"workers"`
	QueueSize      int `mapstructure:"queue_size"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// OAuthProviderConfig describes one external login provider. Providers are
// registered from this map at startup; there is no runtime registry.
type OAuthProviderConfig struct {
	Issuer       string `mapstructure:"issuer"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// LoadConfig reads configuration from an optional YAML file with environment
// variable overrides. A missing file is not an error; defaults apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("database.path", "daybox.db")
	v.SetDefault("auth.token_ttl_hours", 24)
	v.SetDefault("preview.workers", 2)
	v.SetDefault("preview.queue_size", 64)
	v.SetDefault("preview.timeout_seconds", 10)

	// Enable environment variable support
	v.SetEnvPrefix("daybox")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Env overrides for the secrets most often injected at deploy time
	if secret := v.GetString("JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}
	if dbPath := v.GetString("DB_PATH"); dbPath != "" {
		config.Database.Path = dbPath
	}

	return &config, nil
}
