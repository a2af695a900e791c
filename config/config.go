// Package config loads client and development server configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envFile   = ".env"
	envPrefix = "SOCIALNET"
)

// NewClientConfig loads socialctl configuration from an optional file and the environment.
func NewClientConfig(file string) (*ClientConfig, error) {
	v, err := load(file, setClientDefaults, clientKeys)
	if err != nil {
		return nil, err
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewServerConfig loads development backend configuration from an optional file and the environment.
func NewServerConfig(file string) (*ServerConfig, error) {
	v, err := load(file, setServerDefaults, serverKeys)
	if err != nil {
		return nil, err
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func load(file string, defaults func(*viper.Viper), keys []string) (*viper.Viper, error) {
	v := viper.New()
	if envMap, err := godotenv.Read(envFile); err == nil {
		for k, val := range envMap {
			if _, exists := os.LookupEnv(k); !exists {
				_ = os.Setenv(k, val)
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults(v)
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	return v, nil
}

var clientKeys = []string{
	"api.base_url",
	"api.prefix",
	"api.timeout",
	"cache.stale_time",
	"cache.retry",
	"cache.retry_delay",
	"session.file",
	"logging.level",
}

func setClientDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8088")
	v.SetDefault("api.prefix", "/api/v1")
	v.SetDefault("api.timeout", 10*time.Second)

	v.SetDefault("cache.stale_time", 30*time.Second)
	v.SetDefault("cache.retry", 1)
	v.SetDefault("cache.retry_delay", 500*time.Millisecond)

	v.SetDefault("session.file", defaultSessionFile())
	v.SetDefault("logging.level", "warn")
}

var serverKeys = []string{
	"server.host",
	"server.port",
	"server.public_url",
	"server.shutdown_timeout",
	"server.request_timeout",
	"storage.db_path",
	"storage.upload_dir",
	"auth.jwt_secret",
	"auth.token_ttl",
	"auth.bcrypt_cost",
	"upload.presign_ttl",
	"upload.max_bytes",
	"logging.level",
}

func setServerDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8088)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.request_timeout", 10*time.Second)

	v.SetDefault("storage.db_path", "socialnet.db")
	v.SetDefault("storage.upload_dir", "uploads")

	v.SetDefault("auth.jwt_secret", "development-secret-change-me")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("upload.presign_ttl", 5*time.Minute)
	v.SetDefault("upload.max_bytes", 10<<20)

	v.SetDefault("logging.level", "info")
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".socialnet-session.yaml"
	}
	return filepath.Join(dir, "socialnet", "session.yaml")
}
