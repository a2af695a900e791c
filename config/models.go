package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// ClientConfig holds socialctl configuration.
type ClientConfig struct {
	API     APIConfig     `mapstructure:"api"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Session SessionConfig `mapstructure:"session"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Validate ensures required fields are present.
func (c ClientConfig) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if _, err := url.ParseRequestURI(c.API.BaseURL); err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if c.Cache.Retry < 0 {
		return errors.New("cache.retry must not be negative")
	}
	if c.Session.File == "" {
		return errors.New("session.file is required")
	}
	return nil
}

// APIConfig describes how to reach the REST API.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Prefix  string        `mapstructure:"prefix"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig tunes the query cache.
type CacheConfig struct {
	StaleTime  time.Duration `mapstructure:"stale_time"`
	Retry      int           `mapstructure:"retry"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// SessionConfig points at the persisted login.
type SessionConfig struct {
	File string `mapstructure:"file"`
}

// LoggingConfig contains logger preferences.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// ServerConfig holds development backend configuration.
type ServerConfig struct {
	Server  ServerOptions `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Upload  UploadConfig  `mapstructure:"upload"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Validate ensures required fields are present.
func (c ServerConfig) Validate() error {
	if c.Server.Port == 0 {
		return errors.New("server.port is required")
	}
	if c.Storage.DBPath == "" {
		return errors.New("storage.db_path is required")
	}
	if c.Storage.UploadDir == "" {
		return errors.New("storage.upload_dir is required")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return errors.New("auth.jwt_secret must be at least 16 bytes")
	}
	return nil
}

// ServerAddr returns host:port for HTTP server binding.
func (c ServerConfig) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// PublicURL returns the externally visible base URL used in presigned links.
func (c ServerConfig) PublicURL() string {
	if c.Server.PublicURL != "" {
		return c.Server.PublicURL
	}
	host := c.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.Server.Port)
}

// ServerOptions contains HTTP server options.
type ServerOptions struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	PublicURL       string        `mapstructure:"public_url"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

// StorageConfig locates the SQLite database and uploaded files.
type StorageConfig struct {
	DBPath    string `mapstructure:"db_path"`
	UploadDir string `mapstructure:"upload_dir"`
}

// AuthConfig configures token issuing.
type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

// UploadConfig configures presigned uploads.
type UploadConfig struct {
	PresignTTL time.Duration `mapstructure:"presign_ttl"`
	MaxBytes   int64         `mapstructure:"max_bytes"`
}
