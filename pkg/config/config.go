package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server  ServerConfig
	API     APIConfig
	Cache   CacheConfig
	Session SessionConfig
	Redis   RedisConfig
	Log     LogConfig
}

// ServerConfig holds the portal listener configuration
type ServerConfig struct {
	Port            string `envconfig:"PORT" default:"3000"`
	Host            string `envconfig:"HOST" default:"127.0.0.1"`
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
}

// APIConfig describes the remote meeting API
type APIConfig struct {
	BaseURL     string        `envconfig:"API_BASE_URL" default:"http://localhost:8080/api"`
	AuthScheme  string        `envconfig:"API_AUTH_SCHEME" default:"bearer"` // "bearer", "cookie" or "none"
	Timeout     time.Duration `envconfig:"API_TIMEOUT" default:"0s"`
	ReadRetries uint64        `envconfig:"API_READ_RETRIES" default:"2"`
}

// CacheConfig holds query cache configuration
type CacheConfig struct {
	KeepUnusedFor time.Duration `envconfig:"CACHE_KEEP_UNUSED" default:"60s"`
}

// SessionConfig selects where the session token survives restarts
type SessionConfig struct {
	Backend     string `envconfig:"SESSION_BACKEND" default:"file"` // "file", "redis" or "memory"
	File        string `envconfig:"SESSION_FILE" default:".portal-session.json"`
	RedisPrefix string `envconfig:"SESSION_REDIS_PREFIX" default:"meeting-portal:session"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" default:""`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	switch c.API.AuthScheme {
	case "bearer", "cookie", "none":
	default:
		return fmt.Errorf("API_AUTH_SCHEME must be one of bearer, cookie, none; got %q", c.API.AuthScheme)
	}
	switch c.Session.Backend {
	case "file":
		if c.Session.File == "" {
			return fmt.Errorf("SESSION_FILE is required for the file session backend")
		}
	case "redis", "memory":
	default:
		return fmt.Errorf("SESSION_BACKEND must be one of file, redis, memory; got %q", c.Session.Backend)
	}
	return nil
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// GetListenAddr returns the portal listen address
func (c *Config) GetListenAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// IsProduction reports whether the portal runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
