// Package config loads and validates application configuration.
//
// Settings come from an optional YAML file layered under environment
// variables, so DB_HOST overrides db.host from the file, and so on.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the root application configuration.
type Config struct {
	Server ServerConfig `koanf:"server"`
	CORS   CORSConfig   `koanf:"cors"`
	DB     DBConfig     `koanf:"db"`
	Log    LogConfig    `koanf:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              string        `koanf:"port" validate:"required"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	RateLimit         float64       `koanf:"rate_limit" validate:"gte=0"`
	RateBurst         int           `koanf:"rate_burst" validate:"gte=0"`
}

// CORSConfig contains cross-origin settings.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// DBConfig contains PostgreSQL connection settings.
type DBConfig struct {
	Host           string        `koanf:"host" validate:"required"`
	Port           string        `koanf:"port" validate:"required"`
	Name           string        `koanf:"name" validate:"required"`
	User           string        `koanf:"user" validate:"required"`
	Password       string        `koanf:"password"`
	MinConns       int           `koanf:"min_conns" validate:"min=1"`
	MaxConns       int           `koanf:"max_conns" validate:"min=1,gtefield=MinConns"`
	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"gt=0"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json text"`
}

// Default returns the configuration defaults. Pool sizing and connect
// timeout default to the values the service has always shipped with.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              "8080",
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			RateLimit:         0,
			RateBurst:         0,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		DB: DBConfig{
			Port:           "5432",
			MinConns:       1,
			MaxConns:       5,
			ConnectTimeout: 2 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// and environment variables, then validates it. A validation failure
// means the process must not serve traffic.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// DB_HOST -> db.host, SERVER_READ_TIMEOUT -> server.read_timeout, etc.
	// Only the first underscore separates section from key.
	if err := k.Load(env.Provider(".", env.Opt{
		EnvironFunc: os.Environ,
		TransformFunc: func(key, value string) (string, any) {
			parts := strings.SplitN(strings.ToLower(key), "_", 2)
			return strings.Join(parts, "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}
