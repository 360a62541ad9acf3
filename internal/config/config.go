package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `json:"server" yaml:"server" toml:"server"`
	Data      DataConfig      `json:"data" yaml:"data" toml:"data"`
	Logger    LoggerConfig    `json:"logger" yaml:"logger" toml:"logger"`
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit" toml:"rate_limit"`
}

type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"localhost" json:"host" yaml:"host" toml:"host"`
	Port            int           `envconfig:"SERVER_PORT" default:"8084" json:"port" yaml:"port" toml:"port"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s" json:"read_timeout" yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10s" json:"write_timeout" yaml:"write_timeout" toml:"write_timeout"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s" json:"idle_timeout" yaml:"idle_timeout" toml:"idle_timeout"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s" json:"shutdown_timeout" yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// DataConfig locates the two input tables.
type DataConfig struct {
	Dir              string        `envconfig:"DATA_DIR" default:"." json:"dir" yaml:"dir" toml:"dir"`
	TransactionsFile string        `envconfig:"DATA_TRANSACTIONS_FILE" default:"transactions.csv" json:"transactions_file" yaml:"transactions_file" toml:"transactions_file"`
	CustomersFile    string        `envconfig:"DATA_CUSTOMERS_FILE" default:"customers.csv" json:"customers_file" yaml:"customers_file" toml:"customers_file"`
	LoadTimeout      time.Duration `envconfig:"DATA_LOAD_TIMEOUT" default:"30s" json:"load_timeout" yaml:"load_timeout" toml:"load_timeout"`
}

type LoggerConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info" json:"level" yaml:"level" toml:"level"`
	Format string `envconfig:"LOG_FORMAT" default:"json" json:"format" yaml:"format" toml:"format"`
}

type RateLimitConfig struct {
	Enabled bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" json:"enabled" yaml:"enabled" toml:"enabled"`
	RPS     int  `envconfig:"RATE_LIMIT_RPS" default:"100" json:"rps" yaml:"rps" toml:"rps"`
	Burst   int  `envconfig:"RATE_LIMIT_BURST" default:"10" json:"burst" yaml:"burst" toml:"burst"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFile overlays a TOML, YAML or JSON file on top of cfg. Keys absent from
// the file keep their current values.
func LoadFile(cfg *Config, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("access config file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		// go-toml fills absent keys from `default` tags, which would undo
		// environment overrides. Going through a tree keeps them.
		var tree *toml.Tree
		if tree, err = toml.LoadBytes(raw); err == nil {
			if raw, err = yaml.Marshal(tree.ToMap()); err == nil {
				err = yaml.Unmarshal(raw, cfg)
			}
		}
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, cfg)
	case ".json":
		err = json.Unmarshal(raw, cfg)
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg.validate()
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Data.Dir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Data.TransactionsFile == "" || c.Data.CustomersFile == "" {
		return fmt.Errorf("transactions and customers file names cannot be empty")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	return nil
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// TransactionsPath and CustomersPath join the data directory with the file names.
func (d DataConfig) TransactionsPath() string { return filepath.Join(d.Dir, d.TransactionsFile) }
func (d DataConfig) CustomersPath() string { return filepath.Join(d.Dir, d.CustomersFile) }
