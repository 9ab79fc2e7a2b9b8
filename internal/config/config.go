// Package config loads service configuration from the environment, with an
// optional YAML overlay for deployments that prefer a file.
package config

import (
	"fmt"
	"os"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host string `env:"HTTP_HOST,default=0.0.0.0" yaml:"host"`
	Port int    `env:"HTTP_PORT,default=8000" yaml:"port"`
}

// DatabaseConfig controls the PostgreSQL backend.
type DatabaseConfig struct {
	DSN string `env:"DATABASE_URL" yaml:"dsn"`
}

// StorageConfig selects the record store backend and locates the flat files.
type StorageConfig struct {
	// Backend is "postgres" or "csv".
	Backend       string `env:"STORAGE_BACKEND,default=csv" yaml:"backend"`
	RecordsFile   string `env:"RECORDS_FILE,default=data.csv" yaml:"records_file"`
	ReferenceFile string `env:"BOOK_OF_BUSINESS_FILE,default=book_of_business.csv" yaml:"reference_file"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL,default=info" yaml:"level"`
	Format string `env:"LOG_FORMAT,default=text" yaml:"format"`
	Output string `env:"LOG_OUTPUT,default=stdout" yaml:"output"`
}

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile overlays the environment-derived configuration with a YAML file.
// File values win over environment values.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "csv":
		if c.Storage.RecordsFile == "" {
			return fmt.Errorf("csv backend requires a records file path")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("postgres backend requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown storage backend %q (want csv or postgres)", c.Storage.Backend)
	}
	if c.Storage.ReferenceFile == "" {
		return fmt.Errorf("reference dataset path is required")
	}
	return nil
}
