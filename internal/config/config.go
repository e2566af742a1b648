package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// PostgresConfig describes the optional PostgreSQL sink.
type PostgresConfig struct {
	Connection string `yaml:"connection"`
	Table      string `yaml:"table"`
	Create     bool   `yaml:"create,omitempty"`
	Timeout    string `yaml:"timeout,omitempty"`
}

// ProjectConfig holds defaults read from tabload.yaml.
// Zero values mean "not set"; flags and environment override them.
type ProjectConfig struct {
	Delimiter      string         `yaml:"delimiter"`
	Skip           uint           `yaml:"skip,omitempty"`
	Find           string         `yaml:"find,omitempty"`
	MaxSearchLines *uint          `yaml:"max_search_lines,omitempty"`
	Format         string         `yaml:"format,omitempty"`
	Extension      string         `yaml:"extension,omitempty"`
	Retries        int            `yaml:"retries,omitempty"`
	Postgres       PostgresConfig `yaml:"postgres,omitempty"`
}

const ConfigFileName = "tabload.yaml"

// Load reads ConfigFileName from dir.
func Load(dir string) (*ProjectConfig, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads a project config from an explicit path.
func LoadFile(configPath string) (*ProjectConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}
	if cfg.Skip > 0 && cfg.Find != "" {
		return nil, fmt.Errorf("%s: skip and find are mutually exclusive", configPath)
	}
	if cfg.Postgres.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Postgres.Timeout); err != nil {
			return nil, fmt.Errorf("%s: invalid postgres.timeout: %w", configPath, err)
		}
	}
	return &cfg, nil
}
