package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when none is named
const DefaultPath = "ontoshop.yaml"

// Config holds all configuration for ontoshop.
// Values come from a YAML file, and environment variables override them.
type Config struct {
	// OntologyPath is the RDF/XML file that holds the whole shop graph
	OntologyPath string `yaml:"ontology_path" env:"ONTOSHOP_ONTOLOGY" env-default:"ontology/Ecommerce_Platform.xml"`

	// MediaRoot is the directory uploaded product images are written under
	MediaRoot string `yaml:"media_root" env:"ONTOSHOP_MEDIA_ROOT" env-default:"media"`

	Rows RowsConfig `yaml:"rows"`

	// CacheGraph keeps the parsed graph in memory between calls and
	// reloads it when the file changes
	CacheGraph bool `yaml:"cache_graph" env:"ONTOSHOP_CACHE_GRAPH" env-default:"false"`

	LogLevel string `yaml:"log_level" env:"ONTOSHOP_LOG_LEVEL" env-default:"info"`
	Env      string `yaml:"env" env:"ONTOSHOP_ENV" env-default:"local"`
	Version  string `yaml:"-"`
}

// RowsConfig configures the auxiliary feedback row store
type RowsConfig struct {
	Path     string `yaml:"path" env:"ONTOSHOP_ROWS_PATH" env-default:"data/feedback"`
	InMemory bool   `yaml:"in_memory" env:"ONTOSHOP_ROWS_IN_MEMORY" env-default:"false"`
}

// Load reads the config file at path with environment overrides. A missing
// file is not an error: the environment and defaults are used instead.
func Load(path, version string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg := &Config{}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	cfg.Version = version

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the loaded values
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OntologyPath) == "" {
		return fmt.Errorf("ontology_path must not be empty")
	}
	if strings.TrimSpace(c.MediaRoot) == "" {
		return fmt.Errorf("media_root must not be empty")
	}
	if !c.Rows.InMemory && strings.TrimSpace(c.Rows.Path) == "" {
		return fmt.Errorf("rows.path must not be empty unless rows.in_memory is set")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel
func (c *Config) Level() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return level, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// YAML renders the config in the file format Load reads
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
