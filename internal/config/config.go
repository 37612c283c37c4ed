package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/labelgraph/internal/graph"
)

// Environment variables that override the file.
const (
	EnvDriver = "LABELGRAPH_DRIVER"
	EnvDSN    = "LABELGRAPH_DSN"
)

// Config holds project-level settings loaded from labelgraph.yml.
type Config struct {
	Driver   string       `yaml:"driver,omitempty"`
	DSN      string       `yaml:"dsn,omitempty"`
	Tables   graph.Tables `yaml:"tables,omitempty"`
	MaxDepth int          `yaml:"maxDepth,omitempty"`
	Workers  int          `yaml:"workers,omitempty"`
	Log      LogConfig    `yaml:"log,omitempty"`
}

// LogConfig selects the CLI log handler.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text or json
}

// Default returns the configuration used when no file exists: a SQLite
// database file in the working directory and the stock table names.
func Default() *Config {
	return &Config{
		Driver:   "sqlite",
		DSN:      "labelgraph.db",
		Tables:   graph.DefaultTables(),
		MaxDepth: graph.DefaultMaxDepth,
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load attempts to read labelgraph.yml or labelgraph.yaml from the given
// directory and applies environment overrides. Returns the defaults (not an
// error) if no config file exists.
func Load(dir string) (*Config, error) {
	cfg := Default()
	for _, name := range []string{"labelgraph.yml", "labelgraph.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", name, err)
		}
		break
	}
	cfg.applyEnv()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvDriver); ok && v != "" {
		c.Driver = v
	}
	if v, ok := os.LookupEnv(EnvDSN); ok && v != "" {
		c.DSN = v
	}
}

// fillDefaults restores defaults for keys the file set to empty values.
func (c *Config) fillDefaults() {
	d := Default()
	if c.Driver == "" {
		c.Driver = d.Driver
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = d.MaxDepth
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Driver) {
	case "sqlite", "sqlite3", "postgres", "postgresql", "pgsql", "mysql", "kuzu", "memory":
	default:
		return fmt.Errorf("config: unknown driver %q", c.Driver)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must not be negative")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("config: log level: %w", err)
	}
	return lvl, nil
}
