// Package config loads jobbind settings from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/me/jobbind/internal/pathmap"
)

// PathMapping rewrites host paths under From to paths under To.
type PathMapping struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Config holds settings shared by the CLI and the server.
type Config struct {
	Addr          string        `yaml:"addr"`       // Listen address (default ":8080")
	LogLevel      string        `yaml:"log_level"`  // debug, info, warn, error
	LogFormat     string        `yaml:"log_format"` // text, json
	DBPath        string        `yaml:"db_path"`    // SQLite path; empty disables persistence, ":memory:" for testing
	WorkRoot      string        `yaml:"work_root"`  // Parent of per-job working directories
	MapInputs     bool          `yaml:"map_inputs"` // Translate staged input paths through the mapper
	PathMappings  []PathMapping `yaml:"path_mappings"`
	StrictMapping bool          `yaml:"strict_mapping"` // Fail on paths no mapping covers
}

// Default returns sensible defaults.
func Default() Config {
	return Config{
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "text",
		WorkRoot:  "work",
	}
}

// Load reads a YAML file over the defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Mapper returns the path mapper described by the configuration. With no
// mappings and non-strict mode it is the identity.
func (c Config) Mapper() pathmap.Mapper {
	if len(c.PathMappings) == 0 && !c.StrictMapping {
		return pathmap.Identity
	}
	rules := make([]pathmap.Rule, len(c.PathMappings))
	for i, m := range c.PathMappings {
		rules[i] = pathmap.Rule{From: m.From, To: m.To}
	}
	return pathmap.NewPrefixMapper(c.StrictMapping, rules...)
}
