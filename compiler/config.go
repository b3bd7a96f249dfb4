// Package compiler drives the analysis pipeline end to end: it loads
// the project configuration, discovers schema and query sources, runs
// the analyzer, and hands the resulting descriptors to a language
// backend.
package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/syssam/surtype"
)

// ConfigName is the project configuration file looked up by FindConfig.
const ConfigName = "surtype.yaml"

// Config is the parsed project configuration.
type Config struct {
	Schema  SchemaConfig  `yaml:"schema"`
	Queries QueriesConfig `yaml:"queries"`
	Output  OutputConfig  `yaml:"output"`
}

// SchemaConfig locates the schema definition sources.
type SchemaConfig struct {
	// Path is a .surql file or a directory scanned recursively.
	Path string `yaml:"path"`
}

// QueriesConfig locates the query sources.
type QueriesConfig struct {
	// Path is a .surql file or a directory scanned recursively.
	Path string `yaml:"path"`
}

// OutputConfig controls the generated artifact.
type OutputConfig struct {
	Path string `yaml:"path"`

	// Language selects the backend: "typescript" (default) or "go".
	Language string `yaml:"language"`

	// Package is the package name for the Go backend.
	Package string `yaml:"package"`
}

// FindConfig searches start and its parents for ConfigName and returns
// the absolute path of the first match. It returns ErrConfigNotFound
// when no parent holds one.
func FindConfig(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, ConfigName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", surtype.ErrConfigNotFound
		}
		dir = parent
	}
}

// LoadConfig reads and validates the configuration file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, surtype.NewConfigError(path, err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, surtype.NewConfigError(path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, surtype.NewConfigError(path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Schema.Path == "" {
		return fmt.Errorf("schema.path is required")
	}
	if c.Queries.Path == "" {
		return fmt.Errorf("queries.path is required")
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output.path is required")
	}
	switch c.Output.Language {
	case "":
		c.Output.Language = "typescript"
	case "typescript", "go":
	default:
		return fmt.Errorf("output.language %q is not supported; use %q or %q", c.Output.Language, "typescript", "go")
	}
	return nil
}
