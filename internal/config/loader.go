package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (HDLAST_*)
// 2. Config file (.hdlast/config.yml or .hdlast/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(l.rootDir, ".hdlast"))

	// HDLAST_EXPORT_OUTPUT_DIR -> export.output_dir
	v.SetEnvPrefix("HDLAST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range []string{
		"export.pretty",
		"export.indent",
		"export.output_dir",
		"export.sort_instances",
		"export.concurrency",
		"cache.capacity",
		"storage.db_path",
		"log.level",
		"mcp.name",
		"mcp.version",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine: defaults + env vars apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("export.pretty", defaults.Export.Pretty)
	v.SetDefault("export.indent", defaults.Export.Indent)
	v.SetDefault("export.output_dir", defaults.Export.OutputDir)
	v.SetDefault("export.sort_instances", defaults.Export.SortInstances)
	v.SetDefault("export.concurrency", defaults.Export.Concurrency)

	v.SetDefault("cache.capacity", defaults.Cache.Capacity)
	v.SetDefault("storage.db_path", defaults.Storage.DBPath)
	v.SetDefault("log.level", defaults.Log.Level)

	v.SetDefault("mcp.name", defaults.MCP.Name)
	v.SetDefault("mcp.version", defaults.MCP.Version)
}

// LoadConfig is a convenience function that loads config rooted at the
// current working directory.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
