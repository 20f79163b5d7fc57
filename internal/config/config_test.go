package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Extensions() derives unique extensions from include patterns
// - LoadConfig() uses defaults when no config file exists
// - LoadConfig() loads from .hdlast/config.yml when present
// - LoadConfig() loads from .hdlast/config.yaml when present
// - LoadConfig() merges config file with defaults
// - Environment variables override config file values
// - LoadConfig() returns error for malformed YAML
// - LoadConfig() returns error for invalid configuration values
// - Validate() rejects each invalid field with its sentinel
// - Validate() returns multiple errors for multiple invalid fields

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	tempDir := t.TempDir()
	dir := filepath.Join(tempDir, ".hdlast")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	return tempDir
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Contains(t, cfg.Paths.Include, "**/*.vhd")
	assert.Contains(t, cfg.Paths.Include, "**/*.v")
	assert.Contains(t, cfg.Paths.Ignore, ".git/**")

	assert.False(t, cfg.Export.Pretty)
	assert.Equal(t, "  ", cfg.Export.Indent)
	assert.Equal(t, "", cfg.Export.OutputDir)
	assert.Equal(t, 4, cfg.Export.Concurrency)

	assert.Equal(t, 1024, cfg.Cache.Capacity)
	assert.Equal(t, ".hdlast/hdlast.db", cfg.Storage.DBPath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "hdlast", cfg.MCP.Name)

	require.NoError(t, Validate(cfg))
}

func TestConfig_Extensions(t *testing.T) {
	t.Parallel()

	cfg := &Config{Paths: PathsConfig{Include: []string{
		"**/*.vhd", "rtl/*.vhd", "*.v", "top.sv", "**/*.sv",
	}}}
	assert.Equal(t, []string{".vhd", ".v", ".sv"}, cfg.Extensions())
}

func TestLoadConfig_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_LoadsFromConfigYml(t *testing.T) {
	t.Parallel()

	root := writeConfig(t, "config.yml", `
paths:
  include:
    - "rtl/**/*.vhd"
  ignore:
    - "tb/**"

export:
  pretty: true
  indent: "    "
  output_dir: out
  sort_instances: true
  concurrency: 2

cache:
  capacity: 0

storage:
  db_path: index.db

log:
  level: debug
`)

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"rtl/**/*.vhd"}, cfg.Paths.Include)
	assert.Equal(t, []string{"tb/**"}, cfg.Paths.Ignore)
	assert.True(t, cfg.Export.Pretty)
	assert.Equal(t, "    ", cfg.Export.Indent)
	assert.Equal(t, "out", cfg.Export.OutputDir)
	assert.True(t, cfg.Export.SortInstances)
	assert.Equal(t, 2, cfg.Export.Concurrency)
	assert.Equal(t, 0, cfg.Cache.Capacity)
	assert.Equal(t, "index.db", cfg.Storage.DBPath)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_LoadsFromConfigYaml(t *testing.T) {
	t.Parallel()

	root := writeConfig(t, "config.yaml", `
log:
  level: warn
`)

	cfg, err := LoadConfigFromDir(root)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfig_MergesConfigWithDefaults(t *testing.T) {
	t.Parallel()

	root := writeConfig(t, "config.yml", `
export:
  output_dir: json
`)

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Export.OutputDir)
	assert.Equal(t, Default().Paths.Include, cfg.Paths.Include)
	assert.Equal(t, Default().Cache.Capacity, cfg.Cache.Capacity)
	assert.Equal(t, Default().Export.Concurrency, cfg.Export.Concurrency)
}

func TestLoadConfig_EnvironmentVariablesOverrideConfigFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	root := writeConfig(t, "config.yml", `
export:
  output_dir: from-file
  concurrency: 2
log:
  level: debug
`)

	t.Setenv("HDLAST_EXPORT_OUTPUT_DIR", "from-env")
	t.Setenv("HDLAST_CACHE_CAPACITY", "16")
	t.Setenv("HDLAST_EXPORT_PRETTY", "true")

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Export.OutputDir)
	assert.Equal(t, 16, cfg.Cache.Capacity)
	assert.True(t, cfg.Export.Pretty)

	// Not overridden, should come from config file
	assert.Equal(t, 2, cfg.Export.Concurrency)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_ReturnsErrorForMalformedYaml(t *testing.T) {
	t.Parallel()

	root := writeConfig(t, "config.yml", `
export:
  output_dir: "unclosed quote
  concurrency: [
`)

	cfg, err := NewLoader(root).Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadConfig_ReturnsErrorForInvalidValues(t *testing.T) {
	t.Parallel()

	root := writeConfig(t, "config.yml", `
cache:
  capacity: -5
`)

	cfg, err := NewLoader(root).Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestValidate_RejectsInvalidFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"empty include", func(c *Config) { c.Paths.Include = nil }, ErrEmptyInclude},
		{"bad include glob", func(c *Config) { c.Paths.Include = []string{"rtl/[a"} }, ErrInvalidPattern},
		{"bad ignore glob", func(c *Config) { c.Paths.Ignore = []string{"tb/[z"} }, ErrInvalidPattern},
		{"zero concurrency", func(c *Config) { c.Export.Concurrency = 0 }, ErrInvalidConcurrency},
		{"negative capacity", func(c *Config) { c.Cache.Capacity = -1 }, ErrInvalidCapacity},
		{"empty db path", func(c *Config) { c.Storage.DBPath = " " }, ErrEmptyDBPath},
		{"unknown level", func(c *Config) { c.Log.Level = "verbose" }, ErrInvalidLogLevel},
		{"empty server name", func(c *Config) { c.MCP.Name = "" }, ErrEmptyServerName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, Validate(cfg), tt.want)
		})
	}
}

func TestValidate_ReturnsMultipleErrorsForMultipleInvalidFields(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Paths.Include = nil
	cfg.Cache.Capacity = -1
	cfg.Log.Level = "loud"

	err := Validate(cfg)
	require.Error(t, err)

	errMsg := err.Error()
	assert.Contains(t, errMsg, "validation failed")
	assert.Contains(t, errMsg, "include")
	assert.Contains(t, errMsg, "capacity")
	assert.Contains(t, errMsg, "loud")
	assert.ErrorIs(t, err, ErrEmptyInclude)
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
}
