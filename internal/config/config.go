// Package config loads hdlast project configuration from .hdlast/config.yml
// with HDLAST_* environment variable overrides.
package config

// Config represents the complete hdlast configuration.
type Config struct {
	Paths   PathsConfig   `yaml:"paths" mapstructure:"paths"`
	Export  ExportConfig  `yaml:"export" mapstructure:"export"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	MCP     MCPConfig     `yaml:"mcp" mapstructure:"mcp"`
}

// PathsConfig defines which HDL files are processed.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for HDL sources
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to ignore
}

// ExportConfig controls JSON export output.
type ExportConfig struct {
	Pretty        bool   `yaml:"pretty" mapstructure:"pretty"`                 // indent output
	Indent        string `yaml:"indent" mapstructure:"indent"`                 // indent unit when pretty
	OutputDir     string `yaml:"output_dir" mapstructure:"output_dir"`         // empty writes to stdout
	SortInstances bool   `yaml:"sort_instances" mapstructure:"sort_instances"` // order instances by name
	Concurrency   int    `yaml:"concurrency" mapstructure:"concurrency"`       // parallel parsers
}

// CacheConfig configures the in-memory parse cache.
type CacheConfig struct {
	Capacity int `yaml:"capacity" mapstructure:"capacity"` // max cached files, 0 disables
}

// StorageConfig configures the SQLite index.
type StorageConfig struct {
	DBPath string `yaml:"db_path" mapstructure:"db_path"` // relative to the project root
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // debug, info, warn or error
}

// MCPConfig configures the MCP server identity.
type MCPConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Include: []string{
				"**/*.vhd",
				"**/*.vhdl",
				"**/*.v",
				"**/*.sv",
			},
			Ignore: []string{
				".git/**",
				".hdlast/**",
				"build/**",
				"sim_build/**",
				"work/**",
			},
		},
		Export: ExportConfig{
			Pretty:      false,
			Indent:      "  ",
			OutputDir:   "",
			Concurrency: 4,
		},
		Cache: CacheConfig{
			Capacity: 1024,
		},
		Storage: StorageConfig{
			DBPath: ".hdlast/hdlast.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		MCP: MCPConfig{
			Name:    "hdlast",
			Version: "1.0.0",
		},
	}
}

// Extensions extracts unique file extensions from the include patterns.
// Returns extensions with leading dot (e.g., []string{".vhd", ".v"}).
func (c *Config) Extensions() []string {
	seen := make(map[string]bool)
	var exts []string
	for _, pattern := range c.Paths.Include {
		if ext := extractExtension(pattern); ext != "" && !seen[ext] {
			seen[ext] = true
			exts = append(exts, ext)
		}
	}
	return exts
}

// extractExtension extracts the file extension from a glob pattern.
// Examples: "**/*.vhd" -> ".vhd", "*.v" -> ".v", "rtl/top.sv" -> "".
func extractExtension(pattern string) string {
	for i := len(pattern) - 1; i >= 1; i-- {
		if pattern[i] == '.' && pattern[i-1] == '*' {
			return pattern[i:]
		}
	}
	return ""
}
