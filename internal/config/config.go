// Package config provides configuration management for sigil using Viper:
// YAML files, environment variable overrides with the SIGIL_ prefix, and
// command-line flags. It covers template scan paths, output settings, the
// render context, and the watch/preview options.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Templates TemplatesConfig `yaml:"templates"`
	Output    OutputConfig    `yaml:"output"`
	Server    ServerConfig    `yaml:"server"`
	Watch     WatchConfig     `yaml:"watch"`
}

type TemplatesConfig struct {
	ScanPaths       []string `yaml:"scan_paths"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
	// Context is the default render context: "component" or "layout".
	// Layout templates under LayoutDirs compile in the layout context.
	Context    string   `yaml:"context"`
	LayoutDirs []string `yaml:"layout_dirs"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
	// Extension of generated files, ".jsx" or ".tsx".
	Extension string `yaml:"extension"`
}

type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

type WatchConfig struct {
	DebounceMillis int `yaml:"debounce_millis"`
}

// Load builds the configuration from Viper's merged sources.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Apply defaults only when the value was not explicitly set.
	if !viper.IsSet("templates.scan_paths") && len(config.Templates.ScanPaths) == 0 {
		config.Templates.ScanPaths = []string{"./src"}
	}
	if viper.IsSet("templates.scan_paths") && len(config.Templates.ScanPaths) == 0 {
		config.Templates.ScanPaths = viper.GetStringSlice("templates.scan_paths")
	}
	if config.Templates.Context == "" {
		config.Templates.Context = "component"
	}
	if config.Output.Dir == "" {
		config.Output.Dir = "./dist"
	}
	if config.Output.Extension == "" {
		config.Output.Extension = ".tsx"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 4200
	}
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if config.Watch.DebounceMillis == 0 {
		config.Watch.DebounceMillis = 300
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the values that would fail late and confusingly
// otherwise.
func (c *Config) Validate() error {
	switch c.Templates.Context {
	case "component", "layout":
	default:
		return fmt.Errorf("templates.context must be \"component\" or \"layout\", got %q", c.Templates.Context)
	}

	ext := c.Output.Extension
	if !strings.HasPrefix(ext, ".") {
		return fmt.Errorf("output.extension must start with a dot, got %q", ext)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}

	return nil
}

// IsLayoutPath reports whether a template path falls under a configured
// layout directory.
func (c *Config) IsLayoutPath(path string) bool {
	normalized := strings.ReplaceAll(path, "\\", "/")
	for _, dir := range c.Templates.LayoutDirs {
		dir = strings.Trim(strings.ReplaceAll(dir, "\\", "/"), "/")
		if dir == "" {
			continue
		}
		if strings.Contains(normalized, "/"+dir+"/") || strings.HasPrefix(normalized, dir+"/") {
			return true
		}
	}
	return false
}
