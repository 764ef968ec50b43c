// Package config handles rosetool configuration loading and management.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Config holds all rosetool settings.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Inspect InspectConfig `yaml:"inspect"`
	Output  OutputConfig  `yaml:"output"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// InspectConfig controls how files and directories are scanned.
type InspectConfig struct {
	Workers        int      `yaml:"workers"`         // concurrent decoders, 0 = one per CPU
	Extensions     []string `yaml:"extensions"`      // file extensions picked up when walking directories
	FollowSymlinks bool     `yaml:"follow_symlinks"` // descend into symlinked directories
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Format      string `yaml:"format"`       // text, yaml or spew
	MaxVertices int    `yaml:"max_vertices"` // vertices included in dumps, 0 = all
}

// Output formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatSpew = "spew"
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Inspect: InspectConfig{
			Workers:        0,
			Extensions:     []string{".zms", ".zon"},
			FollowSymlinks: false,
		},
		Output: OutputConfig{
			Format:      FormatText,
			MaxVertices: 32,
		},
	}
}

// WorkerCount resolves Inspect.Workers, mapping 0 to the CPU count.
func (c *Config) WorkerCount() int {
	if c.Inspect.Workers > 0 {
		return c.Inspect.Workers
	}
	return runtime.NumCPU()
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case FormatText, FormatYAML, FormatSpew:
	default:
		return fmt.Errorf("output.format %q: want %s, %s or %s", c.Output.Format, FormatText, FormatYAML, FormatSpew)
	}
	if c.Inspect.Workers < 0 {
		return fmt.Errorf("inspect.workers %d is negative", c.Inspect.Workers)
	}
	if c.Output.MaxVertices < 0 {
		return fmt.Errorf("output.max_vertices %d is negative", c.Output.MaxVertices)
	}
	for i, ext := range c.Inspect.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("inspect.extensions[%d] %q must start with a dot", i, ext)
		}
	}
	return nil
}
