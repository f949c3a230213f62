package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ColorMode controls CLI output colouring.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Config is read from lazex.yaml or lazex.toml.
type Config struct {
	// RewriteMain rewrites top-level calls to `lazy fun` declarations.
	// A pointer so an explicit false survives defaulting.
	RewriteMain *bool `yaml:"rewrite_main" toml:"rewrite_main"`

	// MaxDepth bounds evaluation nesting.
	MaxDepth int `yaml:"max_depth" toml:"max_depth"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" toml:"log_level"`

	Color ColorMode `yaml:"color" toml:"color"`

	// TraceRewrites prints each lazy function after its one-shot rewrite.
	TraceRewrites bool `yaml:"trace_rewrites" toml:"trace_rewrites"`

	// PrintWidth is the line width used by `lazex fmt`.
	PrintWidth int `yaml:"print_width" toml:"print_width"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// ShouldRewriteMain reports whether the main chunk is rewritten.
func (c *Config) ShouldRewriteMain() bool {
	return c.RewriteMain == nil || *c.RewriteMain
}

// Level maps LogLevel to a slog level. Unknown names were rejected on load.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return level
}

// LoadConfig reads a config file. The format follows the extension.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses config content from bytes.
// The path argument selects the format and is used in error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	cfg.setDefaults()
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindConfig searches for a config file starting from dir and walking up
// to parent directories. It returns "" and nil when none exists.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", nil
		}
		dir = parent
	}
}

// Resolve loads the explicit path when given, otherwise the nearest config
// file above scriptDir, otherwise the defaults.
func Resolve(explicit, scriptDir string) (*Config, string, error) {
	path := explicit
	if path == "" {
		found, err := FindConfig(scriptDir)
		if err != nil {
			return nil, "", err
		}
		path = found
	}
	if path == "" {
		return Default(), "", nil
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func (c *Config) setDefaults() {
	if c.MaxDepth == 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.PrintWidth == 0 {
		c.PrintWidth = DefaultPrintWidth
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Color == "" {
		c.Color = ColorAuto
	}
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("%s: max_depth must be positive, got %d", path, c.MaxDepth)
	}
	if c.PrintWidth < 0 {
		return fmt.Errorf("%s: print_width must be positive, got %d", path, c.PrintWidth)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("%s: invalid log_level %q", path, c.LogLevel)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%s: color must be auto, always or never, got %q", path, c.Color)
	}
	return nil
}
