package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if !cfg.ShouldRewriteMain() {
		t.Error("rewrite_main defaults to true")
	}
	if cfg.MaxDepth != DefaultMaxDepth || cfg.PrintWidth != DefaultPrintWidth {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Level() != slog.LevelWarn {
		t.Errorf("expected warn level, got %v", cfg.Level())
	}
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		data  string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "yaml",
			path: "lazex.yaml",
			data: "rewrite_main: false\nmax_depth: 50\nlog_level: debug\ncolor: never\ntrace_rewrites: true\n",
			check: func(t *testing.T, cfg *Config) {
				if cfg.ShouldRewriteMain() {
					t.Error("expected rewrite_main false")
				}
				if cfg.MaxDepth != 50 || cfg.Level() != slog.LevelDebug || cfg.Color != ColorNever || !cfg.TraceRewrites {
					t.Errorf("unexpected config %+v", cfg)
				}
			},
		},
		{
			name: "toml",
			path: "lazex.toml",
			data: "max_depth = 300\nprint_width = 60\nlog_level = \"info\"\n",
			check: func(t *testing.T, cfg *Config) {
				if cfg.MaxDepth != 300 || cfg.PrintWidth != 60 || cfg.Level() != slog.LevelInfo {
					t.Errorf("unexpected config %+v", cfg)
				}
				if !cfg.ShouldRewriteMain() {
					t.Error("rewrite_main should default to true")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.data), tt.path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		data string
		want string
	}{
		{"bad_yaml", "lazex.yaml", "max_depth: [", "parsing lazex.yaml"},
		{"bad_toml", "lazex.toml", "max_depth = ", "parsing lazex.toml"},
		{"negative_depth", "lazex.yaml", "max_depth: -1", "max_depth must be positive"},
		{"bad_level", "lazex.yaml", "log_level: loud", "invalid log_level"},
		{"bad_color", "lazex.yaml", "color: rainbow", "color must be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data), tt.path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestFindAndResolve(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, path, err := Resolve("", nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" || cfg.MaxDepth != DefaultMaxDepth {
		t.Errorf("expected defaults without a file, got %q %+v", path, cfg)
	}

	file := filepath.Join(root, "lazex.toml")
	if err := os.WriteFile(file, []byte("max_depth = 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, path, err = Resolve("", nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != file || cfg.MaxDepth != 7 {
		t.Errorf("expected %s with max_depth 7, got %q %+v", file, path, cfg)
	}

	explicit := filepath.Join(root, "other.yaml")
	if err := os.WriteFile(explicit, []byte("max_depth: 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, _, err = Resolve(explicit, nested)
	if err != nil || cfg.MaxDepth != 9 {
		t.Errorf("expected explicit config to win, got %+v (%v)", cfg, err)
	}
}
