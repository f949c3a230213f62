package utils

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestScriptDir(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"scripts/main.lx", "scripts"},
		{"scripts/lib.lazex", "scripts"},
		{"scripts", "scripts"},
		{"main.lx", "."},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := ScriptDir(tt.path); got != tt.want {
				t.Errorf("ScriptDir(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestExpandSources(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.lx", "a.lx", "notes.txt", filepath.Join("sub", "c.lazex")} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	single := filepath.Join(dir, "notes.txt")

	got, err := ExpandSources([]string{single, dir})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		single,
		filepath.Join(dir, "a.lx"),
		filepath.Join(dir, "b.lx"),
		filepath.Join(dir, "sub", "c.lazex"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExpandSources = %v, want %v", got, want)
	}

	if _, err := ExpandSources([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Error("expected an error for a missing path")
	}
}
