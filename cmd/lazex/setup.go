package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/funvibe/lazex/internal/config"
	"github.com/funvibe/lazex/internal/diagnostics"
	"github.com/funvibe/lazex/internal/utils"
)

var (
	errorColor  = color.New(color.FgRed, color.Bold)
	headerColor = color.New(color.FgCyan)
)

// loadConfig resolves the configuration for script, applies the global
// flags on top of it and installs the logger and colour mode.
func loadConfig(cmd *cobra.Command, script string) (*config.Config, error) {
	explicit, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, path, err := config.Resolve(explicit, utils.ScriptDir(script))
	if err != nil {
		return nil, err
	}

	if mode, _ := cmd.Root().PersistentFlags().GetString("color"); mode != "" {
		cfg.Color = config.ColorMode(mode)
	}
	if level, _ := cmd.Root().PersistentFlags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if err := checkOverrides(cfg); err != nil {
		return nil, err
	}

	setupLogging(cmd.ErrOrStderr(), cfg.Level())
	setupColor(cfg.Color)
	if path != "" {
		slog.Debug("loaded config", "path", path)
	}
	return cfg, nil
}

func checkOverrides(cfg *config.Config) error {
	switch cfg.Color {
	case config.ColorAuto, config.ColorAlways, config.ColorNever:
	default:
		return fmt.Errorf("--color must be auto, always or never, got %q", cfg.Color)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q", cfg.LogLevel)
	}
	return nil
}

func setupLogging(w io.Writer, level slog.Level) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func setupColor(mode config.ColorMode) {
	switch mode {
	case config.ColorAlways:
		color.NoColor = false
	case config.ColorNever:
		color.NoColor = true
	default:
		fd := os.Stderr.Fd()
		color.NoColor = !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
	}
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %s\n", errorColor.Sprint("Error:"), err)
}

func printDiagnostics(w io.Writer, errs []*diagnostics.DiagnosticError) {
	fmt.Fprintln(w, errorColor.Sprint("Processing failed with errors:"))
	for _, err := range errs {
		fmt.Fprintf(w, "- %s\n", err.Error())
	}
}
