package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lazex",
	Short: "Lazex interpreter with call-site lazy arguments",
	Long: `Lazex runs scripts whose lazy functions receive their arguments unevaluated.
Use "lazex run" to execute a script and "lazex rewrite" to see what the
one-shot rewrite installs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = Version
	rootCmd.AddCommand(runCmd, rewriteCmd, fmtCmd, versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to lazex.yaml or lazex.toml (default: nearest to the script)")
	rootCmd.PersistentFlags().String("color", "", "colorize output (auto|always|never)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")
}

func main() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(2)
		}
	}()

	// Interrupt cancels the running script between evaluation steps.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errScriptFailed) {
			printError(os.Stderr, err)
		}
		os.Exit(1)
	}
}
