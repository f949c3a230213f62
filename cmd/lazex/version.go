package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/funvibe/lazex/internal/config"
)

// Version can be overridden at build time via -ldflags "-X main.Version=...".
var Version = "0.1.0-dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the lazex version",
	Run: func(cmd *cobra.Command, args []string) {
		if mode, _ := cmd.Root().PersistentFlags().GetString("color"); mode != "" {
			setupColor(config.ColorMode(mode))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "lazex %s\n", color.New(color.FgGreen, color.Bold).Sprint(Version))
	},
}
