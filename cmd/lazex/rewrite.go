package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/funvibe/lazex/internal/runner"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite <file>",
	Short: "Print a script with every lazy call site rewritten",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		cfg, err := loadConfig(cmd, path)
		if err != nil {
			return err
		}
		source, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out, err := runner.Rewritten(string(source), path, cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}
