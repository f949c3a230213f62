package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/funvibe/lazex/internal/runner"
	"github.com/funvibe/lazex/internal/utils"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] <path> [path...]",
	Short: "Format Lazex source files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFmt,
}

func init() {
	fmtCmd.Flags().Bool("check", false, "report files that are not formatted instead of rewriting them")
	fmtCmd.Flags().Bool("stdout", false, "print formatted code to stdout instead of rewriting files")
	fmtCmd.Flags().Int("width", 0, "line width (default: print_width from config)")
}

func runFmt(cmd *cobra.Command, args []string) error {
	check, _ := cmd.Flags().GetBool("check")
	toStdout, _ := cmd.Flags().GetBool("stdout")
	if check && toStdout {
		return fmt.Errorf("fmt: --stdout cannot be used with --check")
	}

	paths, err := utils.ExpandSources(args)
	if err != nil {
		return err
	}

	var unformatted []string
	for _, path := range paths {
		cfg, err := loadConfig(cmd, path)
		if err != nil {
			return err
		}
		width := cfg.PrintWidth
		if w, _ := cmd.Flags().GetInt("width"); w > 0 {
			width = w
		}

		source, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		formatted, err := runner.Formatted(string(source), path, width)
		if err != nil {
			return err
		}

		switch {
		case toStdout:
			fmt.Fprint(cmd.OutOrStdout(), formatted)
		case check:
			if !bytes.Equal(source, []byte(formatted)) {
				unformatted = append(unformatted, path)
			}
		default:
			if bytes.Equal(source, []byte(formatted)) {
				continue
			}
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(formatted), info.Mode().Perm()); err != nil {
				return err
			}
		}
	}

	for _, path := range unformatted {
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	if len(unformatted) > 0 {
		return fmt.Errorf("fmt: %d file(s) need formatting", len(unformatted))
	}
	return nil
}
