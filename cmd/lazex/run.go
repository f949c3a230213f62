package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/funvibe/lazex/internal/ast"
	"github.com/funvibe/lazex/internal/evaluator"
	"github.com/funvibe/lazex/internal/prettyprinter"
	"github.com/funvibe/lazex/internal/runner"
)

var errScriptFailed = errors.New("script failed")

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run a Lazex script",
	Args:  cobra.ExactArgs(1),
	RunE:  runScript,
}

func init() {
	runCmd.Flags().Bool("trace", false, "print each lazy function after its rewrite (overrides trace_rewrites)")
}

func runScript(cmd *cobra.Command, args []string) error {
	path := args[0]
	cfg, err := loadConfig(cmd, path)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("trace") {
		cfg.TraceRewrites, _ = cmd.Flags().GetBool("trace")
	}

	stderr := cmd.ErrOrStderr()
	opts := runner.Options{Config: cfg, Out: cmd.OutOrStdout()}
	if cfg.TraceRewrites {
		opts.OnRewrite = func(fn *evaluator.Function, decl *ast.FunctionStatement) {
			fmt.Fprintln(stderr, headerColor.Sprintf("-- rewrote %s --", fn.LazyName()))
			fmt.Fprintln(stderr, prettyprinter.Format(decl, cfg.PrintWidth))
		}
	}

	result, err := runner.RunFile(cmd.Context(), path, opts)
	if err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		printDiagnostics(stderr, result.Errors)
		return errScriptFailed
	}
	return nil
}
