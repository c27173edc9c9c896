package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/aigov-scan/pkg/engine"
	"github.com/user/aigov-scan/pkg/logging"
)

const (
	ExitOK           = 0 // No Critical or High findings
	ExitFindings     = 1 // Critical or High findings present
	ExitInvalidInput = 2 // Unknown scan names, bad flags or inputs
	ExitRuntimeError = 3 // I/O or other fatal error
)

// BlockingError reports a completed run that found Critical or High issues.
type BlockingError struct {
	Count int
}

func (e *BlockingError) Error() string {
	return fmt.Sprintf("%d critical or high finding(s)", e.Count)
}

// UsageError wraps invalid command-line input.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

// HandleError maps a command error to the process exit status.
func HandleError(err error) int {
	if err == nil {
		return ExitOK
	}
	var blocking *BlockingError
	var usage *UsageError
	var validation *engine.ValidationError
	switch {
	case errors.As(err, &blocking):
		return ExitFindings
	case errors.As(err, &usage), errors.As(err, &validation):
		return ExitInvalidInput
	default:
		return ExitRuntimeError
	}
}

type rootOptions struct {
	debug  bool
	quiet  bool
	logger *slog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "aigov-scan",
		Short: "AI governance compliance scanner",
		Long: `aigov-scan checks AI/ML platform configurations against governance
controls (NIST AI RMF, ISO/IEC 42001, MITRE ATLAS), scores the risk and
writes an executive summary for every finding.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.quiet {
				opts.logger = logging.Discard()
				return
			}
			opts.logger = logging.New(stderr, opts.debug)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress log output")

	root.AddCommand(newScanCmd(opts))
	root.AddCommand(newListCmd(opts))
	root.AddCommand(newDiffCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	return root
}

func executeArgs(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.Execute()
	var blocking *BlockingError
	if err != nil && !errors.As(err, &blocking) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return HandleError(err)
}

// Execute runs the CLI and returns the process exit status.
func Execute() int {
	return executeArgs(os.Args[1:], os.Stdout, os.Stderr)
}
