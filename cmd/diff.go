package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/aigov-scan/pkg/engine"
	"github.com/user/aigov-scan/pkg/report"
)

func newDiffCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <baseline.json> <current.json>",
		Short: "Compare two saved scan snapshots",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return &UsageError{Err: fmt.Errorf("diff requires a baseline and a current snapshot, got %d argument(s)", len(args))}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			baseline, err := report.LoadSnapshot(args[0])
			if err != nil {
				return err
			}
			current, err := report.LoadSnapshot(args[1])
			if err != nil {
				return err
			}
			d := engine.Compare(current.Findings, baseline.Findings)
			if err := report.RenderDiff(cmd.OutOrStdout(), d); err != nil {
				return err
			}
			if d.Regressed() {
				n := 0
				for _, f := range d.New {
					if f.Severity.Blocking() {
						n++
					}
				}
				return &BlockingError{Count: n}
			}
			return nil
		},
	}
}
