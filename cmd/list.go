package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/aigov-scan/pkg/scans"
)

func newListCmd(root *rootOptions) *cobra.Command {
	var controls bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available scans",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := scans.NewRegistry(scans.Target{}, nil, nil)
			if err != nil {
				return err
			}
			catalog, err := scans.DefaultCatalog()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SCAN\tDESCRIPTION")
			for _, info := range registry.Describe() {
				fmt.Fprintf(w, "%s\t%s\n", info.Name, info.Description)
				if !controls {
					continue
				}
				profile, _ := catalog.Profile(info.Name)
				for _, ctl := range profile.Controls {
					fmt.Fprintf(w, "  %s\t%s\n", ctl.ID, ctl.Severity)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&controls, "controls", false, "Also list the controls each scan checks")
	return cmd
}
