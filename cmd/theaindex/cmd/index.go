package cmd

import (
	"github.com/spf13/cobra"
)

func newIndexCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "index <root>...",
		Short: "Run a full scan over one or more roots",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, _, err := buildCoordinator(opts, args...)
			if err != nil {
				return err
			}

			report, err := coord.StartFullScan(cmd.Context())
			if err != nil {
				return err
			}
			printReport(report)
			return nil
		},
	}
}
