package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <root>...",
		Short: "Index the roots, then keep the index fresh until interrupted",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, cfg, err := buildCoordinator(opts, args...)
			if err != nil {
				return err
			}
			cfg.Watcher.Enabled = true

			report, err := coord.StartFullScan(cmd.Context())
			if err != nil {
				return err
			}
			printReport(report)

			if err := coord.StartWatching(cmd.Context()); err != nil {
				return err
			}
			defer coord.StopWatching()

			fmt.Println("watching for changes, press Ctrl-C to stop")
			<-cmd.Context().Done()
			return nil
		},
	}
}
