package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <root>...",
		Short: "Index the roots and print statistics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, _, err := buildCoordinator(opts, args...)
			if err != nil {
				return err
			}
			if _, err := coord.StartFullScan(cmd.Context()); err != nil {
				return err
			}

			stats := coord.Statistics()
			fmt.Printf("Files:       %d\n", stats.TotalFiles)
			fmt.Printf("Total bytes: %d\n", stats.TotalSizeBytes)
			for fileType, n := range stats.CountsByType {
				fmt.Printf("  %-10s %d\n", string(fileType)+":", n)
			}
			if !stats.OldestModified.IsZero() {
				fmt.Printf("Oldest mod:  %s\n", stats.OldestModified.Format("2006-01-02 15:04:05"))
				fmt.Printf("Newest mod:  %s\n", stats.NewestModified.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}
