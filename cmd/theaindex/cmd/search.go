package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Atchoum23/Thea-sub019/internal/search"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var root string
	var mode string
	var topK int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search an index built over --root",
		Long: `Index the root, then run a query against it.

Examples:
  theaindex search "retry backoff" --root ./src
  theaindex search "the quick" --root ./notes --mode lexical -n 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			coord, _, err := buildCoordinator(opts, root)
			if err != nil {
				return err
			}
			if _, err := coord.StartFullScan(cmd.Context()); err != nil {
				return err
			}

			results, err := coord.Search(cmd.Context(), query, search.Mode(mode), topK)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("no results")
				return nil
			}
			for i, result := range results {
				fmt.Printf("%2d. %-40s score=%.4f\n", i+1, result.Doc.Path, result.Score)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", ".", "Root directory to index and search")
	cmd.Flags().StringVarP(&mode, "mode", "m", string(search.ModeSemantic), "Search mode: semantic or lexical")
	cmd.Flags().IntVarP(&topK, "top-k", "n", 0, "Maximum results (0 = configured default)")
	return cmd
}
