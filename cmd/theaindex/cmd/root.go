// Package cmd provides the CLI commands for theaindex.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Atchoum23/Thea-sub019/internal/config"
	"github.com/Atchoum23/Thea-sub019/internal/embed"
	"github.com/Atchoum23/Thea-sub019/internal/index"
	"github.com/Atchoum23/Thea-sub019/internal/logging"
)

// rootOptions holds flags shared by all subcommands.
type rootOptions struct {
	configPath string
	logLevel   string
	offline    bool
}

// NewRootCmd creates the root command for the theaindex CLI.
func NewRootCmd() *cobra.Command {
	var opts rootOptions
	var loggingCleanup func()

	cmd := &cobra.Command{
		Use:   "theaindex",
		Short: "Local document indexing and semantic search",
		Long: `theaindex walks filesystem roots, extracts text, computes embeddings,
and answers semantic and lexical queries over an in-memory index.

When no embedding service is reachable it falls back to deterministic
local embeddings, so search keeps working in lexical-quality mode.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cleanup, err := logging.SetupDefault(logging.Config{
				Level:         opts.logLevel,
				WriteToStderr: true,
			})
			if err != nil {
				return err
			}
			loggingCleanup = cleanup
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if loggingCleanup != nil {
				loggingCleanup()
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config file (YAML)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&opts.offline, "offline", false, "Skip the embedding service, use deterministic embeddings")

	cmd.AddCommand(newIndexCmd(&opts))
	cmd.AddCommand(newSearchCmd(&opts))
	cmd.AddCommand(newStatsCmd(&opts))
	cmd.AddCommand(newWatchCmd(&opts))

	return cmd
}

// loadConfig loads the configured file or defaults.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	if opts.configPath != "" {
		return config.Load(opts.configPath)
	}
	cfg := config.Default()
	cfg.LogLevel = opts.logLevel
	return cfg, nil
}

// buildEmbedder assembles the production embedder stack:
// LRU cache over a chain of HTTP primary and deterministic fallback.
// With --offline only the fallback is used.
func buildEmbedder(cfg *config.Config, offline bool) (embed.Embedder, error) {
	fallback := embed.NewFallbackEmbedder(cfg.Embedding.Dimensions)
	if offline {
		return embed.NewCachedEmbedder(fallback, cfg.Embedding.CacheSize)
	}

	primary := embed.NewHTTPEmbedder(
		cfg.Embedding.Endpoint,
		cfg.Embedding.Model,
		cfg.Embedding.Dimensions,
		cfg.Embedding.EmbedTimeout(),
	)
	chain, err := embed.NewChainEmbedder(primary, fallback)
	if err != nil {
		return nil, err
	}
	return embed.NewCachedEmbedder(chain, cfg.Embedding.CacheSize)
}

// buildCoordinator builds the full pipeline for the given roots.
// Roots passed on the command line override the configured ones.
func buildCoordinator(opts *rootOptions, roots ...string) (*index.Coordinator, *config.Config, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	if len(roots) > 0 {
		cfg.Scan.Roots = roots
	}
	if len(cfg.Scan.Roots) == 0 {
		return nil, nil, fmt.Errorf("no scan roots configured; pass a root argument or set scan.roots")
	}

	embedder, err := buildEmbedder(cfg, opts.offline)
	if err != nil {
		return nil, nil, err
	}
	return index.NewCoordinator(cfg, embedder), cfg, nil
}

// printReport writes a human-readable scan report.
func printReport(report *index.ScanReport) {
	fmt.Printf("Indexed %d files (%d skipped) in %s\n",
		report.Indexed, report.Skipped, report.Duration.Round(1e6))
	for reason, n := range report.SkipReasons {
		fmt.Printf("  skipped %-18s %d\n", reason+":", n)
	}
	for _, root := range report.MissingRoots {
		fmt.Fprintf(os.Stderr, "warning: root not found: %s\n", root)
	}
}
