package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "video-fetcher",
		Short:   "Ingest videos for a search query and serve them over HTTP",
		Long:    "video-fetcher polls the YouTube Data API for new videos matching a search query, stores them, and serves a paginated read API with cached statistics.",
		Version: version,
		// running without a subcommand starts the server
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), serveOptions{fetch: true})
		},
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("video-fetcher version {{.Version}}\n")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newFetchCmd())
	return rootCmd
}
