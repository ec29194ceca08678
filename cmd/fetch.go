package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"video-fetcher/infrastructure/configuration"
	"video-fetcher/server"

	"github.com/spf13/cobra"
)

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Run a single ingestion cycle and print its result",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := server.Bootstrap(ctx, configuration.C)
			if err != nil {
				return err
			}
			defer app.Close(ctx)

			if app.Fetcher == nil {
				return errors.New("no YouTube API keys configured: set YOUTUBE_API_KEYS")
			}
			res, err := app.Fetcher.FetchAndStore(ctx)
			if err != nil {
				return fmt.Errorf("fetch failed: %w", err)
			}
			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
