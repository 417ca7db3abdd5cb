package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/rentable/internal/logging"
	"github.com/dmitrijs2005/rentable/internal/server"
	"github.com/dmitrijs2005/rentable/internal/server/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// Flags are left to config.LoadConfig, which reads them from os.Args with
// the file and environment layers.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rentable-server",
		Short: "Rentable identity, profiles and storage backend",
	}

	root.AddCommand(&cobra.Command{
		Use:                "serve",
		Short:              "Run the gRPC and HTTP servers",
		DisableFlagParsing: true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			cfg := config.LoadConfig()
			logger := logging.NewJSON(os.Stdout, cfg.LogLevel)

			app, err := server.NewApp(ctx, cfg, logger)
			if err != nil {
				logger.Error(ctx, "init failed", "error", err)
				return err
			}
			return app.Run(ctx)
		},
	})

	migrate := &cobra.Command{
		Use:                "migrate",
		Short:              "Apply database migrations",
		DisableFlagParsing: true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return server.Migrate(cmd.Context(), config.LoadConfig(), false)
		},
	}
	migrate.AddCommand(&cobra.Command{
		Use:                "status",
		Short:              "Print migration status",
		DisableFlagParsing: true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return server.Migrate(cmd.Context(), config.LoadConfig(), true)
		},
	})
	root.AddCommand(migrate)

	return root
}
