package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/relsearch/search-service/internal/app"
	"github.com/relsearch/search-service/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP search service",
	RunE: func(c *cobra.Command, args []string) error {
		logger, err := zap.NewProduction()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		srv, err := app.NewServer(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
		return srv.Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
