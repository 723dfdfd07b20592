package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/relsearch/search-service/internal/config"
	"github.com/relsearch/search-service/internal/properties"
	"github.com/relsearch/search-service/internal/schemagraph"
	"github.com/relsearch/search-service/internal/storage"
	"github.com/relsearch/search-service/internal/storage/mysql"
	"github.com/relsearch/search-service/internal/storage/postgres"
)

var propertiesCmd = &cobra.Command{
	Use:   "properties",
	Short: "Print the properties document for the configured backend",
	Long: `Fetches the catalog from the configured backend, builds the schema
graph, and prints the resulting properties document to stdout — useful for
inspecting connectivity subsets without going through the HTTP layer.`,
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		logger, err := zap.NewProduction()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		ctx := context.Background()
		store, err := newStorage(ctx, cfg, logger)
		if err != nil {
			return err
		}

		schema, err := store.GetCatalog(ctx)
		if err != nil {
			return err
		}
		graph := schemagraph.Build(schema)

		props, err := properties.Build(schema, graph, store.TranslateType)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(c.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(props)
	},
}

func init() {
	rootCmd.AddCommand(propertiesCmd)
}

func newStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	switch cfg.Backend {
	case "postgres":
		return postgres.Open(ctx, postgres.Config{
			ConnString:  cfg.PostgresConnString(),
			Schemas:     cfg.AllowedSchemas,
			SyntaxGuard: cfg.SyntaxGuard,
			CatalogTTL:  cfg.CatalogTTL,
		}, logger)
	case "mysql":
		return mysql.Open(mysql.Config{
			DSN:     cfg.MySQLDSN(),
			Schemas: cfg.AllowedSchemas,
		}, logger)
	default:
		return nil, fmt.Errorf("cmd: unknown backend %q", cfg.Backend)
	}
}
