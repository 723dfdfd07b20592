// Package cmd implements the searchserviced CLI: a cobra root command with
// serve and properties subcommands, adopted from this lineage's archiver
// CLI shape.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "searchserviced",
	Short: "Schema-aware relational attribute search service",
	Long: `searchserviced exposes a relational database as a schema-aware
search surface: a client supplies a projection of columns and an infix
filter expression, and the service synthesizes and executes the
corresponding SQL.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"path to a YAML config file (optional; RELSEARCH_* environment variables always apply)")
}
