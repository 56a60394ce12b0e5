package main

import (
	"context"

	"github.com/spf13/cobra"

	"bazaar/internal/app"
)

var (
	configPath  string
	catalogPath string
	logFile     string
)

var rootCmd = &cobra.Command{
	Use:   "bazaar",
	Short: "Search marketplace listings as you type",
	Long: `bazaar is a terminal search box over a local catalog of marketplace listings.

Results follow the query while you type. Keystrokes are debounced, every
dispatched query gets an increasing id, and only the answer to the latest
query is ever shown.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBrowse,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Config file (default: .bazaar.toml in the working directory)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Catalog database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (overrides config)")
}

// openApp wires the application from the global flags
func openApp(ctx context.Context) (*app.App, error) {
	return app.New(ctx, app.Options{
		ConfigPath:  configPath,
		CatalogPath: catalogPath,
		LogFile:     logFile,
	})
}
