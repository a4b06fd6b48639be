package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artpar/apiref/bootstrap"
	"github.com/artpar/apiref/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the resolve API server",
	Long: `Start the apiref HTTP server.

The server will:
  - Load configuration from apiref.yaml (or --config)
  - Or load configuration from APIREF_* environment variables
  - Load the collection catalog and watch it for changes
  - Serve resolution requests on /v1/resolve

Environment variables (for Docker deployments):
  APIREF_CATALOG_PATH   - Collection catalog path (required)
  APIREF_DATABASE_DSN   - Database path (default: apiref.db)
  APIREF_SERVER_PORT    - Server port (default: 8080)
  APIREF_LOG_LEVEL      - Log level: debug, info, warn, error

Examples:
  apiref serve
  apiref serve --config /etc/apiref/config.yaml

  # Docker (env vars only):
  APIREF_CATALOG_PATH=/etc/apiref/catalog.yaml apiref serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	app, err := bootstrap.New(cfg)
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}
