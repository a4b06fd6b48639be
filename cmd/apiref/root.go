package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "apiref",
	Short: "Resource identifier resolution for versioned REST collections",
	Long: `apiref resolves resource identifiers against a catalog of
versioned API collections.

It accepts fully qualified resource URLs, collection paths, and
storage shorthand, normalizes them to canonical self-links, and fills
in missing fields from configured defaults.

Quick start:
  apiref catalog validate   # Check the collection catalog
  apiref resolve URL...     # Resolve identifiers from the shell
  apiref serve              # Start the resolve API server`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "apiref.yaml", "config file path")
}
