package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/artpar/apiref/adapters/catalog"
	"github.com/artpar/apiref/config"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the collection catalog",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the collection catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Catalog invalid: %v\n", err)
			os.Exit(1)
		}

		apis := cat.APIs()
		collections := 0
		for _, api := range apis {
			versions, err := cat.Versions(api)
			if err != nil {
				return err
			}
			for _, v := range versions {
				schemas, err := cat.Collections(api, v)
				if err != nil {
					return err
				}
				collections += len(schemas)
			}
		}

		fmt.Println("Catalog valid")
		fmt.Printf("  APIs:        %d\n", len(apis))
		fmt.Printf("  Collections: %d\n", collections)
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "COLLECTION\tVERSION\tPATH")
		for _, api := range cat.APIs() {
			versions, err := cat.Versions(api)
			if err != nil {
				return err
			}
			defaultVersion, err := cat.DefaultVersion(api)
			if err != nil {
				return err
			}
			for _, v := range versions {
				schemas, err := cat.Collections(api, v)
				if err != nil {
					return err
				}
				label := v
				if v == defaultVersion {
					label = v + " (default)"
				}
				for _, s := range schemas {
					fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID(), label, s.Path)
				}
			}
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogListCmd)
}

func loadCatalog() (*catalog.Catalog, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return catalog.Load(cfg.Catalog.Path)
}
