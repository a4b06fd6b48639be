package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/artpar/apiref/adapters/catalog"
	"github.com/artpar/apiref/adapters/clock"
	"github.com/artpar/apiref/adapters/sqlite"
	"github.com/artpar/apiref/app"
	"github.com/artpar/apiref/config"
	"github.com/artpar/apiref/ports"
)

var (
	resolveCollection string
	resolveParams     map[string]string
	resolveWeak       bool
	resolveJSON       bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [flags] [TEXT...]",
	Short: "Resolve resource identifiers to canonical self-links",
	Long: `Resolve one or more resource identifiers against the catalog.

Each TEXT may be a resource URL, a collection path, or storage
shorthand. With no TEXT, the resource is built entirely from --param
values and defaults, which requires --collection.

Examples:
  apiref resolve https://svc.googleapis.com/v1/projects/p1/widgets/w1
  apiref resolve --collection svc.projects.widgets p1/w1
  apiref resolve --collection svc.projects.widgets --param widget=w1 --weak
  apiref resolve --json gs://bucket/object.txt`,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVar(&resolveCollection, "collection", "", "collection the identifiers must belong to")
	resolveCmd.Flags().StringToStringVar(&resolveParams, "param", nil, "parameter value as key=value (repeatable)")
	resolveCmd.Flags().BoolVar(&resolveWeak, "weak", false, "allow unresolved fields, shown as *")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "print full resolutions as JSON")
}

func runResolve(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && resolveCollection == "" {
		return fmt.Errorf("either TEXT arguments or --collection is required")
	}

	svc, cleanup, err := newCLIService()
	if err != nil {
		return err
	}
	defer cleanup()

	requests := make([]app.ResolveRequest, 0, len(args))
	if len(args) == 0 {
		requests = append(requests, app.ResolveRequest{
			Collection: resolveCollection,
			Params:     resolveParams,
			Weak:       resolveWeak,
		})
	}
	for _, text := range args {
		requests = append(requests, app.ResolveRequest{
			Text:       text,
			Collection: resolveCollection,
			Params:     resolveParams,
			Weak:       resolveWeak,
		})
	}

	var results []app.Resolution
	for _, req := range requests {
		res, err := svc.Resolve(req)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	if resolveJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for _, res := range results {
		fmt.Println(res.SelfLink)
	}
	return nil
}

// newCLIService builds a resolver service for one-shot commands. The
// returned cleanup closes the database when one was opened.
func newCLIService() (*app.ResolverService, func(), error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading config: %w", err)
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading catalog: %w", err)
	}

	cleanup := func() {}
	var store ports.DefaultStore
	if cfg.Database.DSN != "" {
		db, err := sqlite.Open(cfg.Database.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("error opening database: %w", err)
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		store = sqlite.NewDefaultStore(db, clock.Real{})
		cleanup = func() { db.Close() }
	}

	seeds := make([]ports.ParamDefault, 0, len(cfg.Defaults))
	for _, d := range cfg.Defaults {
		seeds = append(seeds, ports.ParamDefault{
			API:        d.API,
			Collection: d.Collection,
			Param:      d.Param,
			Value:      d.Value,
		})
	}

	svc := app.NewResolverService(cat, store, nil, zerolog.Nop(), app.ResolverConfig{
		EndpointOverrides: cfg.Endpoints.Overrides,
		CanonicalSuffixes: cfg.Endpoints.CanonicalSuffixes,
		Seeds:             seeds,
	})
	if err := svc.Start(context.Background()); err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}
