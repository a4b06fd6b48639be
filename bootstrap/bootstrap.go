// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/apiref/adapters/catalog"
	"github.com/artpar/apiref/adapters/clock"
	"github.com/artpar/apiref/adapters/idgen"
	"github.com/artpar/apiref/adapters/metrics"
	"github.com/artpar/apiref/adapters/sqlite"
	"github.com/artpar/apiref/app"
	"github.com/artpar/apiref/config"
	"github.com/artpar/apiref/ports"
	"github.com/artpar/apiref/web"
)

// Version is set at build time.
var Version = "dev"

// App represents the running application.
type App struct {
	Config     *config.Config
	Logger     zerolog.Logger
	DB         *sqlite.DB
	Catalog    *catalog.Holder
	Resolver   *app.ResolverService
	Metrics    *metrics.Collector
	HTTPServer *http.Server
}

// New creates and initializes the application from a loaded config.
func New(cfg *config.Config) (*App, error) {
	logger := NewLogger(cfg.Logging)
	logger.Info().Msg("initializing apiref")

	a := &App{
		Config: cfg,
		Logger: logger,
	}

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
		logger.Info().Msg("prometheus metrics enabled")
	}

	if err := a.initDatabase(); err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	if err := a.initCatalog(); err != nil {
		return nil, fmt.Errorf("init catalog: %w", err)
	}

	if err := a.initResolver(); err != nil {
		return nil, fmt.Errorf("init resolver: %w", err)
	}

	a.initHTTPServer()
	return a, nil
}

func (a *App) initDatabase() error {
	if a.Config.Database.DSN == "" {
		a.Logger.Info().Msg("no database configured, defaults are not persisted")
		return nil
	}

	db, err := sqlite.Open(a.Config.Database.DSN)
	if err != nil {
		return err
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return fmt.Errorf("migrate: %w", err)
	}

	a.DB = db
	a.Logger.Info().Str("dsn", a.Config.Database.DSN).Msg("database initialized")
	return nil
}

func (a *App) initCatalog() error {
	holder, err := catalog.NewHolder(a.Config.Catalog.Path, a.Logger)
	if err != nil {
		return err
	}
	a.Catalog = holder

	if a.Config.Catalog.Watch {
		if err := holder.WatchFile(); err != nil {
			a.Logger.Warn().Err(err).Msg("catalog file watch unavailable")
		}
	}
	holder.WatchSignals()

	a.Logger.Info().
		Str("path", a.Config.Catalog.Path).
		Int("apis", len(holder.APIs())).
		Msg("catalog loaded")
	return nil
}

func (a *App) initResolver() error {
	var store ports.DefaultStore
	if a.DB != nil {
		store = sqlite.NewDefaultStore(a.DB, clock.Real{})
	}

	seeds := make([]ports.ParamDefault, 0, len(a.Config.Defaults))
	for _, d := range a.Config.Defaults {
		seeds = append(seeds, ports.ParamDefault{
			API:        d.API,
			Collection: d.Collection,
			Param:      d.Param,
			Value:      d.Value,
		})
	}

	svc := app.NewResolverService(a.Catalog, store, a.Metrics, a.Logger, app.ResolverConfig{
		EndpointOverrides: a.Config.Endpoints.Overrides,
		CanonicalSuffixes: a.Config.Endpoints.CanonicalSuffixes,
		Seeds:             seeds,
	})
	if err := svc.Start(context.Background()); err != nil {
		return err
	}
	a.Resolver = svc

	// Rebuild the registry whenever the catalog is reloaded.
	a.Catalog.OnChange(func(c *catalog.Catalog) {
		if err := svc.Rebuild(context.Background()); err != nil {
			a.Logger.Error().Err(err).Msg("registry rebuild after catalog reload failed")
			if a.Metrics != nil {
				a.Metrics.CatalogReloadErrors.Inc()
			}
			return
		}
		if a.Metrics != nil {
			a.Metrics.CatalogReloads.Inc()
			a.Metrics.CatalogLastReload.SetToCurrentTime()
		}
	})

	return nil
}

func (a *App) initHTTPServer() {
	handler := web.NewHandler(web.Deps{
		Service: a.Resolver,
		Logger:  a.Logger,
		Metrics: a.Metrics,
		IDGen:   idgen.UUID{},
		Version: Version,
	})

	addr := fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.Port)
	a.HTTPServer = &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}

	a.Logger.Info().Str("addr", addr).Msg("http server configured")
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.Catalog != nil {
		a.Catalog.Stop()
	}

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

// NewLogger builds a zerolog logger from logging config.
func NewLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
