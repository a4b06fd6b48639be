// Package app provides application services that orchestrate domain logic.
package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/apiref/adapters/metrics"
	"github.com/artpar/apiref/core/registry"
	"github.com/artpar/apiref/domain/collection"
	"github.com/artpar/apiref/domain/ref"
	"github.com/artpar/apiref/ports"
)

// ResolveRequest is one resolution call. Text holds the input in any
// accepted form (URL, storage shorthand, collection path); when Text is
// empty the reference is built entirely from Params. Collection names
// the expected collection and, for non-URL input, selects the grammar.
type ResolveRequest struct {
	Text       string
	Collection string
	Params     map[string]string
	Weak       bool
}

// Resolution is the outcome of a successful resolve.
type Resolution struct {
	Collection string
	Name       string
	SelfLink   string
	Params     map[string]string
}

// ResolverConfig carries the registry construction settings.
type ResolverConfig struct {
	EndpointOverrides map[string]string
	CanonicalSuffixes []string

	// Seeds are applied to every rebuilt registry before stored
	// defaults, so a persisted default wins over a configured one.
	Seeds []ports.ParamDefault
}

// ResolverService owns the registry and serializes access to it. The
// registry itself is single-threaded; the service's mutex is the only
// concurrency control, and a catalog reload swaps in a freshly built
// registry.
type ResolverService struct {
	catalog ports.CatalogSource
	store   ports.DefaultStore // optional
	metrics *metrics.Collector
	logger  zerolog.Logger
	cfg     ResolverConfig

	mu  sync.Mutex
	reg *registry.Registry
}

// NewResolverService creates a resolver service. store may be nil when
// defaults are not persisted.
func NewResolverService(
	catalog ports.CatalogSource,
	store ports.DefaultStore,
	collector *metrics.Collector,
	logger zerolog.Logger,
	cfg ResolverConfig,
) *ResolverService {
	return &ResolverService{
		catalog: catalog,
		store:   store,
		metrics: collector,
		logger:  logger.With().Str("service", "resolver").Logger(),
		cfg:     cfg,
	}
}

// Start builds the initial registry.
func (s *ResolverService) Start(ctx context.Context) error {
	return s.Rebuild(ctx)
}

// Rebuild constructs a fresh registry from the catalog, seeds it with
// configured and stored defaults, and swaps it in. Called at startup
// and after every catalog reload.
func (s *ResolverService) Rebuild(ctx context.Context) error {
	opts := make([]registry.Option, 0, len(s.cfg.EndpointOverrides)+1)
	for api, endpoint := range s.cfg.EndpointOverrides {
		opts = append(opts, registry.WithEndpointOverride(api, endpoint))
	}
	if len(s.cfg.CanonicalSuffixes) > 0 {
		opts = append(opts, registry.WithCanonicalSuffixes(s.cfg.CanonicalSuffixes...))
	}

	reg := registry.New(s.catalog, opts...)

	for _, d := range s.cfg.Seeds {
		if err := reg.SetDefault(d.API, d.Collection, d.Param, ref.Literal(d.Value)); err != nil {
			return err
		}
	}

	if s.store != nil {
		stored, err := s.store.List(ctx)
		if err != nil {
			return err
		}
		for _, d := range stored {
			if err := reg.SetDefault(d.API, d.Collection, d.Param, ref.Literal(d.Value)); err != nil {
				return err
			}
		}
	}

	s.mu.Lock()
	s.reg = reg
	s.mu.Unlock()

	s.logger.Info().
		Int("apis", len(s.catalog.APIs())).
		Msg("registry rebuilt")

	return nil
}

// Resolve parses and resolves one request.
func (s *ResolverService) Resolve(req ResolveRequest) (Resolution, error) {
	form := classifyForm(req.Text)
	start := time.Now()

	res, err := s.resolve(req)

	if s.metrics != nil {
		s.metrics.ParseDuration.WithLabelValues(form).Observe(time.Since(start).Seconds())
		s.metrics.ParsesTotal.WithLabelValues(form, outcome(err)).Inc()
	}

	if err != nil {
		s.logger.Debug().
			Err(err).
			Str("form", form).
			Str("text", req.Text).
			Msg("resolve failed")
		return Resolution{}, err
	}

	s.logger.Debug().
		Str("form", form).
		Str("collection", res.Collection).
		Str("self_link", res.SelfLink).
		Msg("resolved")
	return res, nil
}

func (s *ResolverService) resolve(req ResolveRequest) (Resolution, error) {
	context := make(map[string]ref.Resolver, len(req.Params))
	for k, v := range req.Params {
		context[k] = ref.Literal(v)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		r   *ref.Reference
		err error
	)
	if req.Text == "" {
		r, err = s.reg.Parse("", context, req.Collection, true, !req.Weak)
	} else {
		r, err = s.reg.Parse(req.Text, context, req.Collection, req.Collection != "", !req.Weak)
	}
	if err != nil {
		return Resolution{}, err
	}

	res := Resolution{Collection: r.Collection()}
	if req.Weak {
		res.SelfLink = r.WeakSelfLink()
		res.Params = r.Params()
		res.Name = res.Params[r.Schema().Terminal()]
		return res, nil
	}

	link, err := r.SelfLink()
	if err != nil {
		return Resolution{}, err
	}
	name, err := r.Name()
	if err != nil {
		return Resolution{}, err
	}
	res.SelfLink = link
	res.Name = name
	res.Params = r.Params()
	return res, nil
}

// Collections lists every collection in the catalog at its API's
// default version.
func (s *ResolverService) Collections() ([]collection.Schema, error) {
	var out []collection.Schema
	for _, api := range s.catalog.APIs() {
		version, err := s.catalog.DefaultVersion(api)
		if err != nil {
			return nil, err
		}
		schemas, err := s.catalog.Collections(api, version)
		if err != nil {
			return nil, err
		}
		out = append(out, schemas...)
	}
	if s.metrics != nil {
		s.metrics.RegisteredCollections.Set(float64(len(out)))
	}
	return out, nil
}

// SetDefault persists a parameter default and applies it to the live
// registry.
func (s *ResolverService) SetDefault(ctx context.Context, d ports.ParamDefault) error {
	if s.store != nil {
		if err := s.store.Set(ctx, d); err != nil {
			return err
		}
	}

	s.mu.Lock()
	err := s.reg.SetDefault(d.API, d.Collection, d.Param, ref.Literal(d.Value))
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("api", d.API).
		Str("collection", d.Collection).
		Str("param", d.Param).
		Msg("default set")
	return nil
}

// DeleteDefault removes a persisted default. The registry is rebuilt so
// the removal takes effect immediately.
func (s *ResolverService) DeleteDefault(ctx context.Context, api, collection, param string) error {
	if s.store != nil {
		if err := s.store.Delete(ctx, api, collection, param); err != nil {
			return err
		}
	}
	return s.Rebuild(ctx)
}

// Defaults lists persisted defaults. Returns nil when no store is
// configured.
func (s *ResolverService) Defaults(ctx context.Context) ([]ports.ParamDefault, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.List(ctx)
}

// classifyForm labels the input shape for metrics.
func classifyForm(text string) string {
	switch {
	case strings.HasPrefix(text, "https://") || strings.HasPrefix(text, "http://"):
		return "url"
	case strings.HasPrefix(text, "gs://"):
		return "storage"
	default:
		return "path"
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case registry.IsUserError(err):
		return "user_error"
	default:
		return "error"
	}
}
