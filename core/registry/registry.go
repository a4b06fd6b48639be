// Package registry implements the resource resolution engine: the catalog
// of collection schemas, the URL-matching trie, the collection-path
// grammar, and the parameter-default chain. A Registry turns short names,
// hierarchical path shorthand, or full URLs into structured references,
// and composes references back into canonical self-links.
//
// A Registry is plain mutable state with no internal locking. Isolation
// across concurrent uses is achieved only by CloneAndSwitchAPIs, never by
// built-in synchronization.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/artpar/apiref/domain/collection"
	"github.com/artpar/apiref/domain/ref"
	"github.com/artpar/apiref/ports"
)

// APIVersion names one version of one API, for SwitchAPI and
// CloneAndSwitchAPIs.
type APIVersion struct {
	Name    string
	Version string // empty means the catalog's default version
}

// Registry owns the three resolution indices: the active collection-path
// parsers, the append-only URL trie, and the default-resolver table. APIs
// are materialized lazily from the catalog the first time something in
// them is parsed.
type Registry struct {
	catalog ports.CatalogSource

	// pathParsers holds the one active parser per collection id. Version
	// switches replace entries; cross-API claims fail registration.
	pathParsers map[string]*Parser

	// urlTrie matches URL tokens: api name, api version, then template
	// segments. It never shrinks, so links issued under superseded
	// versions remain parseable.
	urlTrie *node

	defaults *defaultTable

	// registered tracks which (api, version) pairs have been expanded
	// into the indices.
	registered map[string]map[string]bool

	// overrides maps an api name to a replacement endpoint root.
	overrides map[string]string

	// suffixes are canonical domain suffixes: a host ending in one is
	// assumed to be "<api>.<suffix>" with the version as the first path
	// segment, if it looks like one.
	suffixes []string
}

// Option configures a Registry.
type Option func(*Registry)

// WithEndpointOverride replaces the endpoint root for one api. Overridden
// endpoints take precedence during URL parsing and are used as the base
// url of references parsed by collection path, so they are normalized to
// the trailing slash base urls carry.
func WithEndpointOverride(api, endpoint string) Option {
	return func(r *Registry) {
		if !strings.HasSuffix(endpoint, "/") {
			endpoint += "/"
		}
		r.overrides[api] = endpoint
	}
}

// WithCanonicalSuffixes sets the domain suffixes treated as canonical API
// hosts. The default is "googleapis.com".
func WithCanonicalSuffixes(suffixes ...string) Option {
	return func(r *Registry) {
		r.suffixes = append([]string(nil), suffixes...)
	}
}

// New creates an empty registry over a catalog.
func New(catalog ports.CatalogSource, opts ...Option) *Registry {
	r := &Registry{
		catalog:     catalog,
		pathParsers: make(map[string]*Parser),
		urlTrie:     newNode(),
		defaults:    newDefaultTable(),
		registered:  make(map[string]map[string]bool),
		overrides:   make(map[string]string),
		suffixes:    []string{"googleapis.com"},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterSchema registers one collection schema. Trie growth is
// idempotent and reuses existing branches. The path-parser entry is
// insert-or-fail: a second, distinct API claiming an already-registered
// collection id fails with AmbiguousAPIError. Replacing an API's parsers
// is a separate, explicit operation (SwitchAPI).
func (r *Registry) RegisterSchema(schema collection.Schema) error {
	if err := schema.Validate(); err != nil {
		return fmt.Errorf("register schema: %w", err)
	}
	parser := &Parser{reg: r, schema: schema}

	if existing, ok := r.pathParsers[schema.ID()]; ok {
		if existing.schema.BaseURL != schema.BaseURL || existing.schema.Version != schema.Version {
			return &AmbiguousAPIError{
				Collection: schema.ID(),
				BaseURLs:   []string{existing.schema.BaseURL, schema.BaseURL},
			}
		}
	}

	if err := r.addToTrie(parser); err != nil {
		return err
	}
	r.pathParsers[schema.ID()] = parser
	return nil
}

func (r *Registry) addToTrie(p *Parser) error {
	tokens := append([]string{p.schema.API, p.schema.Version}, splitPath(p.schema.Path)...)
	return r.urlTrie.insert(tokens, p)
}

// registerAPIVersion expands one (api, version) from the catalog into the
// indices. Already-registered versions are a no-op.
func (r *Registry) registerAPIVersion(api, version string) error {
	if r.registered[api][version] {
		return nil
	}
	schemas, err := r.catalog.Collections(api, version)
	if err != nil {
		return &catalogMissError{err: err}
	}
	for _, schema := range schemas {
		if err := r.RegisterSchema(schema); err != nil {
			return err
		}
	}
	if r.registered[api] == nil {
		r.registered[api] = make(map[string]bool)
	}
	r.registered[api][version] = true
	return nil
}

// registerAPIByName lazily registers an api, picking a version when none
// is given: the sole already-registered version if there is exactly one,
// else the catalog's default.
func (r *Registry) registerAPIByName(api, version string) (string, error) {
	if version == "" {
		if versions := r.registered[api]; len(versions) == 1 {
			for v := range versions {
				version = v
			}
		} else {
			v, err := r.catalog.DefaultVersion(api)
			if err != nil {
				return "", &catalogMissError{err: err}
			}
			version = v
		}
	}
	if err := r.registerAPIVersion(api, version); err != nil {
		return "", err
	}
	return version, nil
}

// ensureURLVersion makes an (api, version) matchable by the trie. When
// the api already has an active version, the requested one is expanded
// into the trie only: the active path parsers stay untouched, so links
// issued under superseded versions keep parsing without disturbing a
// version switch.
func (r *Registry) ensureURLVersion(api, version string) (string, error) {
	if version == "" || len(r.registered[api]) == 0 {
		return r.registerAPIByName(api, version)
	}
	if r.registered[api][version] {
		return version, nil
	}
	schemas, err := r.catalog.Collections(api, version)
	if err != nil {
		return "", &catalogMissError{err: err}
	}
	for _, schema := range schemas {
		if err := schema.Validate(); err != nil {
			return "", fmt.Errorf("register schema: %w", err)
		}
		if err := r.addToTrie(&Parser{reg: r, schema: schema}); err != nil {
			return "", err
		}
	}
	r.registered[api][version] = true
	return version, nil
}

// SwitchAPI intentionally replaces the active parsers of one API with
// another version's. The URL trie is left untouched so previously issued
// links remain parseable.
func (r *Registry) SwitchAPI(api APIVersion) error {
	for id, p := range r.pathParsers {
		if p.schema.API == api.Name {
			delete(r.pathParsers, id)
		}
	}
	delete(r.registered, api.Name)

	_, err := r.registerAPIByName(api.Name, api.Version)
	if err != nil {
		return fmt.Errorf("switch api %s: %w", api.Name, err)
	}
	return nil
}

// Clone deep-copies the registry's index spines. Parsers are re-created
// pointing at the clone, so resolution through the clone never touches
// the original's defaults or catalog state.
func (r *Registry) Clone() *Registry {
	clone := &Registry{
		catalog:     r.catalog,
		pathParsers: make(map[string]*Parser, len(r.pathParsers)),
		defaults:    r.defaults.clone(),
		registered:  make(map[string]map[string]bool, len(r.registered)),
		overrides:   make(map[string]string, len(r.overrides)),
		suffixes:    append([]string(nil), r.suffixes...),
	}
	remapped := make(map[*Parser]*Parser)
	remap := func(p *Parser) *Parser {
		if np, ok := remapped[p]; ok {
			return np
		}
		np := &Parser{reg: clone, schema: p.schema}
		remapped[p] = np
		return np
	}
	for id, p := range r.pathParsers {
		clone.pathParsers[id] = remap(p)
	}
	clone.urlTrie = r.urlTrie.clone(remap)
	for api, versions := range r.registered {
		vs := make(map[string]bool, len(versions))
		for v := range versions {
			vs[v] = true
		}
		clone.registered[api] = vs
	}
	for api, endpoint := range r.overrides {
		clone.overrides[api] = endpoint
	}
	return clone
}

// CloneAndSwitchAPIs clones the registry and switches the given APIs in
// the clone, leaving the original untouched. This is the isolation
// primitive for talking to two API versions at once.
func (r *Registry) CloneAndSwitchAPIs(apis ...APIVersion) (*Registry, error) {
	clone := r.Clone()
	for _, api := range apis {
		if err := clone.SwitchAPI(api); err != nil {
			return nil, err
		}
	}
	return clone, nil
}

// SetDefault registers a resolver for (param, api, collection). An empty
// collection is the wildcard matching every collection of the api. Later
// calls overwrite earlier ones.
func (r *Registry) SetDefault(api, collection, param string, resolver ref.Resolver) error {
	return r.defaults.set(api, collection, param, resolver)
}

// GetDefault evaluates the default for (param, api, collection), with the
// collection-specific entry taking precedence over the wildcard. Absence
// of both returns ok=false, not an error.
func (r *Registry) GetDefault(api, collection, param string) (value string, ok bool, err error) {
	resolver, ok := r.defaults.get(api, collection, param)
	if !ok {
		return "", false, nil
	}
	v, err := resolver.Resolve()
	if err != nil {
		return "", true, err
	}
	return v, true, nil
}

// ParseCollectionPath parses path text against a known collection,
// lazily registering the owning API. Only a catalog miss becomes an
// UnknownCollectionError; a defective catalog entry surfaces as the
// configuration error it is.
func (r *Registry) ParseCollectionPath(collectionID, path string, context map[string]ref.Resolver, resolve bool) (*ref.Reference, error) {
	api := apiNameFromCollection(collectionID)
	if _, err := r.registerAPIByName(api, ""); err != nil {
		if isCatalogMiss(err) {
			return nil, &UnknownCollectionError{Line: collectionID}
		}
		return nil, err
	}
	parser, ok := r.pathParsers[collectionID]
	if !ok {
		return nil, &UnknownCollectionError{Line: collectionID}
	}
	return parser.Parse(path, context, resolve, r.overrides[api])
}

// Create builds a reference for a known collection entirely from literal
// parameter values.
func (r *Registry) Create(collectionID string, params map[string]string) (*ref.Reference, error) {
	context := make(map[string]ref.Resolver, len(params))
	for k, v := range params {
		context[k] = ref.Literal(v)
	}
	return r.Parse("", context, collectionID, true, true)
}

// ActiveCollections returns the schemas of all currently-active path
// parsers, sorted by collection id.
func (r *Registry) ActiveCollections() []collection.Schema {
	out := make([]collection.Schema, 0, len(r.pathParsers))
	for _, p := range r.pathParsers {
		out = append(out, p.schema)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
