package ref

import (
	"net/url"

	"github.com/artpar/apiref/domain/collection"
)

// DefaultsFunc looks up a registered default value for a parameter.
// Returning false means no default is available; that is not an error.
type DefaultsFunc func(param string) (string, bool)

// Reference identifies a single resource instance in a collection. It is
// created unresolved by a parser: leading fields may be empty until
// WeakResolve or Resolve fills them from context resolvers or registered
// defaults. Filled fields are never overwritten, so a fully resolved
// reference is effectively immutable.
type Reference struct {
	schema   collection.Schema
	baseURL  string
	values   map[string]string
	context  map[string]Resolver
	path     string // original user-supplied text, kept for error messages
	defaults DefaultsFunc

	selfLink string
	name     string
}

// New creates a possibly partially-resolved reference. Empty entries in
// values are treated as unset. baseURL overrides the schema's endpoint
// when non-empty.
func New(schema collection.Schema, baseURL string, values map[string]string, context map[string]Resolver, path string, defaults DefaultsFunc) *Reference {
	if baseURL == "" {
		baseURL = schema.BaseURL
	}
	vals := make(map[string]string, len(schema.OrderedParams))
	for k, v := range values {
		vals[k] = v
	}
	return &Reference{
		schema:   schema,
		baseURL:  baseURL,
		values:   vals,
		context:  context,
		path:     path,
		defaults: defaults,
	}
}

// Collection returns the full dotted collection id.
func (r *Reference) Collection() string {
	return r.schema.ID()
}

// Schema returns the collection schema this reference belongs to.
func (r *Reference) Schema() collection.Schema {
	return r.schema
}

// Param returns the current value of a parameter. ok is false when the
// parameter is unset or not part of the collection.
func (r *Reference) Param(name string) (value string, ok bool) {
	v := r.values[name]
	return v, v != ""
}

// Params returns a copy of the current parameter values in schema order.
// Unresolved parameters map to the empty string.
func (r *Reference) Params() map[string]string {
	out := make(map[string]string, len(r.schema.OrderedParams))
	for _, p := range r.schema.OrderedParams {
		out[p] = r.values[p]
	}
	return out
}

// WeakResolve fills empty parameters best-effort and recomputes the
// self-link. For each empty field it tries, in order, a context resolver
// keyed by the parameter name, then the registered defaults. A resolver
// that fails or yields nothing leaves the field empty; WeakResolve never
// returns an error and is idempotent.
func (r *Reference) WeakResolve() {
	for _, param := range r.schema.OrderedParams {
		if r.values[param] != "" {
			continue
		}
		if resolver, ok := r.context[param]; ok && !resolver.IsZero() {
			if v, err := resolver.Resolve(); err == nil && v != "" {
				r.values[param] = v
				continue
			}
		}
		if r.defaults != nil {
			if v, ok := r.defaults(param); ok && v != "" {
				r.values[param] = v
			}
		}
	}

	effective := make(map[string]string, len(r.schema.OrderedParams))
	for _, param := range r.schema.OrderedParams {
		v := r.values[param]
		if v == "" {
			v = "*"
		}
		effective[param] = v
	}
	link := r.baseURL + collection.Expand(r.schema.Path, effective)
	if r.schema.LegacyDecodedLink() {
		if decoded, err := url.PathUnescape(link); err == nil {
			link = decoded
		}
	}
	r.selfLink = link

	r.name = r.values[r.schema.Terminal()]
}

// Resolve fills empty parameters like WeakResolve, then fails with an
// UnknownFieldError naming the first parameter that is still empty.
func (r *Reference) Resolve() error {
	r.WeakResolve()
	for _, param := range r.schema.OrderedParams {
		if r.values[param] == "" {
			return &UnknownFieldError{Path: r.displayPath(), Field: param}
		}
	}
	return nil
}

// Name returns the terminal parameter's value, resolving first. The
// terminal parameter names the specific instance and can never come from
// a resolver or default.
func (r *Reference) Name() (string, error) {
	if err := r.Resolve(); err != nil {
		return "", err
	}
	return r.name, nil
}

// SelfLink returns the canonical absolute URL of the fully resolved
// reference.
func (r *Reference) SelfLink() (string, error) {
	if err := r.Resolve(); err != nil {
		return "", err
	}
	return r.selfLink, nil
}

// WeakSelfLink returns the self-link with "*" substituted for any
// parameter that could not be resolved.
func (r *Reference) WeakSelfLink() string {
	r.WeakResolve()
	return r.selfLink
}

func (r *Reference) displayPath() string {
	if r.path != "" {
		return r.path
	}
	return r.schema.ID()
}

// String returns the weak self-link.
func (r *Reference) String() string {
	return r.WeakSelfLink()
}
