package registry

import (
	"fmt"

	"github.com/artpar/apiref/domain/ref"
)

// defaultTable is the parameter-fallback lookup: param name, then api
// name, then collection name or the wildcard entry. The collection key is
// the collection name without the api prefix; the empty string is the
// wildcard matching every collection of the api.
type defaultTable struct {
	funcs map[string]map[string]map[string]ref.Resolver
}

func newDefaultTable() *defaultTable {
	return &defaultTable{funcs: make(map[string]map[string]map[string]ref.Resolver)}
}

func (t *defaultTable) set(api, collection, param string, resolver ref.Resolver) error {
	if api == "" {
		return fmt.Errorf("defaults: api cannot be empty")
	}
	if param == "" {
		return fmt.Errorf("defaults: param cannot be empty")
	}
	byAPI, ok := t.funcs[param]
	if !ok {
		byAPI = make(map[string]map[string]ref.Resolver)
		t.funcs[param] = byAPI
	}
	byCollection, ok := byAPI[api]
	if !ok {
		byCollection = make(map[string]ref.Resolver)
		byAPI[api] = byCollection
	}
	byCollection[collection] = resolver
	return nil
}

// get returns the resolver for (param, api, collection). The
// collection-specific entry takes precedence over the wildcard entry;
// absence of both is not an error.
func (t *defaultTable) get(api, collection, param string) (ref.Resolver, bool) {
	byAPI, ok := t.funcs[param]
	if !ok {
		return ref.Resolver{}, false
	}
	byCollection, ok := byAPI[api]
	if !ok {
		return ref.Resolver{}, false
	}
	if resolver, ok := byCollection[collection]; ok {
		return resolver, true
	}
	resolver, ok := byCollection[""]
	return resolver, ok
}

// clone copies the table spine. Resolver values are shared: a resolver is
// an immutable variant, so sharing is safe.
func (t *defaultTable) clone() *defaultTable {
	out := newDefaultTable()
	for param, byAPI := range t.funcs {
		outAPI := make(map[string]map[string]ref.Resolver, len(byAPI))
		for api, byCollection := range byAPI {
			outCollection := make(map[string]ref.Resolver, len(byCollection))
			for c, r := range byCollection {
				outCollection[c] = r
			}
			outAPI[api] = outCollection
		}
		out.funcs[param] = outAPI
	}
	return out
}
