// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"time"

	"github.com/artpar/apiref/domain/collection"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// -----------------------------------------------------------------------------
// Catalog Ports
// -----------------------------------------------------------------------------

// CatalogSource supplies collection schemas for lazy API registration.
// The registry consults it the first time a collection or URL belonging
// to an unseen API is parsed.
type CatalogSource interface {
	// APIs returns the names of all known APIs.
	APIs() []string

	// DefaultVersion returns the version to use for an API when none is
	// given. Fails if the API is unknown.
	DefaultVersion(api string) (string, error)

	// Collections returns the schemas of every collection in one API
	// version. Fails if the API or version is unknown.
	Collections(api, version string) ([]collection.Schema, error)
}

// ParamDefault is a persisted literal default for a resource parameter.
// An empty Collection applies the default to every collection of the API.
type ParamDefault struct {
	API        string
	Collection string
	Param      string
	Value      string
}

// DefaultStore persists parameter defaults across runs.
type DefaultStore interface {
	// List returns all stored defaults.
	List(ctx context.Context) ([]ParamDefault, error)

	// Set stores or overwrites a default.
	Set(ctx context.Context, d ParamDefault) error

	// Delete removes a default.
	Delete(ctx context.Context, api, collection, param string) error
}
