// Package idgen provides request id generators.
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/artpar/apiref/ports"
)

// UUID issues random v4 identifiers.
type UUID struct{}

func (UUID) New() string { return uuid.NewString() }

// Sequential issues "<prefix><n>" identifiers, n counting from 1, for
// deterministic tests.
type Sequential struct {
	prefix string
	n      atomic.Uint64
}

// NewSequential creates a sequential generator with the given prefix.
func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

func (s *Sequential) New() string {
	return s.prefix + strconv.FormatUint(s.n.Add(1), 10)
}

var (
	_ ports.IDGenerator = UUID{}
	_ ports.IDGenerator = (*Sequential)(nil)
)
