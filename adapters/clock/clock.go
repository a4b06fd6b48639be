// Package clock abstracts time for code that stamps records, so tests
// can pin it.
package clock

import (
	"sync"
	"time"

	"github.com/artpar/apiref/ports"
)

// Real reads the system clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Fake is a manually driven clock pinned to an instant.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake creates a fake clock pinned to start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the pinned instant.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the pinned instant by d, which may be negative.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

var (
	_ ports.Clock = Real{}
	_ ports.Clock = (*Fake)(nil)
)
