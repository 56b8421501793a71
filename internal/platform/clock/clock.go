// Package clock abstracts the ambient system clock so all date math in the
// review engine is injected and deterministic in tests.
package clock

import (
	"sync"
	"time"

	"github.com/errata-app/errata-api/internal/domain"
)

// Clock supplies the current instant and the current UTC calendar date.
type Clock interface {
	// Now returns the current instant.
	Now() time.Time

	// Today returns the current UTC calendar date (midnight UTC).
	Today() time.Time
}

// System is a Clock backed by the real system clock.
type System struct{}

// NewSystem creates a Clock backed by time.Now.
func NewSystem() System {
	return System{}
}

// Now implements Clock.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Today implements Clock.
func (System) Today() time.Time {
	return domain.DateOf(time.Now())
}

// Frozen is a Clock pinned to a settable instant, for tests that need to
// simulate arbitrary "today" values.
type Frozen struct {
	mu  sync.RWMutex
	now time.Time
}

// NewFrozen creates a Clock pinned to the given instant.
func NewFrozen(now time.Time) *Frozen {
	return &Frozen{now: now.UTC()}
}

// Now implements Clock.
func (f *Frozen) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.now
}

// Today implements Clock.
func (f *Frozen) Today() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return domain.DateOf(f.now)
}

// Set pins the clock to a new instant.
func (f *Frozen) Set(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now.UTC()
}

// Advance moves the clock forward by the given duration.
func (f *Frozen) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// AdvanceDays moves the clock forward by whole calendar days.
func (f *Frozen) AdvanceDays(days int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.AddDate(0, 0, days)
}
