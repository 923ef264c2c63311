// Package clock hides the time source so flows with expiries and cooldowns
// can be driven deterministically in tests.
package clock

import (
	"sync"
	"time"
)

// Clocker returns the current instant.
type Clocker interface {
	Now() time.Time
}

// System reads the wall clock in UTC.
type System struct{}

// New returns the wall clock.
func New() System {
	return System{}
}

// Now returns time.Now in UTC.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Manual is a settable clock for tests.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual starts a Manual clock at t.
func NewManual(t time.Time) *Manual {
	return &Manual{now: t}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}
