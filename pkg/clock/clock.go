// Package clock provides the wall-clock port consumed by the delta service
// and stats aggregator for timestamps and expiration checks.
package clock

import "time"

// Clock returns the current UTC wall-clock time. It exists as a port so
// tests can substitute a fixed or programmable clock instead of time.Now.
type Clock interface {
	Now() time.Time
}

// UTCClock is the production Clock, backed by time.Now. There is no
// monotonic component to this requirement (spec: "Monotonic-free wall clock
// in UTC"), so the standard library's time package is the correct and only
// tool for it.
type UTCClock struct{}

// NewUTCClock constructs the default clock.
func NewUTCClock() UTCClock { return UTCClock{} }

func (UTCClock) Now() time.Time { return time.Now().UTC() }

// Fixed is a Clock that always returns the same instant. Used in tests.
type Fixed struct{ At time.Time }

func (f Fixed) Now() time.Time { return f.At }
