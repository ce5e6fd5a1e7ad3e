package clock

import "time"

// Clock supplies the current time. Day-count and cache-expiry logic take a
// Clock instead of calling time.Now so tests can pin "today".
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// New returns a Clock backed by the system wall clock
func New() Clock {
	return systemClock{}
}

// Fixed is a Clock pinned to a single instant, for tests
type Fixed struct {
	T time.Time
}

// Now returns the pinned instant
func (f Fixed) Now() time.Time { return f.T }

// NewFixed returns a Clock that always reports t
func NewFixed(t time.Time) Fixed {
	return Fixed{T: t}
}

// Midnight truncates t to midnight in its own location
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
