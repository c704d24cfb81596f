package clock

import "time"

// Clock supplies the current wall-clock time. The lifecycle engine, resolver,
// and notifier take a Clock so tests can inject synthetic time.
type Clock interface {
	Now() time.Time
}

// System returns a Clock backed by the actual system time.
func System() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// Fake is a manually advanced Clock for tests.
type Fake struct {
	Current time.Time
}

// NewFake creates a Fake pinned to t.
func NewFake(t time.Time) *Fake {
	return &Fake{Current: t.UTC()}
}

func (f *Fake) Now() time.Time {
	return f.Current
}

// Advance moves the fake clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.Current = f.Current.Add(d)
}
