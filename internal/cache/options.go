package cache

import "time"

type settings struct {
	name     string
	ttl      time.Duration
	now      func() time.Time
	observer Observer
}

// Option configures a CachedValue.
type Option func(*settings)

// WithTTL replaces the jittered default. Zero makes every Get that finds no
// refresh in flight start a new one.
func WithTTL(ttl time.Duration) Option {
	return func(s *settings) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// WithClock substitutes the time source used for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithName labels the value in Observer callbacks.
func WithName(name string) Option {
	return func(s *settings) {
		s.name = name
	}
}

// WithObserver registers callbacks for hits, joins and refresh outcomes.
func WithObserver(o Observer) Option {
	return func(s *settings) {
		if o != nil {
			s.observer = o
		}
	}
}

// Observer receives cache events. Implementations must be safe for
// concurrent use and must not call back into the CachedValue.
type Observer interface {
	Hit(name string)
	Joined(name string)
	Refreshed(name string, took time.Duration)
	Failed(name string, took time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) Hit(string) {}
func (nopObserver) Joined(string) {}
func (nopObserver) Refreshed(string, time.Duration) {}
func (nopObserver) Failed(string, time.Duration, error) {}
