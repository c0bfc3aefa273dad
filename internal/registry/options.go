package registry

import (
	"time"

	"github.com/jonesrussell/north-cloud/headlines/internal/cache"
	"github.com/jonesrussell/north-cloud/headlines/internal/logger"
)

type settings struct {
	ttl      time.Duration
	observer cache.Observer
	now      func() time.Time
	log      logger.Logger
	hook     RefreshHook
}

// Option configures a Registry.
type Option func(*settings)

// WithTTL gives every source the same TTL. Zero or negative keeps the
// per-source jittered default.
func WithTTL(ttl time.Duration) Option {
	return func(s *settings) { s.ttl = ttl }
}

// WithObserver forwards cache events, typically to metrics.
func WithObserver(o cache.Observer) Option {
	return func(s *settings) { s.observer = o }
}

// WithClock substitutes the staleness clock.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithLogger sets the logger used for refresh reporting.
func WithLogger(log logger.Logger) Option {
	return func(s *settings) {
		if log != nil {
			s.log = log
		}
	}
}

// WithRefreshHook registers a callback for successful refreshes. It runs on
// the refreshing goroutine and should return quickly.
func WithRefreshHook(hook RefreshHook) Option {
	return func(s *settings) { s.hook = hook }
}
