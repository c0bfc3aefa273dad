// Package cache provides CachedValue, a memoized result with a TTL whose
// refresh runs at most once at a time no matter how many callers ask for it.
package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// ErrUnavailable is returned to callers that waited on a first refresh which
// failed, leaving nothing to serve.
var ErrUnavailable = errors.New("cached value unavailable")

// Default TTL values. Every CachedValue built without WithTTL gets its own
// jittered TTL so independently created values do not expire together.
const (
	DefaultTTL    = time.Hour
	DefaultJitter = 100 * time.Second
)

// JitteredTTL returns DefaultTTL shifted by a uniform offset in
// [-DefaultJitter, +DefaultJitter].
func JitteredTTL() time.Duration {
	offset := time.Duration(rand.Int64N(int64(2*DefaultJitter) + 1))
	return DefaultTTL - DefaultJitter + offset
}

// Retriever produces a fresh value. It is called with the lock released.
type Retriever[T any] func(ctx context.Context) (T, error)

// CachedValue memoizes the result of a Retriever.
//
// A present value is served while it is younger than the TTL, and also while
// a refresh is running, so readers never block when there is something to
// return. Only the caller that starts a refresh sees its error; callers that
// joined a first refresh that failed get ErrUnavailable.
type CachedValue[T any] struct {
	name     string
	retrieve Retriever[T]
	copyFn   func(T) T
	ttl      time.Duration
	now      func() time.Time
	observer Observer

	mu          sync.Mutex
	value       T
	hasValue    bool
	retrievedAt time.Time
	inFlight    bool
	done        chan struct{}
}

// New creates an empty CachedValue. copyFn is applied to every value handed
// out so callers never share memory with the cache; nil returns values as is.
func New[T any](retrieve Retriever[T], copyFn func(T) T, opts ...Option) *CachedValue[T] {
	s := settings{
		ttl:      JitteredTTL(),
		now:      time.Now,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(&s)
	}

	if copyFn == nil {
		copyFn = func(v T) T { return v }
	}

	return &CachedValue[T]{
		name:     s.name,
		retrieve: retrieve,
		copyFn:   copyFn,
		ttl:      s.ttl,
		now:      s.now,
		observer: s.observer,
	}
}

// TTL returns the staleness window of this value.
func (c *CachedValue[T]) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached value, refreshing it first when it is missing or
// older than the TTL and nobody else is already doing so.
func (c *CachedValue[T]) Get(ctx context.Context) (T, error) {
	c.mu.Lock()

	if c.hasValue && (c.inFlight || c.now().Before(c.retrievedAt.Add(c.ttl))) {
		v := c.copyFn(c.value)
		c.mu.Unlock()
		c.observer.Hit(c.name)
		return v, nil
	}

	if c.inFlight {
		done := c.done
		c.mu.Unlock()
		c.observer.Joined(c.name)
		return c.wait(ctx, done)
	}

	c.inFlight = true
	done := make(chan struct{})
	c.done = done
	c.mu.Unlock()

	return c.refresh(ctx, done)
}

// Clear drops the stored value. A refresh that is already running is not
// interrupted and stores its result when it finishes.
func (c *CachedValue[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	c.value = zero
	c.hasValue = false
	c.retrievedAt = time.Time{}
}

// State is a point-in-time view of a CachedValue for status reporting.
type State struct {
	HasValue    bool
	InFlight    bool
	RetrievedAt time.Time
	ExpiresAt   time.Time
	TTL         time.Duration
}

// Snapshot reports the current state without triggering a refresh.
func (c *CachedValue[T]) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{
		HasValue:    c.hasValue,
		InFlight:    c.inFlight,
		RetrievedAt: c.retrievedAt,
		TTL:         c.ttl,
	}
	if c.hasValue {
		st.ExpiresAt = c.retrievedAt.Add(c.ttl)
	}
	return st
}

func (c *CachedValue[T]) wait(ctx context.Context, done <-chan struct{}) (T, error) {
	var zero T

	select {
	case <-done:
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasValue {
		return zero, ErrUnavailable
	}
	return c.copyFn(c.value), nil
}

func (c *CachedValue[T]) refresh(ctx context.Context, done chan struct{}) (T, error) {
	start := time.Now()

	// Waiters depend on this refresh, so the initiator's cancellation must
	// not abort it.
	value, err := c.run(context.WithoutCancel(ctx))
	took := time.Since(start)

	c.mu.Lock()
	c.inFlight = false
	if err != nil {
		close(done)
		c.mu.Unlock()
		c.observer.Failed(c.name, took, err)
		var zero T
		return zero, err
	}

	c.value = value
	c.hasValue = true
	c.retrievedAt = c.now()
	out := c.copyFn(value)
	close(done)
	c.mu.Unlock()

	c.observer.Refreshed(c.name, took)
	return out, nil
}

// run calls the retriever, turning a panic into an error so the in-flight
// flag is always released.
func (c *CachedValue[T]) run(ctx context.Context) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("retriever panicked: %v", r)
		}
	}()
	return c.retrieve(ctx)
}
