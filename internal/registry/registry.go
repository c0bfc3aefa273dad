// Package registry keeps one cached link list per configured source and
// answers queries for one source or all of them.
package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonesrussell/north-cloud/headlines/internal/cache"
	"github.com/jonesrussell/north-cloud/headlines/internal/config"
	"github.com/jonesrussell/north-cloud/headlines/internal/extractor"
	"github.com/jonesrussell/north-cloud/headlines/internal/fetcher"
	"github.com/jonesrussell/north-cloud/headlines/internal/logger"
	"github.com/jonesrussell/north-cloud/headlines/internal/models"
)

// ErrSourceNotFound is returned for names that are not configured.
var ErrSourceNotFound = errors.New("source not found")

// RefreshHook runs after a source's links were fetched successfully.
type RefreshHook func(ctx context.Context, source string, links []models.Link)

type entry struct {
	source config.SourceConfig
	value  *cache.CachedValue[[]models.Link]
}

// Registry maps source names to their cached link lists. It is built once at
// startup and never changes shape afterwards.
type Registry struct {
	entries map[string]*entry
	order   []string
	fetcher fetcher.Fetcher
	log     logger.Logger
	hook    RefreshHook
}

// New validates sources and creates an empty cache entry for each one.
// Sources without their own keywords use keywords.
func New(sources []config.SourceConfig, keywords []string, f fetcher.Fetcher, opts ...Option) (*Registry, error) {
	if f == nil {
		return nil, errors.New("registry: fetcher is required")
	}
	if err := config.ValidateSources(sources, keywords); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}

	s := settings{log: logger.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}

	r := &Registry{
		entries: make(map[string]*entry, len(sources)),
		order:   make([]string, 0, len(sources)),
		fetcher: f,
		log:     s.log,
		hook:    s.hook,
	}

	for _, src := range sources {
		matcher := extractor.NewMatcher(src.EffectiveKeywords(keywords))

		cacheOpts := []cache.Option{cache.WithName(src.Name)}
		if s.ttl > 0 {
			cacheOpts = append(cacheOpts, cache.WithTTL(s.ttl))
		}
		if s.observer != nil {
			cacheOpts = append(cacheOpts, cache.WithObserver(s.observer))
		}
		if s.now != nil {
			cacheOpts = append(cacheOpts, cache.WithClock(s.now))
		}

		r.entries[src.Name] = &entry{
			source: src,
			value:  cache.New(r.retriever(src, matcher), slices.Clone[[]models.Link], cacheOpts...),
		}
		r.order = append(r.order, src.Name)
	}

	return r, nil
}

// Sources returns the configured source names in configuration order.
func (r *Registry) Sources() []string {
	return slices.Clone(r.order)
}

// Get returns the links for one source, fetching them if the cache is cold
// or stale.
func (r *Registry) Get(ctx context.Context, name string) ([]models.Link, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, name)
	}
	return e.value.Get(ctx)
}

// SourceError records one source that failed during GetAll.
type SourceError struct {
	Source string
	Err    error
}

func (e SourceError) Error() string {
	return e.Source + ": " + e.Err.Error()
}

func (e SourceError) Unwrap() error { return e.Err }

// AllResult is the outcome of GetAll. Links from sources that failed are
// absent and the failures are listed in Errors.
type AllResult struct {
	Links  []models.Link
	Errors []SourceError
}

// Err joins the per-source errors, or returns nil when every source succeeded.
func (a *AllResult) Err() error {
	if len(a.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(a.Errors))
	for i := range a.Errors {
		errs[i] = a.Errors[i]
	}
	return errors.Join(errs...)
}

// GetAll queries every source concurrently and concatenates the results in
// configuration order. One source failing does not stop the others.
func (r *Registry) GetAll(ctx context.Context) *AllResult {
	results := make([][]models.Link, len(r.order))
	errs := make([]error, len(r.order))

	var g errgroup.Group
	for i, name := range r.order {
		e := r.entries[name]
		g.Go(func() error {
			results[i], errs[i] = e.value.Get(ctx)
			return nil
		})
	}
	_ = g.Wait()

	out := &AllResult{}
	for i, name := range r.order {
		if errs[i] != nil {
			out.Errors = append(out.Errors, SourceError{Source: name, Err: errs[i]})
			continue
		}
		out.Links = append(out.Links, results[i]...)
	}
	if out.Links == nil {
		out.Links = []models.Link{}
	}
	return out
}

// Clear drops the cached links of one source so the next Get refetches.
func (r *Registry) Clear(name string) error {
	e, ok := r.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, name)
	}
	e.value.Clear()
	r.log.Info("Cleared source cache", logger.String("source", name))
	return nil
}

// ClearAll drops every cached link list.
func (r *Registry) ClearAll() {
	for _, name := range r.order {
		r.entries[name].value.Clear()
	}
	r.log.Info("Cleared all source caches", logger.Int("sources", len(r.order)))
}

// SourceStatus describes one source's cache state.
type SourceStatus struct {
	Name        string        `json:"name"`
	Address     string        `json:"address"`
	Cached      bool          `json:"cached"`
	Refreshing  bool          `json:"refreshing"`
	RetrievedAt *time.Time    `json:"retrieved_at,omitempty"`
	ExpiresAt   *time.Time    `json:"expires_at,omitempty"`
	TTL         time.Duration `json:"ttl_ns"`
}

// Status reports cache state for every source without triggering fetches.
func (r *Registry) Status() []SourceStatus {
	out := make([]SourceStatus, 0, len(r.order))
	for _, name := range r.order {
		e := r.entries[name]
		st := e.value.Snapshot()
		status := SourceStatus{
			Name:       name,
			Address:    e.source.Address,
			Cached:     st.HasValue,
			Refreshing: st.InFlight,
			TTL:        st.TTL,
		}
		if st.HasValue {
			retrieved, expires := st.RetrievedAt, st.ExpiresAt
			status.RetrievedAt = &retrieved
			status.ExpiresAt = &expires
		}
		out = append(out, status)
	}
	return out
}
