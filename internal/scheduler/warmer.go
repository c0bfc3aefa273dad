// Package scheduler keeps source caches warm by refreshing them on a cron
// schedule, so interactive requests rarely pay for a fetch.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/north-cloud/headlines/internal/logger"
	"github.com/jonesrussell/north-cloud/headlines/internal/registry"
)

// Warmable is the part of the registry the warmer drives.
type Warmable interface {
	GetAll(ctx context.Context) *registry.AllResult
}

// ErrAlreadyStarted is returned by Start on a running Warmer.
var ErrAlreadyStarted = errors.New("warmer already started")

// Warmer runs GetAll on a schedule. Overlapping runs are skipped.
type Warmer struct {
	target   Warmable
	schedule string
	log      logger.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
	cancel  context.CancelFunc
}

// New parses schedule up front so a bad expression fails at startup.
func New(target Warmable, schedule string, log logger.Logger) (*Warmer, error) {
	if target == nil {
		return nil, errors.New("scheduler: target is required")
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("scheduler: invalid schedule %q: %w", schedule, err)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Warmer{target: target, schedule: schedule, log: log}, nil
}

// Start warms every source once in the background and then on schedule.
func (w *Warmer) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cron != nil {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(w.schedule, func() { w.Run(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("scheduler: add job: %w", err)
	}

	w.cron = c
	w.cancel = cancel
	c.Start()
	go w.Run(runCtx)

	w.log.Info("Cache warmer started", logger.String("schedule", w.schedule))
	return nil
}

// Stop halts the schedule and waits for a running warm to finish.
func (w *Warmer) Stop() {
	w.mu.Lock()
	c, cancel := w.cron, w.cancel
	w.cron, w.cancel = nil, nil
	w.mu.Unlock()

	if c == nil {
		return
	}
	cancel()
	<-c.Stop().Done()
	w.log.Info("Cache warmer stopped")
}

// Run performs one warm pass. It returns false if another pass was already
// in progress.
func (w *Warmer) Run(ctx context.Context) bool {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return false
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	start := time.Now()
	result := w.target.GetAll(ctx)

	for _, se := range result.Errors {
		w.log.Warn("Warm refresh failed",
			logger.String("source", se.Source),
			logger.Error(se.Err),
		)
	}
	w.log.Info("Cache warm completed",
		logger.Int("links", len(result.Links)),
		logger.Int("failed_sources", len(result.Errors)),
		logger.Duration("duration", time.Since(start)),
	)
	return true
}
