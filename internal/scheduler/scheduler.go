// Package scheduler ties the upstream/cache/canonical/features/forecast
// pipeline together, firing it at a fixed cadence and on demand across
// a bounded worker pool, isolating failures per location (grounded on
// the pack's channel/WaitGroup refresh-job pattern).
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/airwatch/aqcore/internal/domain"
	"github.com/airwatch/aqcore/internal/metrics"
)

// DefaultInterval is the fixed refresh cadence (spec.md §4.9).
const DefaultInterval = 15 * time.Minute

// DefaultShutdownWait bounds how long Stop waits for in-flight
// refreshes before giving up (spec.md §4.9).
const DefaultShutdownWait = 30 * time.Second

// DefaultConcurrency bounds the per-tick worker pool.
const DefaultConcurrency = 8

// Pipeline is the per-location refresh the Scheduler drives. Its
// single method performs steps (a)-(e) of spec.md §4.9 for one
// location and must not panic; errors are contained by RunPoint.
type Pipeline interface {
	RefreshLocation(ctx context.Context, loc domain.Location) error
}

// HotLocationSource supplies the set of locations the Scheduler must
// refresh on a tick: subscribers plus any recently-queried location.
type HotLocationSource interface {
	HotLocations() []domain.Location
}

// Sweeper is an optional Pipeline capability: evicting expired cache
// entries before each tick's refreshes (spec.md §4.9 step 1). A
// Pipeline that doesn't implement it simply skips the sweep.
type Sweeper interface {
	Sweep()
}

// Config configures a Scheduler.
type Config struct {
	Interval     time.Duration
	Concurrency  int
	ShutdownWait time.Duration
}

// Scheduler fires Pipeline.RefreshLocation for every hot location on a
// fixed cadence, and supports synchronous on-demand invocations from
// request handlers.
type Scheduler struct {
	pipeline Pipeline
	hot      HotLocationSource
	cfg      Config

	cancel context.CancelFunc
	done   chan struct{}

	tickMu sync.Mutex // serializes ticks so an overlapping slow tick cannot race the next
}

// New builds a Scheduler. Zero-valued Config fields take the package
// defaults.
func New(pipeline Pipeline, hot HotLocationSource, cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.ShutdownWait <= 0 {
		cfg.ShutdownWait = DefaultShutdownWait
	}
	return &Scheduler{pipeline: pipeline, hot: hot, cfg: cfg, done: make(chan struct{})}
}

// Start launches the fixed-cadence ticker in a background goroutine. It
// returns immediately; call Stop to shut down.
func (s *Scheduler) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				s.Tick(runCtx)
			}
		}
	}()
}

// Stop cancels the running ticker and waits up to ShutdownWait for the
// in-flight tick to finish.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()

	select {
	case <-s.done:
	case <-time.After(s.cfg.ShutdownWait):
		log.Warn().Msg("scheduler shutdown wait exceeded, proceeding anyway")
	}
}

// Tick refreshes every hot location across a bounded worker pool.
// Errors in one location never prevent others from completing
// (spec.md §4.9 step 3).
func (s *Scheduler) Tick(ctx context.Context) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	start := time.Now()
	defer func() { metrics.SchedulerTickDuration.Observe(time.Since(start).Seconds()) }()

	if sweeper, ok := s.pipeline.(Sweeper); ok {
		sweeper.Sweep()
	}

	locations := s.hot.HotLocations()
	if len(locations) == 0 {
		return
	}

	locChan := make(chan domain.Location, len(locations))
	for _, loc := range locations {
		locChan <- loc
	}
	close(locChan)

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for loc := range locChan {
				s.RunPoint(ctx, loc)
			}
		}()
	}
	wg.Wait()
}

// RunPoint refreshes a single location, recovering from panics and
// logging errors rather than propagating them, so a malformed upstream
// payload for one point cannot take down the whole tick.
func (s *Scheduler) RunPoint(ctx context.Context, loc domain.Location) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Float64("lat", loc.Lat).Float64("lng", loc.Lng).Msg("refresh pipeline panicked")
		}
	}()

	if err := s.pipeline.RefreshLocation(ctx, loc); err != nil {
		log.Warn().Err(err).Float64("lat", loc.Lat).Float64("lng", loc.Lng).Msg("refresh pipeline failed for location")
	}
}

// RefreshNow performs a synchronous on-demand refresh for a single
// location, bypassing the fixed cadence. Used by request handlers that
// need a fresh forecast immediately (spec.md §4.9: "also handles
// on-demand invocations").
func (s *Scheduler) RefreshNow(ctx context.Context, loc domain.Location) error {
	return s.pipeline.RefreshLocation(ctx, loc)
}
