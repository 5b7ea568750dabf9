package sched

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"insights-pipeline/internal/insights/model"
	"insights-pipeline/internal/obs"
)

// Unit is one node instance's evaluation for a single tick: a bound
// Executor plus the instrument scope it was resolved against. Building
// Units from a DAG + Registry is the pipeline package's job; Scheduler only
// knows how to run them.
type Unit interface {
	Run(tickTimeMillis int64) ([]model.Insight, error)
}

// Levels is a DAG resolved into parallel-safe execution levels: all Units
// in Levels[i] may run concurrently, and Levels[i] only depends on the
// outputs of Levels[<i] (spec §4.2/§4.4).
type Levels [][]Unit

// Scheduler drives ticks at a fixed cadence, gates emissions during
// warmup, and fans each level's units out across a worker pool when
// Parallel is true (spec §4.4).
type Scheduler struct {
	clock        *Clock
	levels       Levels
	warmupSteps  int
	parallel     bool
	metrics      *obs.Metrics
	tickCount    int64
	emit         func(tickTimeMillis int64, insights []model.Insight)
}

// Config collects the knobs Scheduler needs beyond the DAG itself.
type Config struct {
	MinInterval time.Duration
	WarmupSteps int
	Parallel    bool
	Metrics     *obs.Metrics
	Now         func() time.Time
}

// New builds a Scheduler over the given resolved levels. emit is called
// once per tick, after warmup has gated, with every Insight the tick's
// node instances produced (in level order, undefined order within a
// level); it is expected to publish to the pipeline's bounded sink.
func New(levels Levels, cfg Config, emit func(tickTimeMillis int64, insights []model.Insight)) *Scheduler {
	return &Scheduler{
		clock:       NewClock(cfg.MinInterval, cfg.Now),
		levels:      levels,
		warmupSteps: cfg.WarmupSteps,
		parallel:    cfg.Parallel,
		metrics:     cfg.Metrics,
		emit:        emit,
	}
}

// Run blocks, driving ticks until ctx is cancelled. Cancellation is the
// single shutdown token threaded from cmd/insights/main.go (spec §5); no
// partial tick is ever emitted — a tick either fully completes its levels
// or the run returns having emitted nothing further.
func (s *Scheduler) Run(ctx context.Context) {
	stop := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(stop)
	}()

	s.clock.Run(stop, func(tickTime time.Time) {
		s.runTick(ctx, tickTime.UnixMilli())
	})
}

// runTick evaluates every level in order, each level's units concurrently,
// then emits the tick's insights subject to warmup gating. A node fault is
// counted and otherwise ignored — spec §4.5 guarantees executors do not
// fail on ordinary missing-data conditions, so an error here is a
// genuinely exceptional, isolated node failure that must not abort
// sibling nodes or later ticks.
func (s *Scheduler) runTick(ctx context.Context, tickTimeMillis int64) {
	tickCount := atomic.AddInt64(&s.tickCount, 1)

	var tickInsights []model.Insight
	for _, level := range s.levels {
		insights := s.runLevel(ctx, level, tickTimeMillis)
		tickInsights = append(tickInsights, insights...)
	}

	if int(tickCount) <= s.warmupSteps {
		return
	}
	if s.emit != nil {
		s.emit(tickTimeMillis, tickInsights)
	}
}

func (s *Scheduler) runLevel(ctx context.Context, level []Unit, tickTimeMillis int64) []model.Insight {
	if !s.parallel {
		var out []model.Insight
		for _, u := range level {
			insights, err := u.Run(tickTimeMillis)
			if err != nil {
				s.metrics.IncNodeFault()
				continue
			}
			out = append(out, insights...)
		}
		return out
	}

	results := make([][]model.Insight, len(level))
	g, _ := errgroup.WithContext(ctx)
	for i, u := range level {
		i, u := i, u
		g.Go(func() error {
			insights, err := u.Run(tickTimeMillis)
			if err != nil {
				s.metrics.IncNodeFault()
				return nil
			}
			results[i] = insights
			return nil
		})
	}
	_ = g.Wait()

	var out []model.Insight
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}
