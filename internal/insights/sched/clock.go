/*
Package sched drives the pipeline's tick cadence and fans each DAG level
out across a worker pool (spec §4.4). Grounded on
original_source/arkin-insights/src/pipeline.rs's epoch-aligned interval
loop and the teacher's goroutine-fan-out idiom in
internal/ingest/usecase.go, with golang.org/x/sync/errgroup driving
per-level concurrency; a unit's error is counted as a node fault and is
not returned to the group.
*/
package sched

import "time"

// NextTick computes the next epoch-aligned tick boundary at or after now,
// per spec §8's "compute next tick as ceil(now / min_interval) * min_interval".
func NextTick(now time.Time, minInterval time.Duration) time.Time {
	if minInterval <= 0 {
		return now
	}
	nowNanos := now.UnixNano()
	stepNanos := minInterval.Nanoseconds()
	ceiled := ((nowNanos + stepNanos - 1) / stepNanos) * stepNanos
	return time.Unix(0, ceiled).UTC()
}

// Clock emits ticks aligned to minInterval epoch boundaries until stopped.
type Clock struct {
	minInterval time.Duration
	now         func() time.Time
}

// NewClock builds a Clock at the given cadence. nowFn defaults to
// time.Now when nil, overridable in tests for deterministic tick times.
func NewClock(minInterval time.Duration, nowFn func() time.Time) *Clock {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Clock{minInterval: minInterval, now: nowFn}
}

// Run blocks, invoking onTick once per aligned tick boundary with the
// tick's exact boundary time, until ctx-like stop channel closes. Returns
// when stop is closed, after the in-flight tick (if any) finishes.
func (c *Clock) Run(stop <-chan struct{}, onTick func(tickTime time.Time)) {
	next := NextTick(c.now(), c.minInterval)
	for {
		wait := time.Until(next)
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)
		select {
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
			onTick(next)
			next = next.Add(c.minInterval)
		}
	}
}
