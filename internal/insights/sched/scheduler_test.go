package sched

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insights-pipeline/internal/insights/model"
)

func TestNextTick_AlignsToEpochBoundary(t *testing.T) {
	now := time.Date(2026, 8, 2, 10, 0, 17, 0, time.UTC)
	next := NextTick(now, 60*time.Second)
	assert.Equal(t, time.Date(2026, 8, 2, 10, 1, 0, 0, time.UTC), next)
}

func TestNextTick_AlreadyAligned(t *testing.T) {
	now := time.Date(2026, 8, 2, 10, 1, 0, 0, time.UTC)
	next := NextTick(now, 60*time.Second)
	assert.Equal(t, now, next)
}

type countingUnit struct {
	mu    sync.Mutex
	calls int
	value float64
}

func (u *countingUnit) Run(tickTimeMillis int64) ([]model.Insight, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	return []model.Insight{model.New([16]byte{}, [16]byte{}, "f", tickTimeMillis, u.value)}, nil
}

// Warmup suppresses sink emission for the first warmup_steps ticks but
// still runs node units every tick (spec §4.4/§8 scenario 6).
func TestScheduler_WarmupGatesEmission(t *testing.T) {
	unit := &countingUnit{value: 1.0}
	levels := Levels{{unit}}

	var mu sync.Mutex
	var emitted [][]model.Insight

	tickN := 0
	times := []time.Time{
		time.Unix(1, 0).UTC(),
		time.Unix(2, 0).UTC(),
		time.Unix(3, 0).UTC(),
		time.Unix(4, 0).UTC(),
	}
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		if tickN >= len(times) {
			return times[len(times)-1]
		}
		tm := times[tickN]
		return tm
	}

	s := New(levels, Config{MinInterval: time.Second, WarmupSteps: 3, Now: now}, func(tickTimeMillis int64, insights []model.Insight) {
		mu.Lock()
		emitted = append(emitted, insights)
		mu.Unlock()
	})

	for i := 0; i < 4; i++ {
		s.runTick(context.Background(), times[i].UnixMilli())
	}

	unit.mu.Lock()
	calls := unit.calls
	unit.mu.Unlock()
	require.Equal(t, 4, calls, "node runs on every tick, including warmup")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, emitted, 1, "only the tick after the first warmup_steps ticks emits")
	require.Len(t, emitted[0], 1)
}

// A node fault on one unit must not prevent sibling units in the same
// level, or later levels, from running.
func TestScheduler_NodeFaultIsolated(t *testing.T) {
	faulty := unitFunc(func(int64) ([]model.Insight, error) { return nil, assertErr{} })
	ok := &countingUnit{value: 2.0}
	levels := Levels{{faulty, ok}}

	s := New(levels, Config{MinInterval: time.Second, WarmupSteps: 0}, nil)
	s.runTick(context.Background(), 1000)

	ok.mu.Lock()
	defer ok.mu.Unlock()
	assert.Equal(t, 1, ok.calls)
}

type unitFunc func(int64) ([]model.Insight, error)

func (f unitFunc) Run(tickTimeMillis int64) ([]model.Insight, error) { return f(tickTimeMillis) }

type assertErr struct{}

func (assertErr) Error() string { return "synthetic node fault" }
