/*
Package store holds the pipeline's windowed state: one Series per
(instrument, feature_id) pair, TTL-evicted relative to each instrument's
own latest observed event_time (spec §4.3). Grounded on
internal/state/position.go's per-key sync.RWMutex sharding and
original_source/arkin-insights/src/state.rs's window/interval/ttl
semantics.
*/
package store

import (
	"sync"

	"insights-pipeline/internal/insights/instrument"
)

type key struct {
	instrumentID instrument.ID
	featureID    string
}

// Store is the pipeline-wide windowed state store. Safe for concurrent use;
// each (instrument, feature_id) series is guarded independently so
// executors on unrelated series never contend.
type Store struct {
	ttlMillis int64

	mu     sync.RWMutex
	series map[key]*seriesEntry

	latestMu sync.Mutex
	latest   map[instrument.ID]int64

	dropsMu    sync.Mutex
	outOfOrderDrops int64
}

type seriesEntry struct {
	mu sync.RWMutex
	s  Series
}

// New builds a Store with the given TTL, in seconds, as specified by a
// pipeline's state_ttl_seconds config field.
func New(ttlSeconds int64) *Store {
	return &Store{
		ttlMillis: ttlSeconds * 1000,
		series:    make(map[key]*seriesEntry),
		latest:    make(map[instrument.ID]int64),
	}
}

func (st *Store) entry(instrumentID instrument.ID, featureID string) *seriesEntry {
	k := key{instrumentID, featureID}

	st.mu.RLock()
	e, ok := st.series[k]
	st.mu.RUnlock()
	if ok {
		return e
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if e, ok := st.series[k]; ok {
		return e
	}
	e = &seriesEntry{}
	st.series[k] = e
	return e
}

// Observe updates the per-instrument latest-event-time clock and reports
// whether eventTimeMillis is at or after it — false means the caller should
// drop the event as out of order (spec §5).
func (st *Store) Observe(instrumentID instrument.ID, eventTimeMillis int64) bool {
	st.latestMu.Lock()
	defer st.latestMu.Unlock()

	latest, ok := st.latest[instrumentID]
	if ok && eventTimeMillis < latest {
		st.dropsMu.Lock()
		st.outOfOrderDrops++
		st.dropsMu.Unlock()
		return false
	}
	if !ok || eventTimeMillis > latest {
		st.latest[instrumentID] = eventTimeMillis
	}
	return true
}

// LatestEventTime returns the instrument's most recently observed event
// time, used as the TTL eviction anchor.
func (st *Store) LatestEventTime(instrumentID instrument.ID) (int64, bool) {
	st.latestMu.Lock()
	defer st.latestMu.Unlock()
	t, ok := st.latest[instrumentID]
	return t, ok
}

// OutOfOrderDrops reports the running count of dropped out-of-order raw
// events, exposed as a metric by the pipeline.
func (st *Store) OutOfOrderDrops() int64 {
	st.dropsMu.Lock()
	defer st.dropsMu.Unlock()
	return st.outOfOrderDrops
}

// Write appends a sample to the (instrumentID, featureID) series and evicts
// anything older than the TTL relative to the instrument's latest known
// event time. Returns false if eventTimeMillis is older than the series'
// own last sample (a monotonicity violation internal to the pipeline,
// distinct from the raw-ingestion out-of-order check in Observe).
func (st *Store) Write(instrumentID instrument.ID, featureID string, eventTimeMillis int64, value float64) bool {
	e := st.entry(instrumentID, featureID)

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.s.Append(eventTimeMillis, value) {
		return false
	}
	if latest, ok := st.LatestEventTime(instrumentID); ok {
		e.s.Evict(latest, st.ttlMillis)
	}
	return true
}

// Window returns the samples of (instrumentID, featureID) within the given
// window, in seconds, ending at asOfMillis.
func (st *Store) Window(instrumentID instrument.ID, featureID string, asOfMillis int64, windowSeconds int64) []Sample {
	e := st.entry(instrumentID, featureID)
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.s.Window(asOfMillis, windowSeconds*1000)
}

// Interval returns the most recent count samples of (instrumentID,
// featureID) at or before asOfMillis.
func (st *Store) Interval(instrumentID instrument.ID, featureID string, asOfMillis int64, count int) []Sample {
	e := st.entry(instrumentID, featureID)
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.s.Interval(asOfMillis, count)
}

// Last returns the most recent sample of (instrumentID, featureID) at or
// before asOfMillis.
func (st *Store) Last(instrumentID instrument.ID, featureID string, asOfMillis int64) (Sample, bool) {
	e := st.entry(instrumentID, featureID)
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.s.Last(asOfMillis)
}

// Lag returns the sample k positions before the most recent sample of
// (instrumentID, featureID) at or before asOfMillis.
func (st *Store) Lag(instrumentID instrument.ID, featureID string, asOfMillis int64, k int) (Sample, bool) {
	e := st.entry(instrumentID, featureID)
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.s.Lag(asOfMillis, k)
}

// MultiInterval concatenates Interval reads across several instruments in
// the order given, used by group_by-driven nodes whose Inputs span every
// concrete member of a synthetic instrument's group.
func (st *Store) MultiInterval(instrumentIDs []instrument.ID, featureID string, asOfMillis int64, count int) [][]Sample {
	out := make([][]Sample, len(instrumentIDs))
	for i, id := range instrumentIDs {
		out[i] = st.Interval(id, featureID, asOfMillis, count)
	}
	return out
}

// MultiWindow is the Window analogue of MultiInterval.
func (st *Store) MultiWindow(instrumentIDs []instrument.ID, featureID string, asOfMillis int64, windowSeconds int64) [][]Sample {
	out := make([][]Sample, len(instrumentIDs))
	for i, id := range instrumentIDs {
		out[i] = st.Window(id, featureID, asOfMillis, windowSeconds)
	}
	return out
}
