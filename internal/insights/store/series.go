package store

// Sample is one (event_time, value) point in a series.
type Sample struct {
	EventTimeMillis int64
	Value           float64
}

// Series is a time-ordered ring of samples for one (instrument, feature_id)
// pair. Appends must be non-decreasing in EventTimeMillis; eviction removes
// samples older than the TTL relative to the latest time passed to Evict
// (the Store passes the instrument's latest observed event time). Grounded on original_source/arkin-insights/src/state.rs's
// window/interval/last/lag accessors.
type Series struct {
	samples []Sample
}

// Append adds a new sample. Returns false if eventTimeMillis is strictly
// less than the last appended sample's time (monotonicity violation) — the
// caller decides whether that is a hard error or a silent drop.
func (s *Series) Append(eventTimeMillis int64, value float64) bool {
	if n := len(s.samples); n > 0 && eventTimeMillis < s.samples[n-1].EventTimeMillis {
		return false
	}
	s.samples = append(s.samples, Sample{EventTimeMillis: eventTimeMillis, Value: value})
	return true
}

// Evict drops samples with EventTimeMillis < latestMillis - ttlMillis.
func (s *Series) Evict(latestMillis, ttlMillis int64) {
	cutoff := latestMillis - ttlMillis
	i := 0
	for i < len(s.samples) && s.samples[i].EventTimeMillis < cutoff {
		i++
	}
	if i == 0 {
		return
	}
	s.samples = append(s.samples[:0], s.samples[i:]...)
}

// Window returns all samples with EventTimeMillis in (asOf-windowMillis, asOf],
// oldest first.
func (s *Series) Window(asOfMillis, windowMillis int64) []Sample {
	lower := asOfMillis - windowMillis
	start := len(s.samples)
	for i, sample := range s.samples {
		if sample.EventTimeMillis > lower && sample.EventTimeMillis <= asOfMillis {
			start = i
			break
		}
	}
	end := start
	for end < len(s.samples) && s.samples[end].EventTimeMillis <= asOfMillis {
		end++
	}
	if start >= end {
		return nil
	}
	out := make([]Sample, end-start)
	copy(out, s.samples[start:end])
	return out
}

// Interval returns the most recent count samples with EventTimeMillis <=
// asOfMillis, oldest first.
func (s *Series) Interval(asOfMillis int64, count int) []Sample {
	if count <= 0 {
		return nil
	}
	end := len(s.samples)
	for end > 0 && s.samples[end-1].EventTimeMillis > asOfMillis {
		end--
	}
	start := end - count
	if start < 0 {
		start = 0
	}
	if start >= end {
		return nil
	}
	out := make([]Sample, end-start)
	copy(out, s.samples[start:end])
	return out
}

// Last returns the most recent sample with EventTimeMillis <= asOfMillis.
func (s *Series) Last(asOfMillis int64) (Sample, bool) {
	for i := len(s.samples) - 1; i >= 0; i-- {
		if s.samples[i].EventTimeMillis <= asOfMillis {
			return s.samples[i], true
		}
	}
	return Sample{}, false
}

// Lag returns the sample k positions before the most recent sample at or
// before asOfMillis (spec §4.5: "reads sample at position now - k*min_interval
// from its own history").
func (s *Series) Lag(asOfMillis int64, k int) (Sample, bool) {
	window := s.Interval(asOfMillis, k+1)
	if len(window) < k+1 {
		return Sample{}, false
	}
	return window[0], true
}

// Len reports the number of retained samples (for tests/diagnostics).
func (s *Series) Len() int { return len(s.samples) }
