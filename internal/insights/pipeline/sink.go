package pipeline

import (
	"time"

	"insights-pipeline/internal/insights/model"
	"insights-pipeline/internal/obs"
)

// Sink is the bounded output queue insights are published to, grounded on
// internal/bus/queue.go's TryPublish/blocking-Run shape but generalized to
// block rather than drop (spec §6: "the scheduler blocks until the
// consumer catches up"; raw-event drops are reserved for the out-of-order
// case in the State Store, not the sink).
type Sink struct {
	ch      chan model.Insight
	metrics *obs.Metrics
}

// NewSink builds a Sink with the given channel capacity.
func NewSink(capacity int, metrics *obs.Metrics) *Sink {
	return &Sink{ch: make(chan model.Insight, capacity), metrics: metrics}
}

// Publish blocks until every insight has been enqueued; it has no stop
// signal and waits for as long as the consumer does not drain. Backpressure (the channel was full at enqueue time) is
// counted but never dropped.
func (s *Sink) Publish(insights []model.Insight) {
	for _, in := range insights {
		select {
		case s.ch <- in:
		default:
			s.metrics.IncSinkBackpressure()
			start := time.Now()
			s.ch <- in
			s.metrics.ObserveInsightEmit(time.Since(start))
		}
	}
}

// Receive returns the channel consumers drain Insights from.
func (s *Sink) Receive() <-chan model.Insight { return s.ch }

// Close closes the output channel. Callers must ensure no further Publish
// calls occur after Close.
func (s *Sink) Close() { close(s.ch) }
