/*
Package pipeline wires the Insights Feature Pipeline's pieces into a
runnable whole.

# Module
  - instrument registry: the universe of concrete and synthetic instruments
  - state store: windowed per-(instrument, feature_id) samples, TTL-evicted
  - DAG: topologically ordered, parallel-safe feature evaluation levels
  - scheduler: epoch-aligned ticks, warmup gating, per-level fan-out
  - sink: bounded output queue of computed Insight records

# Source
  - raw trade/tick/book_update events from external ingestors (live feed
    adapters or internal/insights/gen's synthetic generator for smoke runs)

# Produce
  - Insight records to the sink, consumed by cmd/insights (stdout/Postgres)
    or, downstream, by the peer strategy/risk/order layer this repository
    already carries.
*/
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"insights-pipeline/internal/insights/config"
	"insights-pipeline/internal/insights/dag"
	"insights-pipeline/internal/insights/instrument"
	"insights-pipeline/internal/insights/model"
	"insights-pipeline/internal/insights/sched"
	"insights-pipeline/internal/insights/store"
	"insights-pipeline/internal/obs"
)

// Pipeline owns one pipeline configuration's full runtime: registry, DAG,
// state store, scheduler and sink.
type Pipeline struct {
	id       uuid.UUID
	cfg      config.PipelineConfig
	registry *instrument.Registry
	graph    *dag.Graph
	store    *store.Store
	sink     *Sink
	metrics  *obs.Metrics
	sched    *sched.Scheduler
}

// New builds a Pipeline from a validated PipelineConfig and an already
// populated instrument Registry (venues/assets/concrete instruments are
// registered by the caller before New runs, per spec §4.1's "materialized
// at pipeline start").
func New(cfg config.PipelineConfig, reg *instrument.Registry, metrics *obs.Metrics, sinkCapacity int) (*Pipeline, error) {
	graph, err := dag.Build(cfg.Features)
	if err != nil {
		return nil, err
	}

	st := store.New(cfg.StateTTLSeconds)
	id := uuid.New()

	levels, err := BuildLevels(id, graph, reg, st)
	if err != nil {
		return nil, err
	}

	sink := NewSink(sinkCapacity, metrics)

	p := &Pipeline{
		id:       id,
		cfg:      cfg,
		registry: reg,
		graph:    graph,
		store:    st,
		sink:     sink,
		metrics:  metrics,
	}

	p.sched = sched.New(levels, sched.Config{
		MinInterval: time.Duration(cfg.MinIntervalSeconds) * time.Second,
		WarmupSteps: cfg.WarmupSteps,
		Parallel:    cfg.Parallel,
		Metrics:     metrics,
	}, func(tickTimeMillis int64, insights []model.Insight) {
		sink.Publish(insights)
	})

	return p, nil
}

// ID returns the pipeline's run identity, stamped on every Insight it
// produces.
func (p *Pipeline) ID() uuid.UUID { return p.id }

// Sink returns the bounded output queue consumers drain.
func (p *Pipeline) Sink() *Sink { return p.sink }

// Store returns the underlying state store, exposed for diagnostics.
func (p *Pipeline) Store() *store.Store { return p.store }

// Graph returns the built DAG, exposed for introspection (DotString) and
// tests.
func (p *Pipeline) Graph() *dag.Graph { return p.graph }

// Run drives the scheduler until ctx is cancelled, then closes the sink.
func (p *Pipeline) Run(ctx context.Context) {
	p.sched.Run(ctx)
	p.sink.Close()
}
