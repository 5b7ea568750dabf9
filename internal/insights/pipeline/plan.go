package pipeline

import (
	"github.com/google/uuid"

	"insights-pipeline/internal/insights/dag"
	"insights-pipeline/internal/insights/exec"
	"insights-pipeline/internal/insights/instrument"
	"insights-pipeline/internal/insights/model"
	"insights-pipeline/internal/insights/sched"
	"insights-pipeline/internal/insights/store"
)

// nodeUnit binds one resolved instrument scope of a DAG node to its
// Executor, implementing sched.Unit. Building one of these per
// (node, group-key) pair is exactly the "node instantiation per
// (instrument, group-key)" spec §4.2 describes the Resolver doing before
// handing a plan to the Scheduler.
type nodeUnit struct {
	pipelineID uuid.UUID
	store      *store.Store
	executor   exec.Executor
	inputs     []instrument.ID
	output     instrument.ID
}

func (u nodeUnit) Run(tickTimeMillis int64) ([]model.Insight, error) {
	return u.executor.Execute(exec.Context{
		PipelineID: u.pipelineID,
		Store:      u.store,
		AsOfMillis: tickTimeMillis,
		Inputs:     u.inputs,
		Output:     u.output,
	})
}

// BuildLevels resolves a DAG's nodes against the instrument registry into
// sched.Levels: one Unit per node per matching instrument (no group_by) or
// per materialized synthetic group (group_by set), preserving the DAG's
// level order so dependency ordering still holds between instrument
// instances of different nodes (spec §4.1/§4.2).
func BuildLevels(pipelineID uuid.UUID, g *dag.Graph, reg *instrument.Registry, st *store.Store) (sched.Levels, error) {
	executors := make([]exec.Executor, len(g.Nodes))
	for i, n := range g.Nodes {
		e, err := exec.New(n.Config)
		if err != nil {
			return nil, err
		}
		executors[i] = e
	}

	levels := make(sched.Levels, len(g.Levels))
	for li, nodeIndices := range g.Levels {
		var units []sched.Unit
		for _, ni := range nodeIndices {
			node := g.Nodes[ni]
			sel, groupBy := node.Config.SelectorAndGroupBy()

			if groupBy.Zero() {
				concreteOnly := sel
				isConcrete := false
				concreteOnly.Synthetic = &isConcrete
				for _, id := range reg.Resolve(concreteOnly) {
					units = append(units, nodeUnit{
						pipelineID: pipelineID,
						store:      st,
						executor:   executors[ni],
						inputs:     []instrument.ID{id},
						output:     id,
					})
				}
				continue
			}

			for _, synthID := range reg.MaterializeSynthetics(sel, groupBy) {
				members, err := reg.Members(synthID)
				if err != nil {
					return nil, err
				}
				units = append(units, nodeUnit{
					pipelineID: pipelineID,
					store:      st,
					executor:   executors[ni],
					inputs:     members,
					output:     synthID,
				})
			}
		}
		levels[li] = units
	}
	return levels, nil
}
