/*
Package dag builds the computation graph of feature dependencies and
resolves it into topologically ordered, parallel-safe execution levels
(spec §4.2). Grounded on
original_source/arkin-insights/src/feature_pipeline/graph.rs's
FeatureGraph::new: edges are inferred automatically from each node's
declared inputs/outputs, a node whose input matches no other node's output
is a raw event field, and nodes are depth-layered from the topological
order so same-level nodes can run concurrently.
*/
package dag

import (
	"fmt"
	"sort"

	"insights-pipeline/internal/insights/config"
	"insights-pipeline/internal/insights/ierrors"
)

// Node is one feature_pipeline graph vertex: a FeatureConfig plus its
// inferred dependency edges.
type Node struct {
	ConfigIndex int
	Config      config.FeatureConfig
	Inputs      []string
	Outputs     []string

	dependsOn []int // node indices this node reads from
}

// Graph is the built, validated computation graph.
type Graph struct {
	Nodes  []Node
	Levels [][]int // node indices grouped by depth; level i only depends on levels < i
}

// Build constructs a Graph from the pipeline's feature list, inferring
// edges by output-name matching and returning ierrors.PipelineCycle if the
// resulting graph is not a DAG.
func Build(features []config.FeatureConfig) (*Graph, error) {
	nodes := make([]Node, len(features))
	outputIndex := make(map[string]int, len(features)*2)

	for i, f := range features {
		outs := f.Outputs()
		nodes[i] = Node{
			ConfigIndex: i,
			Config:      f,
			Inputs:      f.Inputs(),
			Outputs:     outs,
		}
		for _, out := range outs {
			outputIndex[out] = i
		}
	}

	for target := range nodes {
		seen := make(map[int]bool)
		for _, in := range nodes[target].Inputs {
			source, ok := outputIndex[in]
			if !ok {
				continue // raw event field, not produced by another node
			}
			if source == target {
				return nil, ierrors.NewPipelineCycle([]string{nodes[target].Config.ID})
			}
			if !seen[source] {
				nodes[target].dependsOn = append(nodes[target].dependsOn, source)
				seen[source] = true
			}
		}
	}

	order, err := topoSort(nodes)
	if err != nil {
		return nil, err
	}

	levels := layer(nodes, order)

	return &Graph{Nodes: nodes, Levels: levels}, nil
}

// topoSort runs Kahn's algorithm over the inferred dependency edges.
func topoSort(nodes []Node) ([]int, error) {
	inDegree := make([]int, len(nodes))
	dependents := make([][]int, len(nodes))
	for target, n := range nodes {
		for _, source := range n.dependsOn {
			dependents[source] = append(dependents[source], target)
			inDegree[target]++
		}
	}

	queue := make([]int, 0, len(nodes))
	for i, d := range inDegree {
		if d == 0 {
			queue = append(queue, i)
		}
	}
	sort.Ints(queue)

	order := make([]int, 0, len(nodes))
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		order = append(order, next)
		for _, dep := range dependents[next] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
		sort.Ints(queue)
	}

	if len(order) != len(nodes) {
		return nil, ierrors.NewPipelineCycle(cyclePath(nodes, inDegree))
	}
	return order, nil
}

// cyclePath walks the remaining (non-zero in-degree) nodes to produce a
// human-readable cycle for the error message.
func cyclePath(nodes []Node, inDegree []int) []string {
	var remaining []int
	for i, d := range inDegree {
		if d > 0 {
			remaining = append(remaining, i)
		}
	}
	if len(remaining) == 0 {
		return nil
	}

	start := remaining[0]
	path := []string{nodes[start].Config.ID}
	visited := map[int]bool{start: true}
	cur := start
	for {
		next := -1
		for _, dep := range nodes[cur].dependsOn {
			if inDegree[dep] > 0 {
				next = dep
				break
			}
		}
		if next == -1 {
			break
		}
		path = append(path, nodes[next].Config.ID)
		if visited[next] {
			break
		}
		visited[next] = true
		cur = next
	}
	return path
}

// layer assigns each node a depth equal to one more than the deepest
// dependency, then groups nodes by depth so a level's nodes have no
// intra-level dependencies and can run concurrently.
func layer(nodes []Node, order []int) [][]int {
	depth := make([]int, len(nodes))
	maxDepth := 0
	for _, idx := range order {
		d := 0
		for _, dep := range nodes[idx].dependsOn {
			if depth[dep]+1 > d {
				d = depth[dep] + 1
			}
		}
		depth[idx] = d
		if d > maxDepth {
			maxDepth = d
		}
	}

	levels := make([][]int, maxDepth+1)
	for _, idx := range order {
		levels[depth[idx]] = append(levels[depth[idx]], idx)
	}
	return levels
}

// DotString renders the graph in Graphviz DOT format for introspection
// (spec §9), mirroring to_dot_string in
// original_source/arkin-insights/src/feature_pipeline/graph.rs.
func (g *Graph) DotString() string {
	out := "digraph {\n"
	for i, n := range g.Nodes {
		out += fmt.Sprintf("  %d [label=%q];\n", i, n.Config.ID)
	}
	for target, n := range g.Nodes {
		for _, source := range n.dependsOn {
			out += fmt.Sprintf("  %d -> %d;\n", source, target)
		}
	}
	out += "}\n"
	return out
}
