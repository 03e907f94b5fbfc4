package dag

import (
	"context"
	"fmt"

	"github.com/specialistvlad/cvpipe/internal/config"
	"github.com/specialistvlad/cvpipe/internal/ctxlog"
)

// Graph is the validated execution graph for one pipeline run.
type Graph struct {
	Nodes map[string]*Node
}

// Build constructs a complete, validated dependency graph from the pipeline
// model: one node per stage, edges from depends_on, cycle detection.
func Build(ctx context.Context, model *config.Model) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.")
	graph := &Graph{Nodes: make(map[string]*Node)}

	// First pass: create all nodes.
	for _, stage := range model.Pipeline.Stages {
		id := stage.ID()
		if _, exists := graph.Nodes[id]; exists {
			return nil, fmt.Errorf("duplicate stage %q in pipeline", id)
		}
		graph.Nodes[id] = newNode(stage)
	}
	logger.Debug("Build: Node creation complete.", "node_count", len(graph.Nodes))

	// Second pass: link dependencies.
	for _, node := range graph.Nodes {
		for _, depID := range node.Stage.DependsOn {
			dep, ok := graph.Nodes[depID]
			if !ok {
				return nil, fmt.Errorf("stage %q depends on unknown stage %q", node.ID, depID)
			}
			if dep == node {
				return nil, fmt.Errorf("stage %q depends on itself", node.ID)
			}
			node.Deps[depID] = dep
			dep.Dependents[node.ID] = node
		}
	}
	logger.Debug("Build: Node linking complete.")

	// Third pass: initialize counters.
	for _, node := range graph.Nodes {
		node.SetInitialCounters()
	}

	if err := graph.detectCycles(); err != nil {
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}
	logger.Debug("Build: Graph construction successful.")
	return graph, nil
}

// Roots returns the nodes with no dependencies, i.e. the initially runnable
// set.
func (g *Graph) Roots() []*Node {
	var roots []*Node
	for _, n := range g.Nodes {
		if len(n.Deps) == 0 {
			roots = append(roots, n)
		}
	}
	return roots
}

// detectCycles runs a three-color depth-first search over the graph.
func (g *Graph) detectCycles() error {
	const (
		white = 0 // unvisited
		gray  = 1 // on the current path
		black = 2 // fully explored
	)
	colors := make(map[string]int, len(g.Nodes))

	var visit func(n *Node) error
	visit = func(n *Node) error {
		colors[n.ID] = gray
		for _, dep := range n.Deps {
			switch colors[dep.ID] {
			case gray:
				return fmt.Errorf("dependency cycle through %q and %q", n.ID, dep.ID)
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		colors[n.ID] = black
		return nil
	}

	for _, n := range g.Nodes {
		if colors[n.ID] == white {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}
