// Package executor drives the pipeline graph: a small worker pool pulls
// ready stages off a channel, executes their registered runners, and
// propagates completion (or skips) to dependents. Stage failures surface as
// run-status changes, never as an aborted run, so reporting-class stages
// always get their turn.
package executor

import (
	"context"
	"sync"

	"github.com/specialistvlad/cvpipe/internal/ctxlog"
	"github.com/specialistvlad/cvpipe/internal/dag"
	"github.com/specialistvlad/cvpipe/internal/registry"
)

// Executor orchestrates one pipeline run over a built graph.
type Executor struct {
	graph    *dag.Graph
	workers  int
	registry *registry.Registry
	tools    *registry.Toolbox
	wg       sync.WaitGroup
}

// New creates an executor. workers caps stage concurrency; the pipeline's
// dependency edges usually keep execution effectively sequential anyway.
func New(graph *dag.Graph, workers int, reg *registry.Registry, tools *registry.Toolbox) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{graph: graph, workers: workers, registry: reg, tools: tools}
}

// Run executes the graph to completion. The returned error reports
// infrastructure problems (context cancellation) only; stage outcomes are
// recorded on the shared status tracker.
func (e *Executor) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	// Buffered to the node count so completion paths never block on send.
	readyChan := make(chan *dag.Node, len(e.graph.Nodes))
	e.wg.Add(len(e.graph.Nodes))

	var workerWg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		workerWg.Add(1)
		go func(id int) {
			defer workerWg.Done()
			e.worker(ctx, readyChan, id)
		}(i)
	}

	roots := e.graph.Roots()
	logger.Debug("Seeding ready queue with root stages.", "count", len(roots))
	for _, n := range roots {
		readyChan <- n
	}

	e.wg.Wait()
	close(readyChan)
	workerWg.Wait()

	return ctx.Err()
}
