package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/cvpipe/internal/ctxlog"
	"github.com/specialistvlad/cvpipe/internal/dag"
	"github.com/specialistvlad/cvpipe/internal/executor"
	"github.com/specialistvlad/cvpipe/internal/runstatus"
)

// Run executes the loaded pipeline and returns the aggregate run status.
// The error covers infrastructure failures (bad graph, cancelled context);
// stage outcomes are reported through the returned status instead.
func (a *App) Run(ctx context.Context) (runstatus.Status, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.cfg.StatusPort > 0 {
		a.startStatusServer(a.cfg.StatusPort)
	}

	graph, err := dag.Build(ctx, a.model)
	if err != nil {
		return runstatus.Failed, fmt.Errorf("failed to build dependency graph: %w", err)
	}
	a.logger.Debug("Dependency graph built.", "node_count", len(graph.Nodes))

	if len(graph.Nodes) == 0 {
		a.logger.Warn("Pipeline has no stages, nothing to run.")
		return a.tools.Status.Status(), nil
	}

	a.logger.Info("🚀 Starting pipeline run.",
		"run_id", a.tools.RunID, "job", a.tools.Job.Raw, "stages", len(graph.Nodes))
	exec := executor.New(graph, a.cfg.WorkerCount, a.registry, a.tools)
	if err := exec.Run(ctx); err != nil {
		return runstatus.Failed, fmt.Errorf("execution failed: %w", err)
	}

	status := a.tools.Status.Status()
	a.logger.Info("🏁 Pipeline run finished.", "run_id", a.tools.RunID, "status", status.String())
	return status, nil
}
