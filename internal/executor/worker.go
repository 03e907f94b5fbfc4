package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/cvpipe/internal/ctxlog"
	"github.com/specialistvlad/cvpipe/internal/dag"
	"github.com/specialistvlad/cvpipe/internal/runstatus"
)

// worker is the core processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, readyChan chan *dag.Node, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for n := range readyChan {
		stageLogger := logger.With("workerID", workerID, "stage", n.ID)

		if ctx.Err() != nil {
			if n.Skip(ctx.Err(), &e.wg) {
				e.tools.Status.SetStage(n.ID, dag.Skipped.String(), ctx.Err().Error())
				e.releaseDependents(ctx, n, true, readyChan)
			}
			continue
		}

		stageLogger.Debug("Worker picked up stage for execution.")
		n.SetState(dag.Running)
		e.tools.Status.SetStage(n.ID, dag.Running.String(), "")

		err := e.runStageNode(ctx, n)
		if err != nil {
			stageLogger.Error("Stage failed.", "error", err)
			n.SetState(dag.Failed)
			n.Err = err
			e.recordFailure(n, err)
			e.releaseDependents(ctx, n, true, readyChan)
			e.wg.Done()
			continue
		}

		n.SetState(dag.Done)
		detail := ""
		if n.Disabled {
			detail = "stage disabled"
		}
		e.tools.Status.SetStage(n.ID, dag.Done.String(), detail)
		stageLogger.Debug("Stage succeeded.")

		e.releaseDependents(ctx, n, false, readyChan)
		e.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// recordFailure folds a stage failure into the run status. Best-effort
// stages never change the status; otherwise the stage may carry an explicit
// status (e.g. unstable for test failures under coverage), defaulting to
// failed.
func (e *Executor) recordFailure(n *dag.Node, err error) {
	e.tools.Status.SetStage(n.ID, dag.Failed.String(), err.Error())
	if n.Stage.BestEffort {
		return
	}
	var se *runstatus.Error
	if errors.As(err, &se) {
		e.tools.Status.Merge(se.Status)
		return
	}
	e.tools.Status.Merge(runstatus.Failed)
}

// releaseDependents unlocks the dependents of a finished node. When the node
// failed (or was skipped), dependents are marked for skipping unless they are
// run_always stages; the skip propagates transitively the same way.
func (e *Executor) releaseDependents(ctx context.Context, n *dag.Node, failed bool, readyChan chan *dag.Node) {
	for _, dep := range n.Dependents {
		if failed && !dep.Stage.RunAlways {
			dep.RequestSkip()
		}
		if dep.DecrementDepCount() != 0 {
			continue
		}
		if dep.SkipRequested() {
			cause := fmt.Errorf("upstream stage %s did not succeed", n.ID)
			if dep.Skip(cause, &e.wg) {
				e.tools.Status.SetStage(dep.ID, dag.Skipped.String(), cause.Error())
				e.releaseDependents(ctx, dep, true, readyChan)
			}
			continue
		}
		readyChan <- dep
	}
}
