package executor

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/cvpipe/internal/ctxlog"
	"github.com/specialistvlad/cvpipe/internal/dag"
)

// runStageNode evaluates a stage's gate, decodes its arguments against the
// live evaluation context, and dispatches its registered handler.
func (e *Executor) runStageNode(ctx context.Context, n *dag.Node) error {
	logger := ctxlog.FromContext(ctx).With("stage", n.ID)
	evalCtx := e.buildEvalContext(ctx, n)

	if n.Stage.Enabled != nil {
		val, diags := n.Stage.Enabled.Value(evalCtx)
		if diags.HasErrors() {
			return fmt.Errorf("failed to evaluate enabled gate for %s: %w", n.ID, diags)
		}
		if !val.IsNull() && val.Type() != cty.Bool {
			return fmt.Errorf("enabled gate for %s must be a bool, got %s", n.ID, val.Type().FriendlyName())
		}
		if val.IsNull() || val.False() {
			logger.Info("⏭️ Stage disabled for this run.")
			n.Disabled = true
			n.Output = cty.NullVal(cty.DynamicPseudoType)
			return nil
		}
	}

	runner, ok := e.registry.Runners[n.Stage.RunnerType]
	if !ok {
		// Startup validation makes this unreachable; keep the error anyway.
		return fmt.Errorf("unknown runner type %q", n.Stage.RunnerType)
	}

	var input any
	if runner.NewInput != nil {
		input = runner.NewInput()
		body := n.Stage.Arguments
		if body == nil {
			body = hcl.EmptyBody()
		}
		if diags := gohcl.DecodeBody(body, evalCtx, input); diags.HasErrors() {
			return fmt.Errorf("failed to decode arguments for %s: %w", n.ID, diags)
		}
	}

	logger.Info("▶️ Starting stage.")
	handlerFunc := reflect.ValueOf(runner.Fn)
	callArgs := []reflect.Value{reflect.ValueOf(ctx), reflect.ValueOf(e.tools)}
	if input == nil {
		callArgs = append(callArgs, reflect.Zero(handlerFunc.Type().In(2)))
	} else {
		callArgs = append(callArgs, reflect.ValueOf(input))
	}

	results := handlerFunc.Call(callArgs)
	if errResult := results[1].Interface(); errResult != nil {
		return errResult.(error)
	}
	n.Output = results[0].Interface().(cty.Value)
	logger.Info("✅ Stage finished.")
	return nil
}
