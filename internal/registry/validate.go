package registry

import (
	"context"
	"fmt"
	"reflect"

	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/cvpipe/internal/config"
	"github.com/specialistvlad/cvpipe/internal/ctxlog"
)

var (
	ctxType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	toolsType = reflect.TypeOf((*Toolbox)(nil))
	ctyType   = reflect.TypeOf(cty.Value{})
	errType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Validate checks the integrity of the registry against a loaded pipeline:
// every stage must name a registered runner, and every registered handler
// must have the expected shape. A mismatch is a programmer error caught at
// startup, before any stage runs.
func (r *Registry) Validate(ctx context.Context, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)

	for name, runner := range r.Runners {
		if err := checkHandler(name, runner); err != nil {
			return err
		}
	}
	logger.Debug("Runner handler shapes validated.", "count", len(r.Runners))

	for _, stage := range model.Pipeline.Stages {
		if _, ok := r.Runners[stage.RunnerType]; !ok {
			return fmt.Errorf("stage %q references unknown runner type %q", stage.ID(), stage.RunnerType)
		}
	}
	return nil
}

// checkHandler verifies one handler's signature:
// func(context.Context, *Toolbox, *T) (cty.Value, error), with *T matching
// what NewInput produces.
func checkHandler(name string, runner *RegisteredRunner) error {
	if runner.Fn == nil {
		return fmt.Errorf("runner %q has no handler", name)
	}
	fn := reflect.TypeOf(runner.Fn)
	if fn.Kind() != reflect.Func || fn.NumIn() != 3 || fn.NumOut() != 2 {
		return fmt.Errorf("runner %q handler must be func(ctx, *Toolbox, *T) (cty.Value, error)", name)
	}
	if fn.In(0) != ctxType {
		return fmt.Errorf("runner %q handler must take context.Context first", name)
	}
	if fn.In(1) != toolsType {
		return fmt.Errorf("runner %q handler must take *registry.Toolbox second", name)
	}
	if fn.Out(0) != ctyType || !fn.Out(1).Implements(errType) {
		return fmt.Errorf("runner %q handler must return (cty.Value, error)", name)
	}
	if runner.NewInput != nil {
		input := runner.NewInput()
		if reflect.TypeOf(input) != fn.In(2) {
			return fmt.Errorf("runner %q input type %T does not match handler parameter %s",
				name, input, fn.In(2))
		}
	}
	return nil
}
