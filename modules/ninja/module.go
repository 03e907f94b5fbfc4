// Package ninja runs the compile step with the configured generator's
// native tool, passing the resolved compile parallelism through.
package ninja

import (
	"context"
	"fmt"
	"strconv"

	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/cvpipe/internal/ctxlog"
	"github.com/specialistvlad/cvpipe/internal/registry"
	"github.com/specialistvlad/cvpipe/internal/shell"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the ninja runner with the central registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("ninja", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Fn:       onRunBuild,
	})
}

// Input defines the arguments for the 'arguments' HCL block.
type Input struct {
	// Target is an optional build target; empty builds everything.
	Target string `hcl:"target,optional"`
	// Jobs overrides the compile parallelism.
	Jobs int `hcl:"jobs,optional"`
}

// buildCommand picks the generator's native build tool.
func buildCommand(generator string, jobs int, target string) shell.Command {
	name := "make"
	if generator == "Ninja" {
		name = "ninja"
	}
	args := []string{"-j" + strconv.Itoa(jobs)}
	if target != "" {
		args = append(args, target)
	}
	return shell.Command{Name: name, Args: args}
}

// onRunBuild is the handler for the 'ninja' runner.
func onRunBuild(ctx context.Context, tools *registry.Toolbox, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	jobs := input.Jobs
	if jobs <= 0 {
		jobs = tools.Build.Parallelism
	}

	cmd := buildCommand(tools.Build.Generator, jobs, input.Target)
	cmd.Dir = tools.BuildDir

	logger.Info("Compiling.", "cmd", cmd.String(), "dir", cmd.Dir)
	if _, err := tools.Shell.Run(ctx, cmd); err != nil {
		return cty.NilVal, fmt.Errorf("build failed: %w", err)
	}

	return cty.ObjectVal(map[string]cty.Value{
		"target": cty.StringVal(input.Target),
		"jobs":   cty.NumberIntVal(int64(jobs)),
	}), nil
}
