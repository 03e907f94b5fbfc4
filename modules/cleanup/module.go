// Package cleanup reclaims compiler-cache space and removes stray core dumps
// after a build. Everything here is best effort; a failed cleanup never
// changes the run verdict.
package cleanup

import (
	"context"

	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/cvpipe/internal/ctxlog"
	"github.com/specialistvlad/cvpipe/internal/registry"
	"github.com/specialistvlad/cvpipe/internal/shell"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the cleanup runner with the central registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("cleanup", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Fn:       onRunCleanup,
	})
}

// Input defines the arguments for the 'arguments' HCL block.
type Input struct {
	// SkipCcache leaves the compiler cache untouched.
	SkipCcache bool `hcl:"skip_ccache,optional"`
}

// onRunCleanup is the handler for the 'cleanup' runner.
func onRunCleanup(ctx context.Context, tools *registry.Toolbox, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	cmds := []shell.Command{
		{
			Name: "find",
			Args: []string{tools.Workspace, "-maxdepth", "1", "-name", "core.*", "-delete"},
		},
	}
	if !input.SkipCcache {
		cmds = append([]shell.Command{{Name: "ccache", Args: []string{"-c"}}}, cmds...)
	}
	shell.BestEffort(ctx, tools.Shell, cmds...)

	logger.Info("Cleanup complete.")
	return cty.ObjectVal(map[string]cty.Value{
		"workspace": cty.StringVal(tools.Workspace),
	}), nil
}
