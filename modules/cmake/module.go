// Package cmake runs the configure step: the build-system generator invoked
// with the argument string the resolver composed from the environment.
package cmake

import (
	"context"
	"fmt"
	"os"

	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/cvpipe/internal/ctxlog"
	"github.com/specialistvlad/cvpipe/internal/registry"
	"github.com/specialistvlad/cvpipe/internal/shell"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the cmake runner with the central registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("cmake", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Fn:       onRunCMake,
	})
}

// Input defines the arguments for the 'arguments' HCL block.
type Input struct {
	// SourceDir is the tree to configure; defaults to the workspace root.
	SourceDir string `hcl:"source_dir,optional"`
	// ExtraArgs are appended after the resolver-composed arguments.
	ExtraArgs []string `hcl:"extra_args,optional"`
}

// onRunCMake is the handler for the 'cmake' runner.
func onRunCMake(ctx context.Context, tools *registry.Toolbox, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	sourceDir := input.SourceDir
	if sourceDir == "" {
		sourceDir = tools.Workspace
	}
	if err := os.MkdirAll(tools.BuildDir, 0755); err != nil {
		return cty.NilVal, fmt.Errorf("failed to create build dir %q: %w", tools.BuildDir, err)
	}

	args := tools.Build.Args()
	args = append(args, input.ExtraArgs...)
	args = append(args, sourceDir)

	logger.Info("Configuring build tree.", "build_dir", tools.BuildDir, "args", tools.Build.ArgString())
	if _, err := tools.Shell.Run(ctx, shell.Command{
		Name: "cmake",
		Args: args,
		Dir:  tools.BuildDir,
	}); err != nil {
		return cty.NilVal, fmt.Errorf("configure failed: %w", err)
	}

	return cty.ObjectVal(map[string]cty.Value{
		"build_dir": cty.StringVal(tools.BuildDir),
		"args":      cty.StringVal(tools.Build.ArgString()),
	}), nil
}
