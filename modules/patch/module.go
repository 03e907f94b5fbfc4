// Package patch applies the triggering review's patch set on top of the
// synced tree: fetch the change refspec from the review server and
// cherry-pick it inside the change's own project directory.
package patch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/cvpipe/internal/ctxlog"
	"github.com/specialistvlad/cvpipe/internal/registry"
	"github.com/specialistvlad/cvpipe/internal/shell"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the patch runner with the central registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("patch", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Fn:       onRunPatch,
	})
}

// Input defines the arguments for the 'arguments' HCL block.
type Input struct {
	// ProjectDir overrides the directory the patch applies in; defaults to
	// the triggering project's directory under the workspace.
	ProjectDir string `hcl:"project_dir,optional"`
}

// onRunPatch is the handler for the 'patch' runner.
func onRunPatch(ctx context.Context, tools *registry.Toolbox, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	// The default pipeline gates this stage on gerrit.enabled; a no-op
	// here keeps custom pipelines without the gate safe too.
	if tools.Trigger == nil {
		logger.Info("No review trigger, nothing to patch.")
		return cty.ObjectVal(map[string]cty.Value{
			"applied":  cty.False,
			"revision": cty.StringVal(""),
		}), nil
	}

	dir := input.ProjectDir
	if dir == "" {
		dir = filepath.Join(tools.Workspace, tools.Trigger.Project)
	}

	logger.Info("Fetching change refspec.",
		"url", tools.Trigger.FetchURL(), "refspec", tools.Trigger.Refspec)
	if _, err := tools.Shell.Run(ctx, shell.Command{
		Name: "git",
		Args: []string{"fetch", tools.Trigger.FetchURL(), tools.Trigger.Refspec},
		Dir:  dir,
	}); err != nil {
		return cty.NilVal, fmt.Errorf("failed to fetch %s: %w", tools.Trigger.Refspec, err)
	}

	if _, err := tools.Shell.Run(ctx, shell.Command{
		Name: "git",
		Args: []string{"cherry-pick", "FETCH_HEAD"},
		Dir:  dir,
	}); err != nil {
		// Leave the tree clean for later stages and the next run.
		shell.BestEffort(ctx, tools.Shell, shell.Command{
			Name: "git",
			Args: []string{"cherry-pick", "--abort"},
			Dir:  dir,
		})
		return cty.NilVal, fmt.Errorf("failed to apply change %s: %w", tools.Trigger.ChangeID, err)
	}

	logger.Info("Patch applied.", "change", tools.Trigger.ChangeID, "revision", tools.Trigger.Revision)
	return cty.ObjectVal(map[string]cty.Value{
		"applied":  cty.True,
		"revision": cty.StringVal(tools.Trigger.Revision),
	}), nil
}
