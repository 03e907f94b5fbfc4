// Package checkout syncs the multi-project source tree: repo init against
// the resolved manifest file and group, then a parallel repo sync into the
// workspace.
package checkout

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/cvpipe/internal/ctxlog"
	"github.com/specialistvlad/cvpipe/internal/registry"
	"github.com/specialistvlad/cvpipe/internal/shell"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the checkout runner with the central registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("checkout", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Fn:       onRunCheckout,
	})
}

// Input defines the arguments for the 'arguments' HCL block.
type Input struct {
	// ManifestURL overrides the manifest repository for this stage.
	ManifestURL string `hcl:"manifest_url,optional"`
	// SyncJobs caps repo sync parallelism; defaults to the build parallelism.
	SyncJobs int `hcl:"sync_jobs,optional"`
}

// onRunCheckout is the handler for the 'checkout' runner.
func onRunCheckout(ctx context.Context, tools *registry.Toolbox, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	url := input.ManifestURL
	if url == "" {
		url = tools.ManifestURL
	}
	jobs := input.SyncJobs
	if jobs <= 0 {
		jobs = tools.Build.Parallelism
	}

	if err := os.MkdirAll(tools.Workspace, 0755); err != nil {
		return cty.NilVal, fmt.Errorf("failed to create workspace %q: %w", tools.Workspace, err)
	}

	logger.Info("Initializing manifest checkout.",
		"url", url, "manifest", tools.Manifest.File, "group", tools.Manifest.Group)
	if _, err := tools.Shell.Run(ctx, shell.Command{
		Name: "repo",
		Args: []string{"init", "-u", url, "-m", tools.Manifest.File, "-g", tools.Manifest.Group},
		Dir:  tools.Workspace,
	}); err != nil {
		return cty.NilVal, fmt.Errorf("repo init failed: %w", err)
	}

	logger.Info("Syncing source tree.", "jobs", jobs)
	if _, err := tools.Shell.Run(ctx, shell.Command{
		Name: "repo",
		Args: []string{"sync", "-j" + strconv.Itoa(jobs)},
		Dir:  tools.Workspace,
	}); err != nil {
		return cty.NilVal, fmt.Errorf("repo sync failed: %w", err)
	}

	return cty.ObjectVal(map[string]cty.Value{
		"workspace":      cty.StringVal(tools.Workspace),
		"manifest_file":  cty.StringVal(tools.Manifest.File),
		"manifest_group": cty.StringVal(tools.Manifest.Group),
	}), nil
}
