// Package analyzer drives a clang static-analysis pass over the source tree
// and enforces the configured warning threshold on its output.
package analyzer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/cvpipe/internal/ctxlog"
	"github.com/specialistvlad/cvpipe/internal/registry"
	"github.com/specialistvlad/cvpipe/internal/shell"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the analyzer runner with the central registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("analyzer", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Fn:       onRunAnalyzer,
	})
}

// Input defines the arguments for the 'arguments' HCL block.
type Input struct {
	// OutputDir receives the HTML report bundle scan-build produces.
	OutputDir string `hcl:"output_dir,optional"`
	// Jobs overrides the compile job count.
	Jobs int `hcl:"jobs,optional"`
}

// onRunAnalyzer is the handler for the 'analyzer' runner.
func onRunAnalyzer(ctx context.Context, tools *registry.Toolbox, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	jobs := input.Jobs
	if jobs <= 0 {
		jobs = tools.Build.Parallelism
	}

	// The build dir was configured with the resolved generator, so the
	// analysis pass must drive that generator's native tool.
	buildTool := "make"
	if tools.Build.Generator == "Ninja" {
		buildTool = "ninja"
	}

	args := []string{}
	if input.OutputDir != "" {
		args = append(args, "-o", input.OutputDir)
	}
	args = append(args, buildTool, "-j"+strconv.Itoa(jobs))

	logger.Info("Running static analysis.", "jobs", jobs)
	out, err := tools.Shell.Run(ctx, shell.Command{Name: "scan-build", Args: args, Dir: tools.BuildDir})
	if err != nil {
		return cty.NilVal, err
	}

	warnings := strings.Count(out, "warning:")
	threshold := tools.Build.WarningThreshold

	output := cty.ObjectVal(map[string]cty.Value{
		"warnings":  cty.NumberIntVal(int64(warnings)),
		"threshold": cty.NumberIntVal(int64(threshold)),
	})

	if warnings > threshold {
		logger.Warn("Warning threshold exceeded.", "warnings", warnings, "threshold", threshold)
		return output, fmt.Errorf("static analysis produced %d warnings, threshold is %d", warnings, threshold)
	}

	logger.Info("Static analysis passed.", "warnings", warnings, "threshold", threshold)
	return output, nil
}
