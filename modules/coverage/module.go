// Package coverage produces a Cobertura-style XML coverage report from the
// gcov data left behind by an instrumented test run.
package coverage

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/cvpipe/internal/ctxlog"
	"github.com/specialistvlad/cvpipe/internal/registry"
	"github.com/specialistvlad/cvpipe/internal/shell"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the coverage runner with the central registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("coverage", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Fn:       onRunCoverage,
	})
}

// Input defines the arguments for the 'arguments' HCL block.
type Input struct {
	// OutputFile is the report path relative to the build directory.
	OutputFile string `hcl:"output_file,optional"`
	// SourceDir is the root gcovr resolves source paths against.
	SourceDir string `hcl:"source_dir,optional"`
	// Jobs caps gcovr's worker count.
	Jobs int `hcl:"jobs,optional"`
}

// onRunCoverage is the handler for the 'coverage' runner.
func onRunCoverage(ctx context.Context, tools *registry.Toolbox, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	outputFile := input.OutputFile
	if outputFile == "" {
		outputFile = "coverage.xml"
	}
	sourceDir := input.SourceDir
	if sourceDir == "" {
		sourceDir = tools.Workspace
	}
	jobs := input.Jobs
	if jobs <= 0 {
		jobs = tools.Build.Parallelism
	}

	reportPath := filepath.Join(tools.BuildDir, outputFile)
	args := []string{
		"--xml", "--output", reportPath,
		"--root", sourceDir,
		"-j", strconv.Itoa(jobs),
		tools.BuildDir,
	}

	logger.Info("Generating coverage report.", "report", reportPath)
	if _, err := tools.Shell.Run(ctx, shell.Command{Name: "gcovr", Args: args, Dir: tools.BuildDir}); err != nil {
		return cty.NilVal, err
	}

	logger.Info("Coverage report written.", "report", reportPath)
	return cty.ObjectVal(map[string]cty.Value{
		"report": cty.StringVal(reportPath),
	}), nil
}
