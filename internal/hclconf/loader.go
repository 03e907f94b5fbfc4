package hclconf

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/specialistvlad/cvpipe/internal/config"
	"github.com/specialistvlad/cvpipe/internal/ctxlog"
	"github.com/specialistvlad/cvpipe/internal/fsutil"
)

// Loader reads HCL pipeline files and translates them into the
// format-agnostic config model.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader returns a ready-to-use HCL pipeline loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load implements config.Loader. Each path may be a single .hcl file or a
// directory searched recursively; stages from all files merge into one
// pipeline. With no paths at all, the embedded default commit-validation
// pipeline is loaded instead.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	if len(paths) == 0 {
		logger.Debug("No pipeline path given, using the embedded default pipeline.")
		file, diags := l.parser.ParseHCL(defaultPipeline, "builtin/cv.hcl")
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse built-in pipeline: %w", diags)
		}
		return l.translate(file.Body)
	}

	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("pipeline path %q is not readable: %w", path, err)
		}
		if info.IsDir() {
			found, err := fsutil.FindFilesByExtension(path, ".hcl")
			if err != nil {
				return nil, fmt.Errorf("failed to scan pipeline directory %q: %w", path, err)
			}
			files = append(files, found...)
		} else {
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl pipeline files found in %v", paths)
	}
	logger.Debug("Pipeline files discovered.", "count", len(files))

	bodies := make([]hcl.Body, 0, len(files))
	for _, f := range files {
		file, diags := l.parser.ParseHCLFile(f)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse %q: %w", f, diags)
		}
		bodies = append(bodies, file.Body)
	}
	return l.translate(bodies...)
}

// translate decodes the parsed bodies and merges their stages into a single
// pipeline, rejecting duplicate stage IDs across files.
func (l *Loader) translate(bodies ...hcl.Body) (*config.Model, error) {
	pipeline := &config.Pipeline{}
	seen := make(map[string]bool)

	for _, body := range bodies {
		var pf pipelineFile
		if diags := gohcl.DecodeBody(body, nil, &pf); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode pipeline file: %w", diags)
		}
		for _, sb := range pf.Stages {
			stage := translateStage(sb)
			if seen[stage.ID()] {
				return nil, fmt.Errorf("duplicate stage %q in pipeline definition", stage.ID())
			}
			seen[stage.ID()] = true
			pipeline.Stages = append(pipeline.Stages, stage)
		}
	}
	return &config.Model{Pipeline: pipeline}, nil
}

// translateStage converts the HCL-specific stage schema into the agnostic model.
func translateStage(sb *stageBlock) *config.Stage {
	stage := &config.Stage{
		RunnerType: sb.RunnerType,
		Name:       sb.Name,
		DependsOn:  sb.DependsOn,
		RunAlways:  sb.RunAlways,
		BestEffort: sb.BestEffort,
		Enabled:    sb.Enabled,
	}
	if sb.Arguments != nil {
		stage.Arguments = sb.Arguments.Body
	}
	return stage
}
