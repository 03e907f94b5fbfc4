package hclconf

import "github.com/hashicorp/hcl/v2"

// stageArgs represents the content of the 'arguments' block within a stage.
// The body is kept raw; decoding happens at execution time.
type stageArgs struct {
	Body hcl.Body `hcl:",remain"`
}

// stageBlock represents a `stage` block from a pipeline file. It is a
// runnable instance of a registered runner type.
type stageBlock struct {
	RunnerType string         `hcl:"runner_type,label"`
	Name       string         `hcl:"stage_name,label"`
	Arguments  *stageArgs     `hcl:"arguments,block"`
	DependsOn  []string       `hcl:"depends_on,optional"`
	RunAlways  bool           `hcl:"run_always,optional"`
	BestEffort bool           `hcl:"best_effort,optional"`
	Enabled    hcl.Expression `hcl:"enabled,optional"`
}

// pipelineFile represents the top-level structure of one pipeline file.
type pipelineFile struct {
	Stages []*stageBlock `hcl:"stage,block"`
	Body   hcl.Body      `hcl:",remain"`
}
