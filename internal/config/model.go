package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
)

// Model is the format-agnostic representation of a loaded pipeline
// definition. The executor and registry operate on this model only and
// never see the concrete configuration syntax.
type Model struct {
	Pipeline *Pipeline
}

// Pipeline is an ordered collection of stage declarations. Ordering in the
// source file is cosmetic; execution order comes from DependsOn.
type Pipeline struct {
	Stages []*Stage
}

// Stage is one unit of pipeline work, bound to a registered runner type.
type Stage struct {
	// RunnerType names the registered runner that executes this stage.
	RunnerType string
	// Name is the human-readable instance name from the configuration.
	Name string
	// Arguments is the raw body of the 'arguments' block. It is decoded
	// lazily at execution time against the run's evaluation context, so
	// argument expressions can reference upstream stage outputs. Nil when
	// the block is absent.
	Arguments hcl.Body
	// DependsOn lists stage IDs ("<type>.<name>") that must finish first.
	DependsOn []string
	// RunAlways marks reporting-class stages that still execute after an
	// upstream failure instead of being skipped.
	RunAlways bool
	// BestEffort marks cleanup-class stages whose failure never affects
	// the run status.
	BestEffort bool
	// Enabled gates the stage. Nil means enabled; otherwise the expression
	// is evaluated at execution time and a false result skips the stage
	// without failing the run.
	Enabled hcl.Expression
}

// ID returns the stage's canonical "<type>.<name>" identifier used in
// depends_on references and in the execution graph.
func (s *Stage) ID() string {
	return s.RunnerType + "." + s.Name
}

// Loader is the interface for a format-specific pipeline loader.
type Loader interface {
	// Load reads pipeline definitions from the given paths (files or
	// directories) and translates them into the model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
