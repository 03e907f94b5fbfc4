package registry

import (
	"github.com/specialistvlad/cvpipe/internal/envcfg"
	"github.com/specialistvlad/cvpipe/internal/gerrit"
	"github.com/specialistvlad/cvpipe/internal/jobcfg"
	"github.com/specialistvlad/cvpipe/internal/runstatus"
	"github.com/specialistvlad/cvpipe/internal/shell"
)

// RegisteredRunner couples a runner's input factory with its handler.
type RegisteredRunner struct {
	// NewInput returns a pointer to a fresh, hcl-tagged input struct the
	// executor decodes the stage's arguments into. Nil for runners that
	// take no arguments.
	NewInput func() any
	// Fn is the handler, with signature
	// func(ctx context.Context, tools *Toolbox, input *T) (cty.Value, error)
	// where *T matches NewInput. Dispatched via reflection by the executor
	// and shape-checked up front by Validate.
	Fn any
}

// Registry maps runner type names to their registered handlers.
type Registry struct {
	Runners map[string]*RegisteredRunner
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{Runners: make(map[string]*RegisteredRunner)}
}

// RegisterRunner adds a runner under its type name. Registering the same
// name twice is a programmer error.
func (r *Registry) RegisterRunner(typeName string, runner *RegisteredRunner) {
	if _, exists := r.Runners[typeName]; exists {
		panic("registry: runner type registered twice: " + typeName)
	}
	r.Runners[typeName] = runner
}

// Module is the interface every stage-runner package implements to plug
// itself into the registry.
type Module interface {
	Register(r *Registry)
}

// Toolbox bundles the resolved run context handed to every stage handler:
// the environment snapshot, the job resolution results, workspace paths,
// and shared collaborators. It is assembled once at startup and treated as
// read-only by handlers (the status tracker is the one deliberately shared
// mutable member).
type Toolbox struct {
	// Shell executes external tools.
	Shell shell.Runner
	// Env is the immutable environment snapshot.
	Env envcfg.Environ

	// Job is the parsed job identity.
	Job jobcfg.Job
	// Build is the composed build configuration.
	Build jobcfg.BuildConfig
	// Manifest names the checkout manifest.
	Manifest jobcfg.ManifestSpec
	// RunTests is the resolved test policy for this run.
	RunTests bool

	// Trigger and Review are set only for review-triggered runs; both are
	// nil on cron and manual runs.
	Trigger *gerrit.Trigger
	Review  *gerrit.Client

	// Status is the shared run-status tracker.
	Status *runstatus.Tracker

	// RunID uniquely identifies this pipeline run.
	RunID string
	// Workspace is the checkout root.
	Workspace string
	// BuildDir is the out-of-source build tree.
	BuildDir string
	// ManifestURL is the manifest repository the checkout stage inits from.
	ManifestURL string
}
