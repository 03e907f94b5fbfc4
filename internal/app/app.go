package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/specialistvlad/cvpipe/internal/config"
	"github.com/specialistvlad/cvpipe/internal/ctxlog"
	"github.com/specialistvlad/cvpipe/internal/envcfg"
	"github.com/specialistvlad/cvpipe/internal/gerrit"
	"github.com/specialistvlad/cvpipe/internal/jobcfg"
	"github.com/specialistvlad/cvpipe/internal/registry"
	"github.com/specialistvlad/cvpipe/internal/runstatus"
	"github.com/specialistvlad/cvpipe/internal/shell"
)

// App encapsulates one commit-validation run: the resolved toolbox, the
// loaded pipeline model, and the populated runner registry.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	model    *config.Model
	tools    *registry.Toolbox
	cfg      *Config
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and registry, or
// panics on a fatal startup error.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	env := envcfg.System()
	if cfg.EnvFile != "" {
		overlaid, err := env.WithDotenv(cfg.EnvFile)
		if err != nil {
			panic(fmt.Errorf("failed to load env file: %w", err))
		}
		env = overlaid
	}

	tools, err := resolveToolbox(env, cfg)
	if err != nil {
		panic(err)
	}
	logger.Debug("Job resolved.",
		"job", tools.Job.String(),
		"node_label", tools.Job.NodeLabel(),
		"manifest", tools.Manifest.File,
		"group", tools.Manifest.Group,
		"cmake_args", tools.Build.ArgString(),
		"run_tests", tools.RunTests)

	var paths []string
	if cfg.PipelinePath != "" {
		paths = append(paths, cfg.PipelinePath)
	}
	model, err := loader.Load(ctx, paths...)
	if err != nil {
		panic(fmt.Errorf("failed to load pipeline: %w", err))
	}
	logger.Debug("Pipeline loaded.", "stages", len(model.Pipeline.Stages))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("Stage runners registered.", "count", len(reg.Runners))

	if err := reg.Validate(ctx, model); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		model:    model,
		tools:    tools,
		cfg:      cfg,
	}
}

// resolveToolbox turns the environment snapshot and the CLI config into the
// read-only run context every stage handler receives.
func resolveToolbox(env envcfg.Environ, cfg *Config) (*registry.Toolbox, error) {
	job, err := jobcfg.ParseJobName(cfg.JobName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve job name: %w", err)
	}
	if branch, ok := env.Lookup("BRANCH_NAME"); ok && branch != "" {
		job.Branch = branch
	}

	build := jobcfg.BuildFlags(env, job.Variant)
	manifest := jobcfg.Manifest(job.Branch, job.Project)

	// The source tree is not synced yet at resolution time, so the test
	// manifest is assumed present unless the environment says otherwise.
	hasTestManifest := true
	if _, ok := env.Lookup("HAS_TEST_MANIFEST"); ok {
		hasTestManifest = env.Bool("HAS_TEST_MANIFEST")
	}
	runTests := jobcfg.ShouldRunTests(job.Variant, hasTestManifest, env.Bool("GOPROJECT"))

	trigger, triggered, err := gerrit.TriggerFromEnviron(env)
	if err != nil {
		return nil, err
	}

	tools := &registry.Toolbox{
		Shell:       shell.Local{},
		Env:         env,
		Job:         job,
		Build:       build,
		Manifest:    manifest,
		RunTests:    runTests,
		Status:      runstatus.NewTracker(),
		RunID:       uuid.NewString(),
		Workspace:   cfg.Workspace,
		BuildDir:    cfg.BuildDir,
		ManifestURL: cfg.ManifestURL,
	}
	if tools.ManifestURL == "" {
		tools.ManifestURL = env.Get("MANIFEST_URL", "https://github.com/couchbase/manifest")
	}

	if triggered {
		tools.Trigger = trigger
		baseURL := env.Get("GERRIT_URL", fmt.Sprintf("http://%s:8080", trigger.Host))
		var opts []gerrit.Option
		if user, ok := env.Lookup("GERRIT_HTTP_USER"); ok {
			opts = append(opts, gerrit.WithBasicAuth(user, env.Get("GERRIT_HTTP_PASSWORD", "")))
		}
		tools.Review = gerrit.NewClient(baseURL, opts...)
	}
	return tools, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Toolbox returns the resolved run context. This is primarily for testing.
func (a *App) Toolbox() *registry.Toolbox {
	return a.tools
}

// Close releases resources held by the run context.
func (a *App) Close() error {
	if a.tools.Review != nil {
		return a.tools.Review.Close()
	}
	return nil
}
