package app

import (
	"fmt"
	"path/filepath"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// JobName is the raw orchestrator job name driving the resolution.
	JobName string
	// PipelinePath selects a pipeline .hcl file or directory. Empty uses
	// the embedded default pipeline.
	PipelinePath string
	// EnvFile optionally overlays a dotenv file under the live environment.
	EnvFile string
	// Workspace is the checkout root.
	Workspace string
	// BuildDir is the out-of-source build tree. Empty derives it from the
	// workspace.
	BuildDir string
	// ManifestURL is the manifest repository the checkout stage inits from.
	ManifestURL string
	StatusPort  int
	LogFormat   string
	LogLevel    string
	WorkerCount int
}

// NewConfig validates a Config and fills in derived defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.JobName == "" {
		return nil, fmt.Errorf("job name is required; pass -job or set JOB_NAME")
	}
	if cfg.Workspace == "" {
		cfg.Workspace = "workspace"
	}
	if cfg.BuildDir == "" {
		cfg.BuildDir = filepath.Join(cfg.Workspace, "build")
	}
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	return &cfg, nil
}
