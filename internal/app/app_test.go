package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/cvpipe/internal/hclconf"
	"github.com/specialistvlad/cvpipe/internal/runstatus"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Parallel()
	cfg, err := NewConfig(Config{JobName: "tlm.linux/master"})
	require.NoError(t, err)
	assert.Equal(t, "workspace", cfg.Workspace)
	assert.Equal(t, filepath.Join("workspace", "build"), cfg.BuildDir)
	assert.Equal(t, 1, cfg.WorkerCount)
}

func TestNewConfig_RequiresJobName(t *testing.T) {
	t.Parallel()
	_, err := NewConfig(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JOB_NAME")
}

func TestNewLogger_FormatAndLevel(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	logger := newLogger("warn", "json", out)
	logger.Info("quiet")
	logger.Warn("loud")

	assert.NotContains(t, out.String(), "quiet")
	assert.Contains(t, out.String(), `"msg":"loud"`)

	out.Reset()
	newLogger("debug", "text", out).Debug("verbose")
	assert.Contains(t, out.String(), "verbose")
}

func TestNewApp_DefaultPipeline(t *testing.T) {
	cfg, err := NewConfig(Config{JobName: "tlm.linux/master", Workspace: t.TempDir()})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	a := NewApp(out, cfg, hclconf.NewLoader())
	t.Cleanup(func() { a.Close() })

	assert.NotEmpty(t, a.model.Pipeline.Stages)
	assert.Len(t, a.Registry().Runners, 9)

	tools := a.Toolbox()
	assert.Equal(t, "tlm", tools.Job.Project)
	assert.Equal(t, "linux && master", tools.Job.NodeLabel())
	assert.Equal(t, "enterprise", tools.Manifest.Group)
	assert.NotEmpty(t, tools.RunID)
}

func TestNewApp_PanicsOnInvalidPipeline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`stage "ninja" "compile" {`), 0644))

	cfg, err := NewConfig(Config{JobName: "tlm.linux/master", PipelinePath: path, Workspace: t.TempDir()})
	require.NoError(t, err)

	require.Panics(t, func() {
		NewApp(&bytes.Buffer{}, cfg, hclconf.NewLoader())
	})
}

func TestNewApp_PanicsOnUnknownRunner(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`stage "teleport" "beam" {}`), 0644))

	cfg, err := NewConfig(Config{JobName: "tlm.linux/master", PipelinePath: path, Workspace: t.TempDir()})
	require.NoError(t, err)

	require.Panics(t, func() {
		NewApp(&bytes.Buffer{}, cfg, hclconf.NewLoader())
	})
}

func TestRun_ReportOnlyPipeline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`stage "report" "verdict" {
  run_always = true
}`), 0644))

	cfg, err := NewConfig(Config{JobName: "tlm.linux/master", PipelinePath: path, Workspace: t.TempDir(), WorkerCount: 2})
	require.NoError(t, err)

	a := NewApp(&bytes.Buffer{}, cfg, hclconf.NewLoader())
	t.Cleanup(func() { a.Close() })

	status, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, runstatus.Success, status)
}
