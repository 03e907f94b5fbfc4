package coverage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/cvpipe/internal/jobcfg"
	"github.com/specialistvlad/cvpipe/internal/registry"
	"github.com/specialistvlad/cvpipe/internal/testutil"
)

func TestCoverage_GeneratesXMLReport(t *testing.T) {
	t.Parallel()
	fake := &testutil.FakeRunner{}
	tools := &registry.Toolbox{
		Shell:     fake,
		Build:     jobcfg.BuildConfig{Parallelism: 6},
		Workspace: t.TempDir(),
		BuildDir:  t.TempDir(),
	}

	out, err := onRunCoverage(context.Background(), tools, &Input{})
	require.NoError(t, err)

	require.Len(t, fake.Calls, 1)
	call := fake.Calls[0]
	assert.Equal(t, "gcovr", call.Name)
	wantReport := filepath.Join(tools.BuildDir, "coverage.xml")
	assert.Equal(t,
		[]string{"--xml", "--output", wantReport, "--root", tools.Workspace, "-j", "6", tools.BuildDir},
		call.Args)
	assert.Equal(t, cty.StringVal(wantReport), out.GetAttr("report"))
}

func TestCoverage_ArgumentsOverrideDefaults(t *testing.T) {
	t.Parallel()
	fake := &testutil.FakeRunner{}
	tools := &registry.Toolbox{
		Shell:     fake,
		Build:     jobcfg.BuildConfig{Parallelism: 6},
		Workspace: t.TempDir(),
		BuildDir:  t.TempDir(),
	}
	srcDir := t.TempDir()

	out, err := onRunCoverage(context.Background(), tools, &Input{
		OutputFile: "cov/report.xml",
		SourceDir:  srcDir,
		Jobs:       2,
	})
	require.NoError(t, err)

	require.Len(t, fake.Calls, 1)
	args := fake.Calls[0].Args
	assert.Contains(t, args, filepath.Join(tools.BuildDir, "cov/report.xml"))
	assert.Contains(t, args, srcDir)
	assert.Contains(t, args, "2")
	assert.Equal(t, cty.StringVal(filepath.Join(tools.BuildDir, "cov/report.xml")), out.GetAttr("report"))
}

func TestCoverage_PropagatesFailure(t *testing.T) {
	t.Parallel()
	fake := &testutil.FakeRunner{Errs: map[string]error{"gcovr": assert.AnError}}
	tools := &registry.Toolbox{
		Shell:     fake,
		Build:     jobcfg.BuildConfig{Parallelism: 1},
		Workspace: t.TempDir(),
		BuildDir:  t.TempDir(),
	}

	_, err := onRunCoverage(context.Background(), tools, &Input{})
	require.Error(t, err)
}
