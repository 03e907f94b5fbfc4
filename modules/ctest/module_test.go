package ctest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/cvpipe/internal/jobcfg"
	"github.com/specialistvlad/cvpipe/internal/registry"
	"github.com/specialistvlad/cvpipe/internal/runstatus"
	"github.com/specialistvlad/cvpipe/internal/testutil"
)

const passingResults = `<?xml version="1.0"?>
<Site>
  <Testing>
    <Test Status="passed"><Name>unit_a</Name></Test>
    <Test Status="passed"><Name>unit_b</Name></Test>
  </Testing>
</Site>`

const failingResults = `<?xml version="1.0"?>
<Site>
  <Testing>
    <Test Status="passed"><Name>unit_a</Name></Test>
    <Test Status="failed"><Name>unit_b</Name></Test>
  </Testing>
</Site>`

// writeResults drops a Test.xml under the timestamp-tag directory layout
// ctest uses.
func writeResults(t *testing.T, buildDir, xml string) {
	t.Helper()
	dir := filepath.Join(buildDir, "Testing", "20260830-0001")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Test.xml"), []byte(xml), 0644))
}

func newToolbox(t *testing.T, fake *testutil.FakeRunner, coverage bool) *registry.Toolbox {
	t.Helper()
	return &registry.Toolbox{
		Shell:    fake,
		Build:    jobcfg.BuildConfig{TestParallelism: 4, Coverage: coverage},
		BuildDir: t.TempDir(),
	}
}

func TestCTest_AllPassing(t *testing.T) {
	t.Parallel()
	fake := &testutil.FakeRunner{}
	tools := newToolbox(t, fake, false)
	writeResults(t, tools.BuildDir, passingResults)

	out, err := onRunCTest(context.Background(), tools, &Input{})
	require.NoError(t, err)

	require.Len(t, fake.Calls, 1)
	assert.Equal(t, "ctest -j4 --output-on-failure --no-compress-output -T Test", fake.Calls[0].String())
	assert.Equal(t, tools.BuildDir, fake.Calls[0].Dir)
	assert.Equal(t, cty.NumberIntVal(2), out.GetAttr("passed"))
	assert.Equal(t, cty.NumberIntVal(0), out.GetAttr("failed"))
}

func TestCTest_FailuresFailTheRun(t *testing.T) {
	t.Parallel()
	fake := &testutil.FakeRunner{Errs: map[string]error{"ctest": assert.AnError}}
	tools := newToolbox(t, fake, false)
	writeResults(t, tools.BuildDir, failingResults)

	_, err := onRunCTest(context.Background(), tools, &Input{})
	require.Error(t, err)

	var se *runstatus.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, runstatus.Failed, se.Status)
}

func TestCTest_FailuresAreUnstableUnderCoverage(t *testing.T) {
	t.Parallel()
	fake := &testutil.FakeRunner{Errs: map[string]error{"ctest": assert.AnError}}
	tools := newToolbox(t, fake, true)
	writeResults(t, tools.BuildDir, failingResults)

	_, err := onRunCTest(context.Background(), tools, &Input{})
	require.Error(t, err)

	var se *runstatus.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, runstatus.Unstable, se.Status)
	assert.Contains(t, err.Error(), "1 of 2 tests failed")
}

func TestCTest_MissingResultsIsAnError(t *testing.T) {
	t.Parallel()
	fake := &testutil.FakeRunner{}
	tools := newToolbox(t, fake, false)

	_, err := onRunCTest(context.Background(), tools, &Input{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Test.xml")
}

func TestCTest_ParallelismOverride(t *testing.T) {
	t.Parallel()
	fake := &testutil.FakeRunner{}
	tools := newToolbox(t, fake, false)
	writeResults(t, tools.BuildDir, passingResults)

	_, err := onRunCTest(context.Background(), tools, &Input{Parallelism: 16, ExtraArgs: []string{"-R", "unit_.*"}})
	require.NoError(t, err)

	require.Len(t, fake.Calls, 1)
	assert.Equal(t, "ctest -j16 --output-on-failure --no-compress-output -T Test -R unit_.*", fake.Calls[0].String())
}
