package ninja

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/cvpipe/internal/jobcfg"
	"github.com/specialistvlad/cvpipe/internal/registry"
	"github.com/specialistvlad/cvpipe/internal/testutil"
)

func TestBuildCommand_PicksGeneratorTool(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name      string
		generator string
		target    string
		want      string
	}{
		{name: "ninja generator", generator: "Ninja", want: "ninja -j4"},
		{name: "makefiles generator", generator: "Unix Makefiles", want: "make -j4"},
		{name: "explicit target", generator: "Ninja", target: "install", want: "ninja -j4 install"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cmd := buildCommand(tc.generator, 4, tc.target)
			assert.Equal(t, tc.want, cmd.String())
		})
	}
}

func TestBuild_UsesConfiguredParallelism(t *testing.T) {
	t.Parallel()
	fake := &testutil.FakeRunner{}
	tools := &registry.Toolbox{
		Shell:    fake,
		Build:    jobcfg.BuildConfig{Generator: "Ninja", Parallelism: 12},
		BuildDir: t.TempDir(),
	}

	_, err := onRunBuild(context.Background(), tools, &Input{})
	require.NoError(t, err)

	require.Len(t, fake.Calls, 1)
	assert.Equal(t, "ninja -j12", fake.Calls[0].String())
	assert.Equal(t, tools.BuildDir, fake.Calls[0].Dir)
}

func TestBuild_PropagatesFailure(t *testing.T) {
	t.Parallel()
	fake := &testutil.FakeRunner{Errs: map[string]error{"ninja": assert.AnError}}
	tools := &registry.Toolbox{
		Shell:    fake,
		Build:    jobcfg.BuildConfig{Generator: "Ninja", Parallelism: 1},
		BuildDir: t.TempDir(),
	}

	_, err := onRunBuild(context.Background(), tools, &Input{})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
