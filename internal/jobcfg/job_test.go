package jobcfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJobName(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		raw  string
		want Job
	}{
		{
			name: "full form with suffix and branch",
			raw:  "tlm.windows.silent/master",
			want: Job{Raw: "tlm.windows.silent/master", Project: "tlm", Variant: "windows", Suffix: "silent", Branch: "master"},
		},
		{
			name: "suffix content is ignored for logic",
			raw:  "proj.variant.anything.else/branch",
			want: Job{Raw: "proj.variant.anything.else/branch", Project: "proj", Variant: "variant", Suffix: "anything.else", Branch: "branch"},
		},
		{
			name: "no branch falls back to the default branch",
			raw:  "sigar.linux",
			want: Job{Raw: "sigar.linux", Project: "sigar", Variant: "linux", Branch: "master"},
		},
		{
			name: "missing variant is preserved as empty, not an error",
			raw:  "kv_engine/6.6.0",
			want: Job{Raw: "kv_engine/6.6.0", Project: "kv_engine", Branch: "6.6.0"},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseJobName(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseJobName_Errors(t *testing.T) {
	t.Parallel()

	_, err := ParseJobName("")
	require.Error(t, err)

	_, err = ParseJobName(".linux/master")
	require.Error(t, err, "a job name with an empty project field is unusable")
}

func TestSilent(t *testing.T) {
	t.Parallel()

	silent, err := ParseJobName("tlm.linux.silent/master")
	require.NoError(t, err)
	assert.True(t, silent.Silent())

	loud, err := ParseJobName("tlm.linux/master")
	require.NoError(t, err)
	assert.False(t, loud.Silent())
}

func TestJobString(t *testing.T) {
	t.Parallel()

	j, err := ParseJobName("tlm.windows.silent/master")
	require.NoError(t, err)
	assert.Equal(t, "tlm.windows/master", j.String())

	j, err = ParseJobName("kv_engine/6.6.0")
	require.NoError(t, err)
	assert.Equal(t, "kv_engine/6.6.0", j.String())
}
