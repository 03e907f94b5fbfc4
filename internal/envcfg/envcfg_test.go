package envcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAndLookup(t *testing.T) {
	t.Parallel()

	env := FromMap(map[string]string{"JOB_NAME": "tlm.linux/master", "EMPTY": ""})

	assert.Equal(t, "tlm.linux/master", env.Get("JOB_NAME", "fallback"))
	assert.Equal(t, "fallback", env.Get("MISSING", "fallback"))
	// Empty values fall back to the default as well.
	assert.Equal(t, "fallback", env.Get("EMPTY", "fallback"))

	v, ok := env.Lookup("EMPTY")
	require.True(t, ok)
	assert.Empty(t, v)

	_, ok = env.Lookup("MISSING")
	assert.False(t, ok)
}

func TestBool(t *testing.T) {
	t.Parallel()

	env := FromMap(map[string]string{
		"A": "true",
		"B": "TRUE",
		"C": "1",
		"D": "false",
		"E": "nonsense",
	})

	assert.True(t, env.Bool("A"))
	assert.True(t, env.Bool("B"))
	assert.True(t, env.Bool("C"))
	assert.False(t, env.Bool("D"))
	assert.False(t, env.Bool("E"))
	assert.False(t, env.Bool("MISSING"))
}

func TestInt(t *testing.T) {
	t.Parallel()

	env := FromMap(map[string]string{"PARALLELISM": " 8 ", "BAD": "lots"})

	assert.Equal(t, 8, env.Int("PARALLELISM", 4))
	assert.Equal(t, 4, env.Int("BAD", 4))
	assert.Equal(t, 4, env.Int("MISSING", 4))
}

func TestRequire(t *testing.T) {
	t.Parallel()

	env := FromMap(map[string]string{"JOB_NAME": "tlm.linux/master", "EMPTY": ""})

	require.NoError(t, env.Require("JOB_NAME"))

	err := env.Require("JOB_NAME", "EMPTY", "GERRIT_HOST")
	require.Error(t, err)
	// Every missing variable must be named in the one error message.
	assert.Contains(t, err.Error(), "EMPTY")
	assert.Contains(t, err.Error(), "GERRIT_HOST")
	assert.NotContains(t, err.Error(), "JOB_NAME")
}

func TestWithDotenv(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "ci.env")
	content := "GERRIT_HOST=review.example.com\nJOB_NAME=from-file\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	env := FromMap(map[string]string{"JOB_NAME": "tlm.linux/master"})
	merged, err := env.WithDotenv(path)
	require.NoError(t, err)

	// File supplies defaults only; the live environment wins on conflict.
	assert.Equal(t, "tlm.linux/master", merged.Get("JOB_NAME", ""))
	assert.Equal(t, "review.example.com", merged.Get("GERRIT_HOST", ""))

	// The original snapshot is not mutated.
	_, ok := env.Lookup("GERRIT_HOST")
	assert.False(t, ok)

	_, err = env.WithDotenv(filepath.Join(dir, "nope.env"))
	require.Error(t, err)
}
