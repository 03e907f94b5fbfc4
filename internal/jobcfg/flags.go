package jobcfg

import (
	"runtime"
	"strings"

	"github.com/specialistvlad/cvpipe/internal/envcfg"
)

// AnalyzerVariant is the static-analysis build flavor. It compiles under
// scan-build and never runs tests.
const AnalyzerVariant = "clang_analyzer"

// defaultBuildType is appended only when no earlier flag picked one.
const defaultBuildType = "RelWithDebInfo"

// BuildConfig is the composed set of build-tool options for one run. It is
// assembled once by BuildFlags and then read-only: stages render it into
// command lines but never modify it.
type BuildConfig struct {
	// Generator is the CMake generator, e.g. "Ninja".
	Generator string
	// BuildType is the CMake build type. Set at most once during
	// composition; see BuildFlags.
	BuildType string
	// Defines accumulates -D arguments in the order their conditions
	// fired. Append-only.
	Defines []string
	// ExtraArgs are caller-supplied CMAKE_ARGS, passed through verbatim
	// after the composed defines.
	ExtraArgs []string

	// Parallelism caps concurrent compile jobs.
	Parallelism int
	// TestParallelism caps concurrent ctest jobs.
	TestParallelism int
	// WarningThreshold is the static-analysis issue budget; the analyzer
	// stage fails the run above it.
	WarningThreshold int

	// Coverage records that coverage collection is active. Test failures
	// downgrade the run to unstable instead of failed while it is set.
	Coverage bool
	// CBDepsTesting points the dependency downloader at staged packages.
	CBDepsTesting bool
}

// setBuildType enforces the set-once invariant: the first condition that
// needs a specific build type wins and later conditions must not overwrite it.
func (c *BuildConfig) setBuildType(t string) {
	if c.BuildType == "" {
		c.BuildType = t
	}
}

// define appends a single -D option.
func (c *BuildConfig) define(kv string) {
	c.Defines = append(c.Defines, "-D"+kv)
}

// BuildFlags composes the build configuration from the environment snapshot
// and the job variant. Each condition below is independent and appends its
// own options; the only ordering that matters is that the default build type
// is resolved last, after every condition that might have set one. The
// function is pure: identical inputs always yield an identical BuildConfig.
func BuildFlags(env envcfg.Environ, variant string) BuildConfig {
	cfg := BuildConfig{
		Generator:        env.Get("CMAKE_GENERATOR", "Ninja"),
		Parallelism:      env.Int("PARALLELISM", runtime.NumCPU()),
		TestParallelism:  env.Int("TEST_PARALLELISM", 4),
		WarningThreshold: env.Int("WARNING_THRESHOLD", 0),
	}

	if env.Bool("ENABLE_CODE_COVERAGE") {
		cfg.Coverage = true
		cfg.define("CB_CODE_COVERAGE=ON")
		// Coverage numbers are meaningless on optimized builds.
		cfg.setBuildType("Debug")
	}
	if env.Bool("ENABLE_THREADSANITIZER") {
		cfg.define("CB_THREADSANITIZER=ON")
	}
	if env.Bool("ENABLE_ADDRESSSANITIZER") {
		cfg.define("CB_ADDRESSSANITIZER=ON")
	}
	if env.Bool("ENABLE_UNDEFINEDSANITIZER") {
		cfg.define("CB_UNDEFINEDSANITIZER=ON")
	}
	if env.Bool("ENABLE_CBDEPS_TESTING") {
		cfg.CBDepsTesting = true
		cfg.define("CB_DOWNLOAD_DEPS_CACHE=/tmp/cbdeps-testing")
	}
	if variant == AnalyzerVariant {
		cfg.define("CMAKE_C_COMPILER=clang")
		cfg.define("CMAKE_CXX_COMPILER=clang++")
	}
	if extra := env.Get("CMAKE_ARGS", ""); extra != "" {
		cfg.ExtraArgs = strings.Fields(extra)
	}

	cfg.setBuildType(defaultBuildType)
	return cfg
}

// Args renders the full configure argument list: generator, build type,
// composed defines, then verbatim extras.
func (c BuildConfig) Args() []string {
	args := []string{"-G", c.Generator, "-DCMAKE_BUILD_TYPE=" + c.BuildType}
	args = append(args, c.Defines...)
	args = append(args, c.ExtraArgs...)
	return args
}

// ArgString is Args joined for logging and for tools that take one string.
func (c BuildConfig) ArgString() string {
	return strings.Join(c.Args(), " ")
}

// ShouldRunTests decides whether the test stage runs at all. The analyzer
// variant only compiles; otherwise tests run when the project is a Go
// project or ships a CTest manifest.
func ShouldRunTests(variant string, hasTestManifest, isGoProject bool) bool {
	if variant == AnalyzerVariant {
		return false
	}
	return isGoProject || hasTestManifest
}
