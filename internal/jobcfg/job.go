// Package jobcfg derives the per-run configuration from the job naming
// convention and the environment snapshot: project, variant, branch, the
// scheduling node label, the checkout manifest, the composed build flags,
// and the test policy. All functions are pure over immutable inputs; the
// resolution happens exactly once at startup and the resulting values are
// passed onward by value.
package jobcfg

import (
	"fmt"
	"strings"
)

// Job is the typed form of a job name. The raw convention is
// "<project>.<variant>.<optional-suffix>/<branch>": the part before the
// first '/' identifies the job, the part after it is the branch, and the
// job part splits on '.' into project, variant and a free-form suffix.
type Job struct {
	// Raw is the job name exactly as given, kept for labeling.
	Raw string
	// Project is the first dot-separated field. Always present.
	Project string
	// Variant is the second dot-separated field, e.g. an OS or sanitizer
	// tag. Empty when the job name has no second field; downstream
	// resolution treats that as the default variant.
	Variant string
	// Suffix is everything after the second '.', if any. It only carries
	// human labeling and never drives behavior on its own.
	Suffix string
	// Branch is the part after '/', or the default branch when absent.
	Branch string
}

// DefaultBranch is the reference branch built from the top-level manifest.
const DefaultBranch = "master"

// ParseJobName tokenizes a raw job name into its typed form. A missing
// variant is not an error: the job falls through to the default variant
// everywhere, matching how unrecognized variants behave.
func ParseJobName(raw string) (Job, error) {
	if raw == "" {
		return Job{}, fmt.Errorf("job name must not be empty")
	}

	name := raw
	branch := DefaultBranch
	if n, b, ok := strings.Cut(raw, "/"); ok {
		name = n
		if b != "" {
			branch = b
		}
	}

	fields := strings.SplitN(name, ".", 3)
	job := Job{
		Raw:     raw,
		Project: fields[0],
		Branch:  branch,
	}
	if len(fields) > 1 {
		job.Variant = fields[1]
	}
	if len(fields) > 2 {
		job.Suffix = fields[2]
	}
	if job.Project == "" {
		return Job{}, fmt.Errorf("job name %q has no project field", raw)
	}
	return job, nil
}

// Silent reports whether the job opts out of review reporting. The tag is
// matched against the whole un-split job name so it works regardless of
// field position.
func (j Job) Silent() bool {
	return strings.Contains(j.Raw, ".silent")
}

// String returns the job's canonical "project.variant/branch" identity.
func (j Job) String() string {
	if j.Variant == "" {
		return j.Project + "/" + j.Branch
	}
	return j.Project + "." + j.Variant + "/" + j.Branch
}
