package jobcfg

import "path"

// ManifestSpec names the repo manifest the checkout stage syncs against.
type ManifestSpec struct {
	// File is the manifest path inside the manifest repository.
	File string
	// Group is the manifest group passed to `repo init -g`.
	Group string
}

const (
	// topManifest is the manifest for the reference branch.
	topManifest = "branch-master.xml"
	// releasedDir holds the per-release manifests.
	releasedDir = "released"

	groupEnterprise = "enterprise"
	groupDefault    = "default"
)

// enterpriseProjects are the projects validated against the enterprise
// manifest group. This is a fixed table, not a general rule.
var enterpriseProjects = map[string]bool{
	"tlm":   true,
	"sigar": true,
}

// Manifest resolves the manifest file and group for a branch and project.
func Manifest(branch, project string) ManifestSpec {
	file := topManifest
	if branch != DefaultBranch {
		file = path.Join(releasedDir, branch+".xml")
	}
	group := groupDefault
	if enterpriseProjects[project] {
		group = groupEnterprise
	}
	return ManifestSpec{File: file, Group: group}
}
