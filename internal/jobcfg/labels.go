package jobcfg

import "strings"

// Node labels understood by the scheduler. The label is an output for the
// host scheduler; cvpipe never enforces placement itself.
const (
	labelWindows      = "windows"
	labelMacOS        = "macos"
	labelAArch64Linux = "aarch64 && linux"
	labelLinux        = "linux"
)

// osLabels maps exact variant names to scheduler OS labels.
var osLabels = map[string]string{
	"windows": labelWindows,
	"macos":   labelMacOS,
}

// aarch64Prefix matches the family of ARM Linux variants
// (aarch64-linux, aarch64-linux-ce, ...).
const aarch64Prefix = "aarch64-linux"

// NodeLabel resolves the scheduling label for a variant and branch. Unknown
// variants deliberately fall through to the default Linux label; every job
// is runnable somewhere.
func NodeLabel(variant, branch string) string {
	label, ok := osLabels[variant]
	if !ok {
		if strings.HasPrefix(variant, aarch64Prefix) {
			label = labelAArch64Linux
		} else {
			label = labelLinux
		}
	}
	return label + " && " + branch
}

// NodeLabel resolves the scheduling label for the job's own variant and branch.
func (j Job) NodeLabel() string {
	return NodeLabel(j.Variant, j.Branch)
}
