package hclconf

import _ "embed"

// defaultPipeline is the built-in commit-validation pipeline, used whenever
// the operator does not supply a pipeline path.
//
//go:embed cv.hcl
var defaultPipeline []byte
