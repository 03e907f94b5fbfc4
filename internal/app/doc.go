// Package app wires the pieces of a commit-validation run together: the
// environment snapshot, the job-name resolution, the pipeline definition,
// the runner registry, and the executor. Construction panics on fatal
// startup errors; the CLI entrypoint recovers and turns them into a clean
// exit.
package app
