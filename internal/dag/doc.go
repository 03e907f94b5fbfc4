// Package dag models the pipeline as a dependency graph of stage nodes and
// validates it (unknown references, self-dependencies, cycles) before the
// executor runs it.
package dag
