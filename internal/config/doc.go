// Package config defines the format-agnostic pipeline model shared by the
// loader, the graph builder, and the executor.
package config
