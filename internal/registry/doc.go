// Package registry is the wiring point between pipeline configuration and
// Go code: stage blocks in the pipeline definition name runner types, and
// modules register the handlers that implement them. It also defines the
// Toolbox, the resolved run context every handler receives.
package registry
