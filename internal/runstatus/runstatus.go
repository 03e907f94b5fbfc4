// Package runstatus tracks the aggregate outcome of a pipeline run. Stage
// failures are surfaced as a status change rather than aborting the run, so
// reporting stages can still observe and publish the verdict.
package runstatus

import "sync"

// Status is the aggregate run outcome, ordered by severity.
type Status int

const (
	// Success means every status-bearing stage completed cleanly.
	Success Status = iota
	// Unstable means the build succeeded but delegated tooling reported
	// failures that should not fail the run outright (e.g. test failures
	// while coverage collection is active).
	Unstable
	// Failed means a status-bearing stage failed.
	Failed
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Success:
		return "SUCCESS"
	case Unstable:
		return "UNSTABLE"
	case Failed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// worse returns the more severe of two statuses.
func worse(a, b Status) Status {
	if b > a {
		return b
	}
	return a
}

// Error attaches a Status to a stage failure. Stage runners return it when
// the failure should downgrade the run to something other than Failed.
type Error struct {
	Status Status
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Err.Error() }

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *Error) Unwrap() error { return e.Err }

// StageState is the externally visible state of one stage.
type StageState struct {
	State  string `json:"state"`
	Detail string `json:"detail,omitempty"`
}

// Snapshot is a point-in-time copy of the tracker, safe to serialize.
type Snapshot struct {
	Status string                `json:"status"`
	Stages map[string]StageState `json:"stages"`
}

// Tracker aggregates stage outcomes into a run status. Safe for concurrent
// use by executor workers and the status server.
type Tracker struct {
	mu     sync.Mutex
	status Status
	stages map[string]StageState
}

// NewTracker returns a tracker starting at Success with no stages recorded.
func NewTracker() *Tracker {
	return &Tracker{stages: make(map[string]StageState)}
}

// Merge folds a stage outcome into the aggregate; severity only increases.
func (t *Tracker) Merge(s Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = worse(t.status, s)
}

// Status returns the current aggregate status.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// SetStage records the externally visible state of a stage.
func (t *Tracker) SetStage(id, state, detail string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stages[id] = StageState{State: state, Detail: detail}
}

// Snapshot copies the tracker for serialization.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	stages := make(map[string]StageState, len(t.stages))
	for k, v := range t.stages {
		stages[k] = v
	}
	return Snapshot{Status: t.status.String(), Stages: stages}
}
