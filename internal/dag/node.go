package dag

import (
	"sync"
	"sync/atomic"

	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/cvpipe/internal/config"
)

// State represents the execution state of a node in the graph.
type State int32

const (
	// Pending indicates the node is waiting for its dependencies.
	Pending State = iota
	// Running indicates a worker is executing the node.
	Running
	// Done indicates the node completed (including a disabled stage,
	// which completes trivially).
	Done
	// Skipped indicates an upstream failure prevented the node from running.
	Skipped
	// Failed indicates the node's stage returned an error.
	Failed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Done:
		return "done"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Node is a single vertex in the execution graph: one pipeline stage.
type Node struct {
	// ID is the stage's canonical "<type>.<name>" identifier.
	ID string
	// Stage is the stage declaration this node executes.
	Stage *config.Stage

	// Deps and Dependents are the adjacency maps, keyed by node ID. They
	// are built once by Build and read-only afterwards.
	Deps       map[string]*Node
	Dependents map[string]*Node

	// Output is the stage's result value, readable by dependents once the
	// node is Done.
	Output cty.Value
	// Err records the failure or skip cause.
	Err error
	// Disabled is set when the stage's enabled gate evaluated to false;
	// the node still counts as Done so dependents can proceed.
	Disabled bool

	// depCount counts unmet dependencies; a node is ready at zero.
	depCount atomic.Int32
	// state is the node's execution state, managed atomically.
	state atomic.Int32
	// skipRequested marks a node whose upstream failed. Checked when the
	// dependency counter reaches zero; run_always stages ignore it.
	skipRequested atomic.Bool
	// skipOnce guarantees a node is skipped at most once even when several
	// failed dependencies race to skip it.
	skipOnce sync.Once
}

func newNode(stage *config.Stage) *Node {
	return &Node{
		ID:         stage.ID(),
		Stage:      stage,
		Deps:       make(map[string]*Node),
		Dependents: make(map[string]*Node),
		Output:     cty.NullVal(cty.DynamicPseudoType),
	}
}

// SetState atomically sets the node's execution state.
func (n *Node) SetState(s State) {
	n.state.Store(int32(s))
}

// GetState atomically retrieves the node's execution state.
func (n *Node) GetState() State {
	return State(n.state.Load())
}

// DecrementDepCount atomically decrements the dependency counter and returns
// the new value.
func (n *Node) DecrementDepCount() int32 {
	return n.depCount.Add(-1)
}

// RequestSkip marks the node for skipping due to an upstream failure.
func (n *Node) RequestSkip() {
	n.skipRequested.Store(true)
}

// SkipRequested reports whether an upstream failure wants this node skipped.
func (n *Node) SkipRequested() bool {
	return n.skipRequested.Load()
}

// Skip marks the node as skipped and releases its WaitGroup slot, exactly
// once. Returns true the first time.
func (n *Node) Skip(err error, wg *sync.WaitGroup) bool {
	var first bool
	n.skipOnce.Do(func() {
		n.SetState(Skipped)
		n.Err = err
		wg.Done()
		first = true
	})
	return first
}

// SetInitialCounters seeds the dependency counter from the adjacency maps.
func (n *Node) SetInitialCounters() {
	n.depCount.Store(int32(len(n.Deps)))
}
