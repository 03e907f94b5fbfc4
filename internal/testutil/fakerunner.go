// Package testutil holds shared test doubles for stage-runner tests.
package testutil

import (
	"context"
	"sync"

	"github.com/specialistvlad/cvpipe/internal/shell"
)

// FakeRunner is a shell.Runner that records invocations and replays canned
// results keyed by executable name.
type FakeRunner struct {
	mu sync.Mutex

	// Calls records every invocation in order.
	Calls []shell.Command
	// Outputs maps executable name to the combined output to return.
	Outputs map[string]string
	// Errs maps executable name to an error to return.
	Errs map[string]error
}

// Run implements shell.Runner.
func (f *FakeRunner) Run(_ context.Context, cmd shell.Command) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, cmd)
	if err, ok := f.Errs[cmd.Name]; ok {
		return f.Outputs[cmd.Name], err
	}
	return f.Outputs[cmd.Name], nil
}

// CommandLines renders the recorded calls as strings for easy assertions.
func (f *FakeRunner) CommandLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		lines[i] = c.String()
	}
	return lines
}
