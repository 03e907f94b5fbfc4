// Package shell runs the external tools the pipeline delegates to (repo,
// git, cmake, ninja, ctest, gcovr, scan-build, ccache). Stage runners depend
// on the Runner interface so tests can substitute a fake without spawning
// processes.
package shell

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/specialistvlad/cvpipe/internal/ctxlog"
)

// Command describes one external tool invocation.
type Command struct {
	// Name is the executable to run, resolved via PATH.
	Name string
	// Args are the command arguments.
	Args []string
	// Dir is the working directory. Empty means the process's own.
	Dir string
	// Env holds extra KEY=VALUE pairs appended to the inherited environment.
	Env []string
}

// String renders the invocation for logs.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner executes commands. Implementations must honor context cancellation.
type Runner interface {
	// Run executes the command and returns its combined output. A non-zero
	// exit yields an error that wraps the exit failure; the output captured
	// up to that point is still returned for log parsing.
	Run(ctx context.Context, cmd Command) (string, error)
}

// Local runs commands as child processes on the current node.
type Local struct{}

// Run implements Runner.
func (Local) Run(ctx context.Context, cmd Command) (string, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Running command.", "cmd", cmd.String(), "dir", cmd.Dir)

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	out, err := c.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%s: %w\n%s", cmd.String(), err, tail(string(out), 20))
	}
	return string(out), nil
}

// BestEffort runs each command in order and logs failures instead of
// returning them. Only for idempotent, non-critical cleanup work.
func BestEffort(ctx context.Context, r Runner, cmds ...Command) {
	logger := ctxlog.FromContext(ctx)
	for _, cmd := range cmds {
		if _, err := r.Run(ctx, cmd); err != nil {
			logger.Warn("Best-effort command failed, continuing.", "cmd", cmd.String(), "error", err)
		}
	}
}

// tail returns the last n lines of s, so command errors stay readable even
// when the tool dumped a full build log.
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) <= n {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
