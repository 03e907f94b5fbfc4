// Package report publishes the run verdict back to the review that triggered
// it: a summary message plus a Verified vote. Runs without a review trigger,
// and jobs marked silent, skip the posting and only log the verdict.
package report

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/cvpipe/internal/ctxlog"
	"github.com/specialistvlad/cvpipe/internal/gerrit"
	"github.com/specialistvlad/cvpipe/internal/registry"
	"github.com/specialistvlad/cvpipe/internal/runstatus"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the report runner with the central registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("report", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Fn:       onRunReport,
	})
}

// Input defines the arguments for the 'arguments' HCL block.
type Input struct {
	// Label names the review label to vote on.
	Label string `hcl:"label,optional"`
}

// onRunReport is the handler for the 'report' runner.
func onRunReport(ctx context.Context, tools *registry.Toolbox, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	status := tools.Status.Status()
	message := buildMessage(tools.Job.Raw, tools.RunID, status, tools.Status.Snapshot())
	logger.Info("🏁 Run verdict.", "status", status.String())

	silentOutput := cty.ObjectVal(map[string]cty.Value{
		"posted": cty.BoolVal(false),
		"status": cty.StringVal(status.String()),
	})

	if tools.Trigger == nil || tools.Review == nil {
		logger.Info("No review trigger, verdict stays local.")
		return silentOutput, nil
	}
	if tools.Job.Silent() {
		logger.Info("Silent job, not posting to the review.")
		return silentOutput, nil
	}

	label := input.Label
	if label == "" {
		label = "Verified"
	}
	vote := 1
	if status == runstatus.Failed {
		vote = -1
	}

	review := gerrit.ReviewInput{
		Message: message,
		Labels:  map[string]int{label: vote},
	}
	if err := tools.Review.SetReview(ctx, tools.Trigger.ChangeID, tools.Trigger.Revision, review); err != nil {
		return cty.NilVal, err
	}

	logger.Info("Verdict posted to review.", "change", tools.Trigger.ChangeID, "label", label, "vote", vote)
	return cty.ObjectVal(map[string]cty.Value{
		"posted": cty.BoolVal(true),
		"status": cty.StringVal(status.String()),
	}), nil
}

// buildMessage renders the human-readable verdict posted on the review.
func buildMessage(jobName, runID string, status runstatus.Status, snap runstatus.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s (run %s)\n", jobName, status.String(), runID)

	ids := make([]string, 0, len(snap.Stages))
	for id := range snap.Stages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		st := snap.Stages[id]
		fmt.Fprintf(&b, "  %-24s %s", id, st.State)
		if st.Detail != "" {
			fmt.Fprintf(&b, " (%s)", st.Detail)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
