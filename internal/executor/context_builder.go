package executor

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/cvpipe/internal/ctxlog"
	"github.com/specialistvlad/cvpipe/internal/dag"
)

// buildEvalContext creates the HCL evaluation context for a stage: the
// resolved job configuration under fixed top-level names, plus the outputs
// of completed dependencies under stage.<type>.<name>.output.
func (e *Executor) buildEvalContext(ctx context.Context, n *dag.Node) *hcl.EvalContext {
	logger := ctxlog.FromContext(ctx)
	tools := e.tools
	vars := make(map[string]cty.Value)

	vars["job"] = cty.ObjectVal(map[string]cty.Value{
		"raw":        cty.StringVal(tools.Job.Raw),
		"project":    cty.StringVal(tools.Job.Project),
		"variant":    cty.StringVal(tools.Job.Variant),
		"suffix":     cty.StringVal(tools.Job.Suffix),
		"branch":     cty.StringVal(tools.Job.Branch),
		"silent":     cty.BoolVal(tools.Job.Silent()),
		"node_label": cty.StringVal(tools.Job.NodeLabel()),
	})
	vars["build"] = cty.ObjectVal(map[string]cty.Value{
		"generator":         cty.StringVal(tools.Build.Generator),
		"build_type":        cty.StringVal(tools.Build.BuildType),
		"args":              cty.StringVal(tools.Build.ArgString()),
		"coverage":          cty.BoolVal(tools.Build.Coverage),
		"parallelism":       cty.NumberIntVal(int64(tools.Build.Parallelism)),
		"test_parallelism":  cty.NumberIntVal(int64(tools.Build.TestParallelism)),
		"warning_threshold": cty.NumberIntVal(int64(tools.Build.WarningThreshold)),
		"workspace":         cty.StringVal(tools.Workspace),
		"dir":               cty.StringVal(tools.BuildDir),
	})
	vars["manifest"] = cty.ObjectVal(map[string]cty.Value{
		"file":  cty.StringVal(tools.Manifest.File),
		"group": cty.StringVal(tools.Manifest.Group),
		"url":   cty.StringVal(tools.ManifestURL),
	})
	vars["tests"] = cty.ObjectVal(map[string]cty.Value{
		"enabled": cty.BoolVal(tools.RunTests),
	})

	gerritVars := map[string]cty.Value{
		"enabled":   cty.BoolVal(tools.Trigger != nil),
		"host":      cty.StringVal(""),
		"project":   cty.StringVal(""),
		"change_id": cty.StringVal(""),
		"revision":  cty.StringVal(""),
		"refspec":   cty.StringVal(""),
	}
	if tools.Trigger != nil {
		gerritVars["host"] = cty.StringVal(tools.Trigger.Host)
		gerritVars["project"] = cty.StringVal(tools.Trigger.Project)
		gerritVars["change_id"] = cty.StringVal(tools.Trigger.ChangeID)
		gerritVars["revision"] = cty.StringVal(tools.Trigger.Revision)
		gerritVars["refspec"] = cty.StringVal(tools.Trigger.Refspec)
	}
	vars["gerrit"] = cty.ObjectVal(gerritVars)

	// Expose completed dependency outputs, grouped by runner type then
	// stage name, mirroring the reference syntax in pipeline files.
	outputsByType := make(map[string]map[string]cty.Value)
	for _, dep := range n.Deps {
		if dep.GetState() != dag.Done {
			continue
		}
		byName, ok := outputsByType[dep.Stage.RunnerType]
		if !ok {
			byName = make(map[string]cty.Value)
			outputsByType[dep.Stage.RunnerType] = byName
		}
		byName[dep.Stage.Name] = cty.ObjectVal(map[string]cty.Value{
			"output": dep.Output,
		})
	}
	stageOutputs := make(map[string]cty.Value, len(outputsByType))
	for runnerType, byName := range outputsByType {
		stageOutputs[runnerType] = cty.ObjectVal(byName)
	}
	vars["stage"] = cty.ObjectVal(stageOutputs)

	logger.Debug("Built evaluation context.", "stage", n.ID, "vars_count", len(vars))
	return &hcl.EvalContext{Variables: vars}
}
