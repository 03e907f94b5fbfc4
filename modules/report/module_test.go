package report

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/cvpipe/internal/gerrit"
	"github.com/specialistvlad/cvpipe/internal/jobcfg"
	"github.com/specialistvlad/cvpipe/internal/registry"
	"github.com/specialistvlad/cvpipe/internal/runstatus"
)

// reviewRecorder captures the set-review body posted by the handler.
type reviewRecorder struct {
	path string
	body gerrit.ReviewInput
	hits int
}

func newReviewServer(t *testing.T, rec *reviewRecorder) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.hits++
		rec.path = r.URL.Path
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &rec.body))
		w.Write([]byte(")]}'\n{}"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newToolbox(t *testing.T, rawJob string, status runstatus.Status, srvURL string) *registry.Toolbox {
	t.Helper()
	job, err := jobcfg.ParseJobName(rawJob)
	require.NoError(t, err)

	tracker := runstatus.NewTracker()
	tracker.Merge(status)
	tracker.SetStage("ninja.compile", "done", "")

	tools := &registry.Toolbox{
		Job:    job,
		Status: tracker,
		RunID:  "run-0001",
	}
	if srvURL != "" {
		tools.Trigger = &gerrit.Trigger{
			Host:     "review.example.com",
			Project:  "tlm",
			ChangeID: "I0123",
			Revision: "deadbeef",
		}
		tools.Review = gerrit.NewClient(srvURL)
		t.Cleanup(func() { tools.Review.Close() })
	}
	return tools
}

func TestReport_PostsPositiveVerdictOnSuccess(t *testing.T) {
	t.Parallel()
	rec := &reviewRecorder{}
	srv := newReviewServer(t, rec)
	tools := newToolbox(t, "tlm.linux/master", runstatus.Success, srv.URL)

	out, err := onRunReport(context.Background(), tools, &Input{})
	require.NoError(t, err)

	assert.Equal(t, 1, rec.hits)
	assert.Equal(t, "/a/changes/I0123/revisions/deadbeef/review", rec.path)
	assert.Equal(t, map[string]int{"Verified": 1}, rec.body.Labels)
	assert.Contains(t, rec.body.Message, "tlm.linux/master: SUCCESS")
	assert.Contains(t, rec.body.Message, "ninja.compile")
	assert.Equal(t, cty.True, out.GetAttr("posted"))
}

func TestReport_VotesDownOnFailure(t *testing.T) {
	t.Parallel()
	rec := &reviewRecorder{}
	srv := newReviewServer(t, rec)
	tools := newToolbox(t, "tlm.linux/master", runstatus.Failed, srv.URL)

	_, err := onRunReport(context.Background(), tools, &Input{})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Verified": -1}, rec.body.Labels)
	assert.Contains(t, rec.body.Message, "FAILED")
}

func TestReport_UnstableStillVotesUp(t *testing.T) {
	t.Parallel()
	rec := &reviewRecorder{}
	srv := newReviewServer(t, rec)
	tools := newToolbox(t, "tlm.linux/master", runstatus.Unstable, srv.URL)

	_, err := onRunReport(context.Background(), tools, &Input{})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Verified": 1}, rec.body.Labels)
	assert.Contains(t, rec.body.Message, "UNSTABLE")
}

func TestReport_SilentJobDoesNotPost(t *testing.T) {
	t.Parallel()
	rec := &reviewRecorder{}
	srv := newReviewServer(t, rec)
	tools := newToolbox(t, "tlm.linux.silent/master", runstatus.Success, srv.URL)

	out, err := onRunReport(context.Background(), tools, &Input{})
	require.NoError(t, err)
	assert.Equal(t, 0, rec.hits)
	assert.Equal(t, cty.False, out.GetAttr("posted"))
}

func TestReport_NoTriggerStaysLocal(t *testing.T) {
	t.Parallel()
	tools := newToolbox(t, "tlm.linux/master", runstatus.Failed, "")

	out, err := onRunReport(context.Background(), tools, &Input{})
	require.NoError(t, err)
	assert.Equal(t, cty.False, out.GetAttr("posted"))
	assert.Equal(t, cty.StringVal("FAILED"), out.GetAttr("status"))
}

func TestReport_CustomLabel(t *testing.T) {
	t.Parallel()
	rec := &reviewRecorder{}
	srv := newReviewServer(t, rec)
	tools := newToolbox(t, "tlm.linux/master", runstatus.Success, srv.URL)

	_, err := onRunReport(context.Background(), tools, &Input{Label: "Code-Review"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Code-Review": 1}, rec.body.Labels)
}
