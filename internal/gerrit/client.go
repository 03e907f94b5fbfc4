// Package gerrit is a minimal REST client for the review server: enough to
// read change metadata and post a verdict with a Verified vote. It is not a
// general Gerrit SDK.
package gerrit

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"resty.dev/v3"

	"github.com/specialistvlad/cvpipe/internal/ctxlog"
	"github.com/specialistvlad/cvpipe/internal/envcfg"
)

// xssiPrefix is the magic prefix Gerrit puts before every JSON response.
var xssiPrefix = []byte(")]}'")

// Trigger is the review event that started this run, decoded from the
// GERRIT_* variables the trigger plugin exports.
type Trigger struct {
	Host     string
	SSHPort  int
	Project  string
	ChangeID string
	Revision string
	Refspec  string
}

// TriggerFromEnviron decodes the review trigger from the environment
// snapshot. ok is false for cron or manual runs, where no GERRIT_HOST is
// present; a partially populated trigger is an error because the patch and
// report stages cannot work with half an event.
func TriggerFromEnviron(env envcfg.Environ) (*Trigger, bool, error) {
	host, present := env.Lookup("GERRIT_HOST")
	if !present || host == "" {
		return nil, false, nil
	}
	if err := env.Require("GERRIT_CHANGE_ID", "GERRIT_PATCHSET_REVISION", "GERRIT_REFSPEC", "GERRIT_PROJECT"); err != nil {
		return nil, false, fmt.Errorf("incomplete review trigger: %w", err)
	}
	return &Trigger{
		Host:     host,
		SSHPort:  env.Int("GERRIT_PORT", 29418),
		Project:  env.Get("GERRIT_PROJECT", ""),
		ChangeID: env.Get("GERRIT_CHANGE_ID", ""),
		Revision: env.Get("GERRIT_PATCHSET_REVISION", ""),
		Refspec:  env.Get("GERRIT_REFSPEC", ""),
	}, true, nil
}

// FetchURL is the anonymous git URL the patch stage fetches the refspec from.
func (t *Trigger) FetchURL() string {
	return fmt.Sprintf("ssh://%s:%d/%s", t.Host, t.SSHPort, t.Project)
}

// ChangeInfo is the subset of Gerrit's ChangeInfo entity the pipeline reads.
type ChangeInfo struct {
	ID      string `json:"id"`
	Project string `json:"project"`
	Branch  string `json:"branch"`
	Subject string `json:"subject"`
	Status  string `json:"status"`
}

// ReviewInput is the body of a set-review call.
type ReviewInput struct {
	Message string         `json:"message"`
	Labels  map[string]int `json:"labels,omitempty"`
}

// Option customizes a Client.
type Option func(*Client)

// WithBasicAuth sends HTTP basic credentials on every request.
func WithBasicAuth(user, pass string) Option {
	return func(c *Client) {
		token := base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
		c.http.SetHeader("Authorization", "Basic "+token)
	}
}

// Client talks to the Gerrit REST API.
type Client struct {
	http *resty.Client
}

// NewClient builds a client for the given base URL, e.g.
// "http://review.example.com:8080".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30 * time.Second).
			SetHeader("Content-Type", "application/json"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases the underlying transport.
func (c *Client) Close() error {
	return c.http.Close()
}

// ChangeInfo fetches change metadata.
func (c *Client) ChangeInfo(ctx context.Context, changeID string) (*ChangeInfo, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/a/changes/" + changeID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch change %s: %w", changeID, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("fetch change %s: unexpected status %s", changeID, resp.Status())
	}

	var info ChangeInfo
	if err := decode(resp.Bytes(), &info); err != nil {
		return nil, fmt.Errorf("failed to decode change %s: %w", changeID, err)
	}
	return &info, nil
}

// SetReview posts a review message, optionally with label votes, on the
// given revision of a change.
func (c *Client) SetReview(ctx context.Context, changeID, revision string, review ReviewInput) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Posting review.", "change", changeID, "revision", revision, "labels", review.Labels)

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(review).
		Post(fmt.Sprintf("/a/changes/%s/revisions/%s/review", changeID, revision))
	if err != nil {
		return fmt.Errorf("failed to post review on %s: %w", changeID, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("post review on %s: unexpected status %s", changeID, resp.Status())
	}
	return nil
}

// decode strips Gerrit's XSSI prefix and unmarshals the remaining JSON.
func decode(body []byte, v any) error {
	body = bytes.TrimPrefix(body, xssiPrefix)
	body = bytes.TrimLeft(body, "\r\n")
	return json.Unmarshal(body, v)
}
