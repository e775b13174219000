// Package platform implements the polling client against the contest
// platform's task source: fetch the next pending submission, post results
// back. It is deliberately thin, per the judging core's external-interfaces
// contract — no retry policy beyond what the caller's poll loop already
// provides.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/judgecore/judgecore/internal/jcerr"
	"github.com/judgecore/judgecore/internal/judge"
	"github.com/judgecore/judgecore/internal/rlimit"
)

// JudgeTask is a pending submission handed out by NextTask.
type JudgeTask struct {
	ProblemSlug  string        `json:"problem_slug"`
	SubmissionID string        `json:"submission_id"`
	Language     string        `json:"language"`
	SourceCode   string        `json:"source_code"`
	Limits       rlimit.Config `json:"limits"`
	Interactive  bool          `json:"interactive"`
}

// Client polls a platform's task endpoint and posts judged results back to
// it over plain HTTP, authenticating with a bearer token.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// New returns a Client targeting baseURL (no trailing slash expected) using
// apiToken as a bearer credential. A nil httpClient defaults to
// http.DefaultClient.
func New(baseURL, apiToken string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, apiToken: apiToken, httpClient: httpClient}
}

type nextTaskResponse struct {
	Task *JudgeTask `json:"task"`
}

// NextTask polls for the next pending submission. ok is false and task is
// nil when no submission is currently pending (not an error).
func (c *Client) NextTask(ctx context.Context) (task *JudgeTask, ok bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tasks/next", nil)
	if err != nil {
		return nil, false, jcerr.New(jcerr.InvalidArgument, err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, jcerr.New(jcerr.Io, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, jcerr.Newf(jcerr.Io, "platform: unexpected status %d fetching next task", resp.StatusCode)
	}

	var decoded nextTaskResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, false, jcerr.New(jcerr.Io, err)
	}
	if decoded.Task == nil {
		return nil, false, nil
	}
	return decoded.Task, true, nil
}

type postResultRequest struct {
	SubmissionID string                `json:"submission_id"`
	Result       judge.JudgeResultInfo `json:"result"`
}

// PostResult reports a judged submission's outcome back to the platform.
func (c *Client) PostResult(ctx context.Context, submissionID string, result judge.JudgeResultInfo) error {
	body, err := json.Marshal(postResultRequest{SubmissionID: submissionID, Result: result})
	if err != nil {
		return jcerr.New(jcerr.InvalidArgument, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/tasks/results", bytes.NewReader(body))
	if err != nil {
		return jcerr.New(jcerr.InvalidArgument, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return jcerr.New(jcerr.Io, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return jcerr.Newf(jcerr.Io, "platform: unexpected status %d posting result", resp.StatusCode)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiToken))
	}
}

// PollInterval parses a poll interval string (e.g. "2s") for callers driving
// a NextTask loop, returning a sane default if parsing fails.
func PollInterval(s string) time.Duration {
	if s == "" {
		return 2 * time.Second
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 2 * time.Second
	}
	return d
}
