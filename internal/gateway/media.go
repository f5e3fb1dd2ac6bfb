package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kingrea/storyforge/internal/config"
)

// JobRequest describes one media job submission. Inputs are the workflow's
// node replacements (prompt text, seed, and so on).
type JobRequest struct {
	Kind     Kind
	Workflow string
	Inputs   map[string]any
}

// JobState enumerates the remote job lifecycle.
type JobState string

const (
	JobPending   JobState = "pending"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
)

// JobStatus is the polled view of one submitted job.
type JobStatus struct {
	JobID   string   `json:"job_id"`
	Status  JobState `json:"status"`
	Outputs []string `json:"outputs,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// MediaClient talks to the local media job server: submit returns a job
// handle, then the client polls until a terminal state or the caller's
// timeout elapses.
type MediaClient struct {
	base         string
	http         *http.Client
	clientID     string
	pollInterval time.Duration
	imageTimeout time.Duration
	videoTimeout time.Duration
}

// NewMediaClient builds the job client from config.
func NewMediaClient(cfg config.Config) (*MediaClient, error) {
	if cfg.MediaURL == "" {
		return nil, fmt.Errorf("gateway: media url is required")
	}
	return &MediaClient{
		base:         strings.TrimRight(cfg.MediaURL, "/"),
		http:         &http.Client{Timeout: 30 * time.Second},
		clientID:     uuid.NewString(),
		pollInterval: cfg.PollInterval,
		imageTimeout: cfg.ImageTimeout,
		videoTimeout: cfg.VideoTimeout,
	}, nil
}

// DefaultTimeout returns the per-job timeout for a kind. Callers may override
// via the context they pass to Generate.
func (c *MediaClient) DefaultTimeout(kind Kind) time.Duration {
	if kind == KindVideo {
		return c.videoTimeout
	}
	return c.imageTimeout
}

// Submit queues a job and returns its handle. Connection failures are
// retried up to the bounded count.
func (c *MediaClient) Submit(ctx context.Context, req JobRequest) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"client_id": c.clientID,
		"workflow":  req.Workflow,
		"prompt":    req.Inputs,
	})
	if err != nil {
		return "", fmt.Errorf("gateway: encode job: %w", err)
	}
	var lastErr *Error
	for attempt := 0; attempt <= maxConnectionRetries; attempt++ {
		jobID, err := c.submitOnce(ctx, payload)
		if err == nil {
			return jobID, nil
		}
		var ge *Error
		if !asGatewayError(err, &ge) || ge.Kind != ErrConnection {
			return "", err
		}
		lastErr = ge
	}
	return "", lastErr
}

func (c *MediaClient) submitOnce(ctx context.Context, payload []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/prompt", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("gateway: build submit request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", classify("submit", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classify("submit", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &Error{Kind: ErrRemote, Op: "submit", Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))}
	}
	var decoded struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", &Error{Kind: ErrRemote, Op: "submit", Err: fmt.Errorf("invalid response: %w", err)}
	}
	if decoded.JobID == "" {
		return "", &Error{Kind: ErrRemote, Op: "submit", Err: fmt.Errorf("no job_id in response")}
	}
	return decoded.JobID, nil
}

// Poll fetches the current status of a job.
func (c *MediaClient) Poll(ctx context.Context, jobID string) (JobStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/history/"+jobID, nil)
	if err != nil {
		return JobStatus{}, fmt.Errorf("gateway: build poll request: %w", err)
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return JobStatus{}, classify("poll", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return JobStatus{}, classify("poll", err)
	}
	if resp.StatusCode != http.StatusOK {
		return JobStatus{}, &Error{Kind: ErrRemote, Op: "poll", Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))}
	}
	var status JobStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return JobStatus{}, &Error{Kind: ErrRemote, Op: "poll", Err: fmt.Errorf("invalid response: %w", err)}
	}
	status.JobID = jobID
	return status, nil
}

// Generate submits a job and polls until it completes, fails, or the timeout
// elapses. A timeout is surfaced distinctly from a remote-reported failure so
// callers can tell an overloaded server from a broken workflow.
func (c *MediaClient) Generate(ctx context.Context, req JobRequest, timeout time.Duration) (JobStatus, error) {
	if timeout <= 0 {
		timeout = c.DefaultTimeout(req.Kind)
	}
	jobID, err := c.Submit(ctx, req)
	if err != nil {
		return JobStatus{}, err
	}
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		status, err := c.Poll(ctx, jobID)
		if err != nil {
			return JobStatus{}, err
		}
		switch status.Status {
		case JobCompleted:
			return status, nil
		case JobFailed:
			return status, &Error{Kind: ErrRemote, Op: "generate", Err: fmt.Errorf("job %s failed: %s", jobID, status.Error)}
		}
		if time.Now().After(deadline) {
			return status, &Error{Kind: ErrTimeout, Op: "generate", Err: fmt.Errorf("job %s still %s after %s", jobID, status.Status, timeout)}
		}
		select {
		case <-ctx.Done():
			return status, classify("generate", ctx.Err())
		case <-ticker.C:
		}
	}
}

func asGatewayError(err error, target **Error) bool {
	ge, ok := err.(*Error)
	if ok {
		*target = ge
	}
	return ok
}
