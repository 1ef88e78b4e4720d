// Package crew talks to the optional crew optimization service. The
// service is an opaque collaborator: it receives an objective and a set of
// candidate agents and returns the agent subset plus a task list to merge
// into the crew data model. Its latency never blocks graph interaction;
// callers run OptimizeCrew off the event loop and apply the result as one
// store update when it arrives.
package crew

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// ErrService wraps any transport or server-side failure of the crew
// service. Callers match with errors.Is and treat it as non-fatal.
var ErrService = errors.New("crew service error")

// DefaultTimeout bounds a single optimization call.
const DefaultTimeout = 10 * time.Second

// Agent is a candidate crew member offered to the optimizer.
type Agent struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Role   string   `json:"role"`
	Skills []string `json:"skills,omitempty"`
}

// Task is one suggested work item, ordered by the service.
type Task struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	AgentID     string `json:"agent_id,omitempty"`
}

// Optimization is the service's answer: which agents to keep and what
// they should do, in order.
type Optimization struct {
	SelectedAgentIDs []string `json:"selected_agent_ids"`
	SuggestedTasks   []Task   `json:"suggested_tasks"`
}

// Optimizer produces a crew optimization for an objective.
type Optimizer interface {
	OptimizeCrew(ctx context.Context, objective string, candidates []Agent) (Optimization, error)
}

// Client is an HTTP Optimizer.
type Client struct {
	url     string
	httpc   *http.Client
	timeout time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient swaps the underlying HTTP client, mostly for tests.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.httpc = h }
}

// NewClient creates a client for the service at url.
func NewClient(url string, opts ...ClientOption) *Client {
	c := &Client{
		url:     url,
		httpc:   http.DefaultClient,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type optimizeRequest struct {
	Objective  string  `json:"objective"`
	Candidates []Agent `json:"candidates"`
}

// OptimizeCrew posts the objective and candidates to the service and
// decodes its answer. Any failure is reported as ErrService.
func (c *Client) OptimizeCrew(ctx context.Context, objective string, candidates []Agent) (Optimization, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(optimizeRequest{Objective: objective, Candidates: candidates})
	if err != nil {
		return Optimization{}, fmt.Errorf("%w: encoding request: %v", ErrService, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Optimization{}, fmt.Errorf("%w: %v", ErrService, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Optimization{}, fmt.Errorf("%w: %v", ErrService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read a little of the body for the error message, not all of it.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return Optimization{}, fmt.Errorf("%w: status %d: %s", ErrService, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var opt Optimization
	if err := json.NewDecoder(resp.Body).Decode(&opt); err != nil {
		return Optimization{}, fmt.Errorf("%w: decoding response: %v", ErrService, err)
	}
	return opt, nil
}
