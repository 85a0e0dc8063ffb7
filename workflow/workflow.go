// Package workflow provides a client for Dify workflow applications.
package workflow

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/xostack/xodify/base"
)

const profileName = "workflow"

// Client runs workflows and reads their results.
type Client struct {
	*base.Client
}

// RunOptions holds the optional arguments of RunWorkflow.
type RunOptions struct {
	// ResponseMode defaults to "blocking".
	ResponseMode string

	// TraceID is sent as trace_id only when non-empty.
	TraceID string
}

type runWorkflowRequest struct {
	Inputs       map[string]any `json:"inputs"`
	User         string         `json:"user"`
	ResponseMode string         `json:"response_mode"`
	TraceID      string         `json:"trace_id,omitempty"`
}

// NewClient creates a workflow client. See base.New for the arguments.
func NewClient(apiKey, baseURL string, opts ...base.Opt) (*Client, error) {
	c, err := base.New(apiKey, baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{Client: c}, nil
}

// NewTraceID returns a random identifier usable as RunOptions.TraceID.
func NewTraceID() string {
	return uuid.NewString()
}

// RunWorkflow executes the published workflow with the given inputs.
func (c *Client) RunWorkflow(ctx context.Context, inputs map[string]any, user string, opts RunOptions) (*http.Response, error) {
	responseMode := opts.ResponseMode
	if responseMode == "" {
		responseMode = base.ResponseModeBlocking
	}

	return c.Dispatch(ctx, base.Request{
		Method: http.MethodPost,
		Path:   "/workflows/run",
		Body: runWorkflowRequest{
			Inputs:       inputs,
			User:         user,
			ResponseMode: responseMode,
			TraceID:      opts.TraceID,
		},
		Stream: responseMode == base.ResponseModeStreaming,
	})
}

// GetWorkflow fetches the status and outputs of a workflow run.
func (c *Client) GetWorkflow(ctx context.Context, workflowID string) (*http.Response, error) {
	return c.Dispatch(ctx, base.Request{
		Method: http.MethodGet,
		Path:   "/workflows/run/" + workflowID,
	})
}

// Profile returns "workflow".
func (c *Client) Profile() string {
	return profileName
}
