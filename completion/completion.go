// Package completion provides a client for Dify text-generator applications.
package completion

import (
	"context"
	"net/http"

	"github.com/xostack/xodify/base"
)

const profileName = "completion"

// Client sends requests to a completion application. The embedded base
// client supplies feedback, parameters and upload endpoints.
type Client struct {
	*base.Client
}

type completionMessageRequest struct {
	Inputs       map[string]any `json:"inputs"`
	Query        string         `json:"query"`
	ResponseMode string         `json:"response_mode"`
	User         string         `json:"user"`
}

// NewClient creates a completion client. See base.New for the arguments.
func NewClient(apiKey, baseURL string, opts ...base.Opt) (*Client, error) {
	c, err := base.New(apiKey, baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{Client: c}, nil
}

// CreateCompletionMessage asks the application to complete query with the given inputs.
// responseMode is "blocking" or "streaming" and is sent as given.
func (c *Client) CreateCompletionMessage(ctx context.Context, inputs map[string]any, query, responseMode, user string) (*http.Response, error) {
	return c.Dispatch(ctx, base.Request{
		Method: http.MethodPost,
		Path:   "/completion-messages",
		Body: completionMessageRequest{
			Inputs:       inputs,
			Query:        query,
			ResponseMode: responseMode,
			User:         user,
		},
		Stream: responseMode == base.ResponseModeStreaming,
	})
}

// Profile returns "completion".
func (c *Client) Profile() string {
	return profileName
}
