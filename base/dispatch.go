package base

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrUnsupportedMethod is returned by Dispatch for methods other than GET and POST.
var ErrUnsupportedMethod = errors.New("unsupported HTTP method")

// Request describes a single call to the Dify API.
type Request struct {
	Method string // http.MethodGet or http.MethodPost
	Path   string // appended verbatim to the base URL
	Body   any    // JSON-encoded for POST
	Query  Params // encoded into the query string for GET

	// Stream marks a caller asking for response_mode "streaming". It is
	// logged and otherwise ignored; the response is returned as received.
	Stream bool
}

// Param is one query string parameter. A nil Value is encoded as the bare key.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered list of query string parameters.
type Params []Param

// Add appends a parameter and returns the extended list.
func (p Params) Add(key string, value any) Params {
	return append(p, Param{Key: key, Value: value})
}

// Encode renders the parameters in order as an application/x-www-form-urlencoded string.
func (p Params) Encode() string {
	var sb strings.Builder
	for i, param := range p {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(param.Key))
		if param.Value == nil {
			continue
		}
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(fmt.Sprint(param.Value)))
	}
	return sb.String()
}

// Dispatch sends req and returns the response exactly as the transport
// delivered it. Non-2xx statuses are not errors; transport errors are
// returned unchanged. The caller must close the response body.
func (c *Client) Dispatch(ctx context.Context, req Request) (*http.Response, error) {
	apiKey, timeout := c.settings()

	requestURL := c.baseURL + req.Path
	var body io.Reader

	switch req.Method {
	case http.MethodGet:
		if len(req.Query) > 0 {
			requestURL += "?" + req.Query.Encode()
		}
	case http.MethodPost:
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal dify request payload: %w", err)
		}
		body = bytes.NewReader(payload)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, req.Method)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create dify request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("dispatching dify request",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Bool("stream", req.Stream),
	)

	return c.do(httpReq, timeout)
}

// do sends one request with the given timeout. There are no retries.
func (c *Client) do(req *http.Request, timeout time.Duration) (*http.Response, error) {
	hc := *c.httpClient
	hc.Timeout = timeout

	resp, err := hc.Do(req)
	if err != nil {
		c.logger.Debug("dify request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.Redacted()),
			zap.Error(err),
		)
		return nil, err
	}
	return resp, nil
}
