// Package base provides the request dispatcher shared by every Dify
// application client, together with the endpoints common to all application
// types (message feedback, application parameters and file upload).
//
// The completion, workflow and chat packages embed *Client to add their own
// endpoints on top of the same dispatcher.
package base

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the hosted Dify API.
	DefaultBaseURL = "https://api.dify.ai/v1"

	// DefaultReadTimeout applies when no timeout is configured.
	DefaultReadTimeout = 60 * time.Second

	profileName = "base"
)

// Response modes understood by the completion, workflow and chat endpoints.
const (
	ResponseModeBlocking  = "blocking"
	ResponseModeStreaming = "streaming"
)

// Client holds the connection settings for one Dify application and sends
// requests on its behalf.
//
// The API key and read timeout can be changed between calls; a change is
// picked up by the next dispatched request. Methods are safe for concurrent use.
type Client struct {
	mu          sync.RWMutex
	apiKey      string
	readTimeout time.Duration

	baseURL    string // never changes after New
	httpClient *http.Client
	logger     *zap.Logger
}

// Opt configures a Client in New.
type Opt func(*options) error

type options struct {
	httpClient  *http.Client
	readTimeout time.Duration
	logger      *zap.Logger
	registerer  prometheus.Registerer
	tracing     bool
}

// New creates a client for the application identified by apiKey.
// An empty baseURL selects DefaultBaseURL. The base URL must use https.
func New(apiKey string, baseURL string, opts ...Opt) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("dify API key is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid dify base URL '%s': %w", baseURL, err)
	}
	if parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("dify base URL scheme must be https, got '%s'", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return nil, fmt.Errorf("dify base URL '%s' has no host", baseURL)
	}

	o := options{readTimeout: DefaultReadTimeout}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	httpClient, err := o.buildHTTPClient()
	if err != nil {
		return nil, err
	}

	return &Client{
		apiKey:      apiKey,
		readTimeout: o.readTimeout,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		httpClient:  httpClient,
		logger:      o.logger,
	}, nil
}

// WithHTTPClient sets the HTTP client used as the base of the transport chain.
// The client is copied; its Timeout is replaced by the read timeout on every request.
func WithHTTPClient(hc *http.Client) Opt {
	return func(o *options) error {
		if hc == nil {
			return errors.New("http client cannot be nil")
		}
		o.httpClient = hc
		return nil
	}
}

// WithReadTimeout sets the initial read timeout.
func WithReadTimeout(d time.Duration) Opt {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("read timeout must be positive, got %v", d)
		}
		o.readTimeout = d
		return nil
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) Opt {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithMetrics records request counts and durations in reg.
func WithMetrics(reg prometheus.Registerer) Opt {
	return func(o *options) error {
		if reg == nil {
			return errors.New("prometheus registerer cannot be nil")
		}
		o.registerer = reg
		return nil
	}
}

// WithTracing creates an OpenTelemetry client span for every request.
func WithTracing() Opt {
	return func(o *options) error {
		o.tracing = true
		return nil
	}
}

// UpdateAPIKey replaces the API key used for subsequent requests.
func (c *Client) UpdateAPIKey(newKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKey = newKey
}

// SetReadTimeout changes the timeout applied to subsequent requests.
// Non-positive durations are ignored and the current timeout is kept.
func (c *Client) SetReadTimeout(d time.Duration) {
	if d <= 0 {
		c.logger.Debug("ignoring non-positive read timeout", zap.Duration("timeout", d))
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readTimeout = d
}

// ReadTimeout returns the timeout the next request will use.
func (c *Client) ReadTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.readTimeout
}

// BaseURL returns the URL every endpoint path is appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Profile returns the capability profile name of this client.
func (c *Client) Profile() string {
	return profileName
}

// Close releases idle connections held by the underlying transport.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// settings returns the key and timeout current at the time of the call.
func (c *Client) settings() (string, time.Duration) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey, c.readTimeout
}
