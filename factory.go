package xodify

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xostack/xodify/base"
	"github.com/xostack/xodify/chat"
	"github.com/xostack/xodify/completion"
	"github.com/xostack/xodify/config"
	"github.com/xostack/xodify/workflow"
)

// GetClient returns a client for the DefaultApp of cfg. The concrete type
// depends on the app's profile: *base.Client, *completion.Client,
// *workflow.Client or *chat.Client.
//
// debugMode enables a development logger that prints every dispatched request.
//
// Making it a variable to allow for easy mocking in tests.
var GetClient func(cfg config.Config, debugMode bool) (Client, error) = func(cfg config.Config, debugMode bool) (Client, error) {
	if cfg.DefaultApp == "" {
		return nil, fmt.Errorf("no default Dify app specified in configuration")
	}
	return GetAppClient(cfg, cfg.DefaultApp, debugMode)
}

// GetAppClient returns a client for the named application of cfg.
func GetAppClient(cfg config.Config, appName string, debugMode bool) (Client, error) {
	app, exists := cfg.GetAppConfig(appName)
	if !exists {
		return nil, fmt.Errorf("configuration for app '%s' not found", appName)
	}
	if app.APIKey == "" {
		return nil, fmt.Errorf("API key for app '%s' not found in configuration", appName)
	}

	timeoutSeconds := cfg.RequestTimeoutSeconds
	if timeoutSeconds <= 0 {
		timeoutSeconds = 60
	}

	logLevel := cfg.LogLevel
	if debugMode {
		logLevel = "debug"
	}
	logger := zap.NewNop()
	if debugMode || logLevel != "" {
		l, err := config.NewLogger(logLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		logger = l.With(zap.String("app", appName), zap.String("profile", app.Profile))
	}

	baseURL := cfg.ResolveBaseURL(app)
	opts := []base.Opt{
		base.WithReadTimeout(time.Duration(timeoutSeconds) * time.Second),
		base.WithLogger(logger),
	}

	var (
		client Client
		err    error
	)
	switch app.Profile {
	case config.ProfileBase:
		client, err = base.New(app.APIKey, baseURL, opts...)
	case config.ProfileCompletion:
		client, err = completion.NewClient(app.APIKey, baseURL, opts...)
	case config.ProfileWorkflow:
		client, err = workflow.NewClient(app.APIKey, baseURL, opts...)
	case config.ProfileChat:
		client, err = chat.NewClient(app.APIKey, baseURL, opts...)
	default:
		return nil, fmt.Errorf("unsupported Dify app profile: %s", app.Profile)
	}
	if err != nil {
		// Avoid returning a typed nil pointer inside a non-nil interface.
		return nil, err
	}
	return client, nil
}
