// Package config handles loading and managing xodify configuration.
//
// A configuration names one or more Dify applications. Each application has
// its own API key and a capability profile (base, completion, workflow or
// chat) that decides which client GetClient builds for it. Configuration can
// be created programmatically or read from a TOML file that follows the XDG
// Base Directory specification.
//
// Example TOML configuration:
//
//	default_app = "support-bot"
//	request_timeout_seconds = 60
//	base_url = "https://api.dify.ai/v1"
//	log_level = "info"
//
//	[apps.support-bot]
//	profile = "chat"
//	api_key = "app-xxxxxxxx"
//
//	[apps.summarize]
//	profile = "workflow"
//	api_key = "app-yyyyyyyy"
//	base_url = "https://dify.internal.example.com/v1"
//
// Example programmatic usage:
//
//	cfg := config.NewConfig("support-bot", 30, map[string]config.AppConfig{
//		"support-bot": {Profile: "chat", APIKey: "app-xxxxxxxx"},
//	})
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	appName         = "xodify"
	configFileName  = "config.toml"
	DefaultDirPerm  = 0750 // rwxr-x---
	DefaultFilePerm = 0600 // rw------- (contains API keys)

	defaultBaseURL        = "https://api.dify.ai/v1"
	defaultTimeoutSeconds = 60

	// Environment variables that override the default application.
	EnvAPIKey  = "DIFY_API_KEY"
	EnvBaseURL = "DIFY_BASE_URL"
)

// Profiles accepted in AppConfig.Profile.
const (
	ProfileBase       = "base"
	ProfileCompletion = "completion"
	ProfileWorkflow   = "workflow"
	ProfileChat       = "chat"
)

// Config holds the library configuration.
type Config struct {
	// DefaultApp selects the application GetClient connects to.
	// Must match a key in Apps.
	DefaultApp string `toml:"default_app"`

	// RequestTimeoutSeconds is the read timeout applied to every request.
	// If <= 0, a default of 60 seconds is used.
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`

	// BaseURL is used by applications that do not set their own.
	BaseURL string `toml:"base_url,omitempty"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `toml:"log_level,omitempty"`

	// Apps contains per-application settings keyed by a name of your choosing.
	Apps map[string]AppConfig `toml:"apps"`
}

// AppConfig holds the settings of one Dify application.
type AppConfig struct {
	// Profile is the application type: base, completion, workflow or chat.
	Profile string `toml:"profile"`

	// APIKey is the application's secret key. Handle with care.
	APIKey string `toml:"api_key,omitempty"`

	// BaseURL overrides Config.BaseURL for this application, e.g. for a
	// self-hosted Dify instance.
	BaseURL string `toml:"base_url,omitempty"`
}

func defaultConfig() Config {
	return Config{
		RequestTimeoutSeconds: defaultTimeoutSeconds,
		BaseURL:               defaultBaseURL,
		LogLevel:              "info",
		Apps:                  map[string]AppConfig{},
	}
}

// GetConfigFilePath determines the configuration file path based on XDG specs:
// $XDG_CONFIG_HOME/xodify/config.toml, or $HOME/.config/xodify/config.toml.
//
// The returned path may not exist.
func GetConfigFilePath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine user home directory: %w", err)
		}
		configHome = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configHome, appName, configFileName), nil
}

// Load reads the configuration file at the XDG path if it exists, otherwise
// starts from defaults, then applies DIFY_API_KEY and DIFY_BASE_URL to the
// default application.
func Load() (Config, error) {
	cfgPath, err := GetConfigFilePath()
	if err != nil {
		return Config{}, fmt.Errorf("failed to determine config path: %w", err)
	}

	cfg := defaultConfig()
	if _, err := os.Stat(cfgPath); err == nil {
		if cfg, err = decodeFile(cfgPath); err != nil {
			return Config{}, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to access config file %s: %w", cfgPath, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration in %s: %w", cfgPath, err)
	}
	return cfg, nil
}

// applyEnv overrides the default application from the environment. When no
// application is configured an "env" chat application is created.
func (c *Config) applyEnv() {
	apiKey := os.Getenv(EnvAPIKey)
	baseURL := os.Getenv(EnvBaseURL)
	if apiKey == "" && baseURL == "" {
		return
	}

	if c.Apps == nil {
		c.Apps = map[string]AppConfig{}
	}
	if c.DefaultApp == "" {
		c.DefaultApp = "env"
	}

	app, exists := c.Apps[c.DefaultApp]
	if !exists {
		app.Profile = ProfileChat
	}
	if apiKey != "" {
		app.APIKey = apiKey
	}
	if baseURL != "" {
		app.BaseURL = baseURL
	}
	c.Apps[c.DefaultApp] = app
}

// LoadFromFile loads configuration from a specific file path and merges it
// over the defaults. Unlike Load it does not consult the environment.
func LoadFromFile(filePath string) (Config, error) {
	cfg, err := decodeFile(filePath)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration in %s: %w", filePath, err)
	}
	return cfg, nil
}

// decodeFile reads filePath over the defaults without validating the result.
func decodeFile(filePath string) (Config, error) {
	cfg := defaultConfig()

	if _, err := os.Stat(filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("configuration file not found at %s", filePath)
		}
		return Config{}, fmt.Errorf("failed to access config file %s: %w", filePath, err)
	}

	meta, err := toml.DecodeFile(filePath, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode TOML config file %s: %w", filePath, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown configuration keys in %s: %v", filePath, undecoded)
	}
	return cfg, nil
}

// Save writes the configuration to filePath, creating parent directories.
func (c Config) Save(filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), DefaultDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", filepath.Dir(filePath), err)
	}

	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, DefaultFilePerm)
	if err != nil {
		return fmt.Errorf("failed to create config file %s: %w", filePath, err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(c); err != nil {
		return fmt.Errorf("failed to encode configuration to TOML: %w", err)
	}
	return nil
}

// Validate checks the log level, that every application has a known profile
// and an API key, and that the default application, if set, exists.
func (c *Config) Validate() error {
	if c.LogLevel != "" && !isKnownLogLevel(c.LogLevel) {
		return fmt.Errorf("unsupported log_level '%s': use debug, info, warn or error", c.LogLevel)
	}
	if c.DefaultApp != "" {
		if _, exists := c.Apps[c.DefaultApp]; !exists {
			return fmt.Errorf("default app '%s' is specified but has no configuration section in [apps]", c.DefaultApp)
		}
	}
	for name, app := range c.Apps {
		switch app.Profile {
		case ProfileBase, ProfileCompletion, ProfileWorkflow, ProfileChat:
		default:
			return fmt.Errorf("app '%s' has unsupported profile '%s'", name, app.Profile)
		}
		if app.APIKey == "" {
			return fmt.Errorf("app '%s' has no api_key", name)
		}
	}
	return nil
}

// GetAppConfig retrieves the configuration of a named application.
func (c *Config) GetAppConfig(name string) (AppConfig, bool) {
	app, exists := c.Apps[name]
	return app, exists
}

// ResolveBaseURL returns the base URL an application should use: its own,
// then the global one, then the hosted Dify API.
func (c *Config) ResolveBaseURL(app AppConfig) string {
	switch {
	case app.BaseURL != "":
		return app.BaseURL
	case c.BaseURL != "":
		return c.BaseURL
	default:
		return defaultBaseURL
	}
}

// NewConfig creates a configuration programmatically, without file I/O.
//
// Example:
//
//	cfg := NewConfig("summarize", 30, map[string]AppConfig{
//		"summarize": {Profile: "workflow", APIKey: "app-yyyyyyyy"},
//	})
func NewConfig(defaultApp string, timeoutSeconds int, apps map[string]AppConfig) Config {
	return Config{
		DefaultApp:            defaultApp,
		RequestTimeoutSeconds: timeoutSeconds,
		BaseURL:               defaultBaseURL,
		Apps:                  apps,
	}
}
