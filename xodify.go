// Package xodify is a client library for the Dify application API.
//
// Dify exposes one API key per application, and the application type decides
// which endpoints are available. This module mirrors that with one package per
// capability profile, all built on the same request dispatcher:
//   - base: message feedback, application parameters, file upload
//   - completion: completion messages
//   - workflow: workflow runs
//   - chat: chat messages and conversation management
//
// Every method sends exactly one HTTP request and returns the *http.Response
// as received. Non-2xx statuses are not turned into errors, and the caller is
// responsible for closing the response body.
//
// Example usage:
//
//	cfg := config.NewConfig("support-bot", 60, map[string]config.AppConfig{
//		"support-bot": {Profile: "chat", APIKey: "app-xxxxxxxx"},
//	})
//	client, err := xodify.GetClient(cfg, false)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	resp, err := client.(*chat.Client).CreateChatMessage(ctx, nil, "Hello", "user-1", chat.MessageOptions{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer resp.Body.Close()
//
// Profile clients can also be created directly:
//
//	client, err := workflow.NewClient("app-yyyyyyyy", "", base.WithReadTimeout(30*time.Second))
package xodify

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/xostack/xodify/base"
)

// Version of the xodify library.
const Version = "0.1.0"

// Client is the capability every profile client shares.
//
// All methods are safe for concurrent use.
type Client interface {
	// MessageFeedback rates a message on behalf of user.
	MessageFeedback(ctx context.Context, messageID, rating, user string) (*http.Response, error)

	// GetApplicationParameters fetches the application's input form and features.
	GetApplicationParameters(ctx context.Context, user string) (*http.Response, error)

	// Upload sends r to /files/upload as a multipart form.
	Upload(ctx context.Context, r io.Reader, user string, opts base.UploadOptions) (*http.Response, error)

	// UploadFile opens path and uploads it. Open errors are returned before any request.
	UploadFile(ctx context.Context, path, user string, opts base.UploadOptions) (*http.Response, error)

	// UpdateAPIKey replaces the key used by subsequent requests.
	UpdateAPIKey(newKey string)

	// SetReadTimeout changes the timeout used by subsequent requests. Non-positive values are ignored.
	SetReadTimeout(d time.Duration)

	// Profile returns "base", "completion", "workflow" or "chat".
	Profile() string

	// Close releases idle connections.
	Close() error
}
