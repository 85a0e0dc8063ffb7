// Package chat provides a client for Dify chat and agent applications,
// including conversation history and renaming.
package chat

import (
	"context"
	"net/http"

	"github.com/xostack/xodify/base"
)

const profileName = "chat"

// Client sends chat messages and manages conversations.
type Client struct {
	*base.Client
}

// MessageOptions holds the optional arguments of CreateChatMessage.
type MessageOptions struct {
	// ResponseMode defaults to "blocking".
	ResponseMode string

	// ConversationID continues an existing conversation. Empty starts a new one.
	ConversationID string
}

// MessageListOptions filters GetConversationMessages. Zero values are never
// sent: an empty ConversationID or a Limit of 0 leaves the parameter out.
type MessageListOptions struct {
	ConversationID string
	FirstID        string
	Limit          int
}

// ConversationListOptions pages through GetConversations.
//
// Unlike the other list calls, every field is always sent: an unset field is
// encoded as a bare key with no value. Zero values count as unset, so an empty
// LastID or a Limit of 0 is never sent as a value. Pinned false is sent.
type ConversationListOptions struct {
	LastID string
	Limit  int
	Pinned *bool
}

type chatMessageRequest struct {
	Inputs         map[string]any `json:"inputs"`
	Query          string         `json:"query"`
	User           string         `json:"user"`
	ResponseMode   string         `json:"response_mode"`
	ConversationID string         `json:"conversation_id,omitempty"`
}

type renameConversationRequest struct {
	Name string `json:"name"`
	User string `json:"user"`
}

// NewClient creates a chat client. See base.New for the arguments.
func NewClient(apiKey, baseURL string, opts ...base.Opt) (*Client, error) {
	c, err := base.New(apiKey, baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{Client: c}, nil
}

// CreateChatMessage sends query to the application as user.
func (c *Client) CreateChatMessage(ctx context.Context, inputs map[string]any, query, user string, opts MessageOptions) (*http.Response, error) {
	responseMode := opts.ResponseMode
	if responseMode == "" {
		responseMode = base.ResponseModeBlocking
	}

	return c.Dispatch(ctx, base.Request{
		Method: http.MethodPost,
		Path:   "/chat-messages",
		Body: chatMessageRequest{
			Inputs:         inputs,
			Query:          query,
			User:           user,
			ResponseMode:   responseMode,
			ConversationID: opts.ConversationID,
		},
		Stream: responseMode == base.ResponseModeStreaming,
	})
}

// GetConversationMessages lists the message history visible to user.
func (c *Client) GetConversationMessages(ctx context.Context, user string, opts MessageListOptions) (*http.Response, error) {
	params := base.Params{{Key: "user", Value: user}}
	if opts.ConversationID != "" {
		params = params.Add("conversation_id", opts.ConversationID)
	}
	if opts.FirstID != "" {
		params = params.Add("first_id", opts.FirstID)
	}
	if opts.Limit != 0 {
		params = params.Add("limit", opts.Limit)
	}

	return c.Dispatch(ctx, base.Request{
		Method: http.MethodGet,
		Path:   "/messages",
		Query:  params,
	})
}

// GetConversations lists the conversations of user.
func (c *Client) GetConversations(ctx context.Context, user string, opts ConversationListOptions) (*http.Response, error) {
	params := base.Params{{Key: "user", Value: user}}
	params = params.Add("last_id", valueOrNil(opts.LastID != "", opts.LastID))
	params = params.Add("limit", valueOrNil(opts.Limit != 0, opts.Limit))
	if opts.Pinned != nil {
		params = params.Add("pinned", *opts.Pinned)
	} else {
		params = params.Add("pinned", nil)
	}

	return c.Dispatch(ctx, base.Request{
		Method: http.MethodGet,
		Path:   "/conversations",
		Query:  params,
	})
}

// RenameConversation sets the display name of a conversation.
func (c *Client) RenameConversation(ctx context.Context, conversationID, name, user string) (*http.Response, error) {
	return c.Dispatch(ctx, base.Request{
		Method: http.MethodPost,
		Path:   "/conversations/" + conversationID + "/name",
		Body:   renameConversationRequest{Name: name, User: user},
	})
}

// Profile returns "chat".
func (c *Client) Profile() string {
	return profileName
}

func valueOrNil(set bool, v any) any {
	if !set {
		return nil
	}
	return v
}
