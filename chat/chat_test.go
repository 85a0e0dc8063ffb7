package chat_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xostack/xodify/base"
	"github.com/xostack/xodify/chat"
	"github.com/xostack/xodify/internal/mockdify"
)

func newTestClient(t *testing.T, srv *mockdify.Server) *chat.Client {
	t.Helper()
	c, err := chat.NewClient("test-api-key", srv.BaseURL(), base.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func ptr[T any](v T) *T { return &v }

func TestNewClient(t *testing.T) {
	c, err := chat.NewClient("test-api-key", "")
	require.NoError(t, err)
	assert.Equal(t, "chat", c.Profile())

	_, err = chat.NewClient("test-api-key", "http://localhost/v1")
	assert.Error(t, err)
}

func TestCreateChatMessage(t *testing.T) {
	tests := []struct {
		name     string
		opts     chat.MessageOptions
		wantBody string
	}{
		{
			name:     "new conversation",
			opts:     chat.MessageOptions{},
			wantBody: `{"inputs":{},"query":"Hi","user":"u1","response_mode":"blocking"}`,
		},
		{
			name:     "continue conversation",
			opts:     chat.MessageOptions{ConversationID: "c1"},
			wantBody: `{"inputs":{},"query":"Hi","user":"u1","response_mode":"blocking","conversation_id":"c1"}`,
		},
		{
			name:     "streaming",
			opts:     chat.MessageOptions{ResponseMode: "streaming"},
			wantBody: `{"inputs":{},"query":"Hi","user":"u1","response_mode":"streaming"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := mockdify.New(t)
			c := newTestClient(t, srv)

			resp, err := c.CreateChatMessage(context.Background(), map[string]any{}, "Hi", "u1", tt.opts)
			require.NoError(t, err)
			resp.Body.Close()

			got := srv.Last(t)
			assert.Equal(t, http.MethodPost, got.Method)
			assert.Equal(t, "/v1/chat-messages", got.RequestURI)
			assert.Equal(t, tt.wantBody, string(got.Body))
		})
	}
}

func TestGetConversationMessages(t *testing.T) {
	tests := []struct {
		name      string
		opts      chat.MessageListOptions
		wantQuery string
	}{
		{
			name:      "user only",
			opts:      chat.MessageListOptions{},
			wantQuery: "user=u1",
		},
		{
			name:      "all filters",
			opts:      chat.MessageListOptions{ConversationID: "c1", FirstID: "m9", Limit: 20},
			wantQuery: "user=u1&conversation_id=c1&first_id=m9&limit=20",
		},
		{
			name:      "limit only",
			opts:      chat.MessageListOptions{Limit: 5},
			wantQuery: "user=u1&limit=5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := mockdify.New(t)
			c := newTestClient(t, srv)

			resp, err := c.GetConversationMessages(context.Background(), "u1", tt.opts)
			require.NoError(t, err)
			resp.Body.Close()

			got := srv.Last(t)
			assert.Equal(t, http.MethodGet, got.Method)
			assert.Equal(t, "/v1/messages", got.Path)
			assert.Equal(t, tt.wantQuery, got.RawQuery)
		})
	}
}

// GetConversations always sends last_id, limit and pinned, even when unset.
func TestGetConversations(t *testing.T) {
	tests := []struct {
		name      string
		opts      chat.ConversationListOptions
		wantQuery string
	}{
		{
			name:      "nothing set",
			opts:      chat.ConversationListOptions{},
			wantQuery: "user=u1&last_id&limit&pinned",
		},
		{
			name:      "everything set",
			opts:      chat.ConversationListOptions{LastID: "c7", Limit: 20, Pinned: ptr(true)},
			wantQuery: "user=u1&last_id=c7&limit=20&pinned=true",
		},
		{
			name:      "pinned false is sent",
			opts:      chat.ConversationListOptions{Pinned: ptr(false)},
			wantQuery: "user=u1&last_id&limit&pinned=false",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := mockdify.New(t)
			c := newTestClient(t, srv)

			resp, err := c.GetConversations(context.Background(), "u1", tt.opts)
			require.NoError(t, err)
			resp.Body.Close()

			got := srv.Last(t)
			assert.Equal(t, http.MethodGet, got.Method)
			assert.Equal(t, "/v1/conversations", got.Path)
			assert.Equal(t, tt.wantQuery, got.RawQuery)
		})
	}
}

func TestRenameConversation(t *testing.T) {
	srv := mockdify.New(t)
	c := newTestClient(t, srv)

	resp, err := c.RenameConversation(context.Background(), "c1", "Trip planning", "u1")
	require.NoError(t, err)
	resp.Body.Close()

	got := srv.Last(t)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/v1/conversations/c1/name", got.RequestURI)
	assert.Equal(t, `{"name":"Trip planning","user":"u1"}`, string(got.Body))
}

func TestChatClient_UpdateAPIKey(t *testing.T) {
	srv := mockdify.New(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	resp, err := c.CreateChatMessage(ctx, nil, "one", "u1", chat.MessageOptions{})
	require.NoError(t, err)
	resp.Body.Close()

	c.UpdateAPIKey("second-key")

	resp, err = c.GetConversations(ctx, "u1", chat.ConversationListOptions{})
	require.NoError(t, err)
	resp.Body.Close()

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "Bearer test-api-key", reqs[0].Header.Get("Authorization"))
	assert.Equal(t, "Bearer second-key", reqs[1].Header.Get("Authorization"))
}
