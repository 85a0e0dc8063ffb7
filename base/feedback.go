package base

import (
	"context"
	"net/http"
)

type messageFeedbackRequest struct {
	Rating string `json:"rating"`
	User   string `json:"user"`
}

// MessageFeedback rates the message identified by messageID, typically "like" or "dislike".
func (c *Client) MessageFeedback(ctx context.Context, messageID, rating, user string) (*http.Response, error) {
	return c.Dispatch(ctx, Request{
		Method: http.MethodPost,
		Path:   "/messages/" + messageID + "/feedbacks",
		Body:   messageFeedbackRequest{Rating: rating, User: user},
	})
}

// GetApplicationParameters fetches the input form and feature settings of the application.
func (c *Client) GetApplicationParameters(ctx context.Context, user string) (*http.Response, error) {
	return c.Dispatch(ctx, Request{
		Method: http.MethodGet,
		Path:   "/parameters",
		Query:  Params{{Key: "user", Value: user}},
	})
}
