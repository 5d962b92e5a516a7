package backend

import (
	"context"
	"net/http"
)

// CreateSession 调用 POST /chat/session
// authorization 非空时作为 Authorization 头转发
func (c *Client) CreateSession(ctx context.Context, userID any, authorization string) (map[string]any, error) {
	r, err := jsonRequest(OpSession, c.timeouts.Session, http.MethodPost, "/chat/session", map[string]any{
		"userId": userID,
	})
	if err != nil {
		return nil, err
	}
	if authorization != "" {
		r.header = http.Header{"Authorization": []string{authorization}}
	}

	var out map[string]any
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return out, nil
}
