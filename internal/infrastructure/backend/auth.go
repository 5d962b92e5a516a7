package backend

import (
	"context"
	"net/http"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse 登录响应
// Raw 保留后端原始字段，用于透传
type LoginResponse struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	TokenType    string         `json:"tokenType"`
	ExpiresIn    any            `json:"expiresIn"`
	User         map[string]any `json:"user"`
	Raw          map[string]any `json:"-"`
}

// Login 调用 POST /auth/login
func (c *Client) Login(ctx context.Context, in LoginRequest) (*LoginResponse, error) {
	r, err := jsonRequest(OpLogin, c.timeouts.Login, http.MethodPost, "/auth/login", in)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := c.do(ctx, r, &raw); err != nil {
		return nil, err
	}

	out := &LoginResponse{Raw: raw}
	if err := remarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}
