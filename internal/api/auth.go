package api

import (
	"context"

	"github.com/coffertool/coffer/internal/model"
)

// LoginResult is the response to a successful login.
type LoginResult struct {
	AccessToken string     `json:"access_token"`
	User        model.User `json:"user"`
}

// Login exchanges credentials for a token and the user record. The
// returned token is not installed on the client; callers decide whether
// to persist and use it.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body := map[string]string{"username": username, "password": password}
	var out LoginResult
	if err := c.post(ctx, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me validates the installed token and returns the current user.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var out model.User
	if err := c.get(ctx, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
