package api

import (
	"context"
	"net/http"

	"github.com/safastep/console/internal/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	envelope
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Login exchanges admin credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (domain.Identity, error) {
	var resp loginResponse
	err := c.do(ctx, "session.login", http.MethodPost, "/admin/login", nil, "",
		loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{Token: resp.Token, Username: resp.Username, Role: resp.Role}, nil
}

// Verify confirms a stored token is still valid. Any rejection means the
// persisted identity must be discarded.
func (c *Client) Verify(ctx context.Context, token string) error {
	var resp envelope
	return c.get(ctx, "session.verify", "/admin/verify", nil, token, &resp)
}

type statsResponse struct {
	envelope
	Stats domain.Stats `json:"stats"`
}

// Stats fetches the aggregate platform counters for the dashboard.
func (c *Client) Stats(ctx context.Context, token string) (domain.Stats, error) {
	var resp statsResponse
	if err := c.get(ctx, "stats.fetch", "/admin/stats", nil, token, &resp); err != nil {
		return domain.Stats{}, err
	}
	return resp.Stats, nil
}
