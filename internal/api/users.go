package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/safastep/console/internal/domain"
)

type userListResponse struct {
	envelope
	Users []domain.User `json:"users"`
	Total int64         `json:"total"`
}

type userDetailResponse struct {
	envelope
	User  domain.User      `json:"user"`
	Stats domain.UserStats `json:"stats"`
}

// ListUsers fetches one page of users.
func (c *Client) ListUsers(ctx context.Context, token string, skip, limit int) (domain.Page[domain.User], error) {
	var resp userListResponse
	err := c.get(ctx, "users.list", "/admin/users", pageQuery("", skip, limit), token, &resp)
	if err != nil {
		return domain.Page[domain.User]{}, err
	}
	return domain.Page[domain.User]{Items: resp.Users, Total: resp.Total, Limit: limit, Offset: skip}, nil
}

// SearchUsers fetches one page of users matching a substring query.
func (c *Client) SearchUsers(ctx context.Context, token, query string, skip, limit int) (domain.Page[domain.User], error) {
	var resp userListResponse
	err := c.get(ctx, "users.search", "/admin/users/search", pageQuery(query, skip, limit), token, &resp)
	if err != nil {
		return domain.Page[domain.User]{}, err
	}
	return domain.Page[domain.User]{Items: resp.Users, Total: resp.Total, Limit: limit, Offset: skip}, nil
}

// GetUser fetches one user's detail payload, including per-user counters.
func (c *Client) GetUser(ctx context.Context, token string, id int64) (domain.UserDetail, error) {
	var resp userDetailResponse
	err := c.get(ctx, "users.get", fmt.Sprintf("/admin/users/%d", id), nil, token, &resp)
	if err != nil {
		return domain.UserDetail{}, err
	}
	return domain.UserDetail{User: resp.User, Stats: resp.Stats}, nil
}

// DeleteUser removes a user account.
func (c *Client) DeleteUser(ctx context.Context, token string, id int64) error {
	var resp envelope
	return c.do(ctx, "users.delete", http.MethodDelete, fmt.Sprintf("/admin/users/%d", id), nil, token, nil, &resp)
}

// UserSource binds the user endpoints to a bearer token so a collection
// controller can page, search, and delete without knowing about auth.
type UserSource struct {
	Client *Client
	Token  string
}

func (s UserSource) List(ctx context.Context, skip, limit int) (domain.Page[domain.User], error) {
	return s.Client.ListUsers(ctx, s.Token, skip, limit)
}

func (s UserSource) Search(ctx context.Context, query string, skip, limit int) (domain.Page[domain.User], error) {
	return s.Client.SearchUsers(ctx, s.Token, query, skip, limit)
}

func (s UserSource) Delete(ctx context.Context, id int64) error {
	return s.Client.DeleteUser(ctx, s.Token, id)
}
