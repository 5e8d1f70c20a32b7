package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/safastep/console/internal/domain"
)

type postListResponse struct {
	envelope
	Posts []domain.Post `json:"posts"`
	Total int64         `json:"total"`
}

type postDetailResponse struct {
	envelope
	Post  domain.Post      `json:"post"`
	Stats domain.PostStats `json:"stats"`
}

// ListPosts fetches one page of posts.
func (c *Client) ListPosts(ctx context.Context, token string, skip, limit int) (domain.Page[domain.Post], error) {
	var resp postListResponse
	err := c.get(ctx, "posts.list", "/admin/posts", pageQuery("", skip, limit), token, &resp)
	if err != nil {
		return domain.Page[domain.Post]{}, err
	}
	return domain.Page[domain.Post]{Items: resp.Posts, Total: resp.Total, Limit: limit, Offset: skip}, nil
}

// SearchPosts fetches one page of posts matching a substring query.
func (c *Client) SearchPosts(ctx context.Context, token, query string, skip, limit int) (domain.Page[domain.Post], error) {
	var resp postListResponse
	err := c.get(ctx, "posts.search", "/admin/posts/search", pageQuery(query, skip, limit), token, &resp)
	if err != nil {
		return domain.Page[domain.Post]{}, err
	}
	return domain.Page[domain.Post]{Items: resp.Posts, Total: resp.Total, Limit: limit, Offset: skip}, nil
}

// GetPost fetches one post's detail payload.
func (c *Client) GetPost(ctx context.Context, token string, id int64) (domain.PostDetail, error) {
	var resp postDetailResponse
	err := c.get(ctx, "posts.get", fmt.Sprintf("/admin/posts/%d", id), nil, token, &resp)
	if err != nil {
		return domain.PostDetail{}, err
	}
	return domain.PostDetail{Post: resp.Post, Stats: resp.Stats}, nil
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, token string, id int64) error {
	var resp envelope
	return c.do(ctx, "posts.delete", http.MethodDelete, fmt.Sprintf("/admin/posts/%d", id), nil, token, nil, &resp)
}

// PostSource binds the post endpoints to a bearer token.
type PostSource struct {
	Client *Client
	Token  string
}

func (s PostSource) List(ctx context.Context, skip, limit int) (domain.Page[domain.Post], error) {
	return s.Client.ListPosts(ctx, s.Token, skip, limit)
}

func (s PostSource) Search(ctx context.Context, query string, skip, limit int) (domain.Page[domain.Post], error) {
	return s.Client.SearchPosts(ctx, s.Token, query, skip, limit)
}

func (s PostSource) Delete(ctx context.Context, id int64) error {
	return s.Client.DeletePost(ctx, s.Token, id)
}
