package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/safastep/console/internal/domain"
)

type ecoLocationListResponse struct {
	envelope
	Locations []domain.EcoLocation `json:"locations"`
	Total     int64                `json:"total"`
}

// ListEcoLocations fetches one page of eco-locations.
func (c *Client) ListEcoLocations(ctx context.Context, token string, skip, limit int) (domain.Page[domain.EcoLocation], error) {
	var resp ecoLocationListResponse
	err := c.get(ctx, "ecolocations.list", "/admin/eco-locations", pageQuery("", skip, limit), token, &resp)
	if err != nil {
		return domain.Page[domain.EcoLocation]{}, err
	}
	return domain.Page[domain.EcoLocation]{Items: resp.Locations, Total: resp.Total, Limit: limit, Offset: skip}, nil
}

// SearchEcoLocations fetches one page of eco-locations matching a substring query.
func (c *Client) SearchEcoLocations(ctx context.Context, token, query string, skip, limit int) (domain.Page[domain.EcoLocation], error) {
	var resp ecoLocationListResponse
	err := c.get(ctx, "ecolocations.search", "/admin/eco-locations/search", pageQuery(query, skip, limit), token, &resp)
	if err != nil {
		return domain.Page[domain.EcoLocation]{}, err
	}
	return domain.Page[domain.EcoLocation]{Items: resp.Locations, Total: resp.Total, Limit: limit, Offset: skip}, nil
}

// CreateEcoLocation adds a new eco-location to the platform map.
func (c *Client) CreateEcoLocation(ctx context.Context, token string, params domain.EcoLocationParams) error {
	var resp envelope
	return c.do(ctx, "ecolocations.create", http.MethodPost, "/admin/eco-locations", nil, token, params, &resp)
}

// UpdateEcoLocation replaces an existing eco-location's fields.
func (c *Client) UpdateEcoLocation(ctx context.Context, token string, id int64, params domain.EcoLocationParams) error {
	var resp envelope
	return c.do(ctx, "ecolocations.update", http.MethodPut, fmt.Sprintf("/admin/eco-locations/%d", id), nil, token, params, &resp)
}

// DeleteEcoLocation removes an eco-location.
func (c *Client) DeleteEcoLocation(ctx context.Context, token string, id int64) error {
	var resp envelope
	return c.do(ctx, "ecolocations.delete", http.MethodDelete, fmt.Sprintf("/admin/eco-locations/%d", id), nil, token, nil, &resp)
}

// EcoLocationSource binds the eco-location endpoints to a bearer token.
type EcoLocationSource struct {
	Client *Client
	Token  string
}

func (s EcoLocationSource) List(ctx context.Context, skip, limit int) (domain.Page[domain.EcoLocation], error) {
	return s.Client.ListEcoLocations(ctx, s.Token, skip, limit)
}

func (s EcoLocationSource) Search(ctx context.Context, query string, skip, limit int) (domain.Page[domain.EcoLocation], error) {
	return s.Client.SearchEcoLocations(ctx, s.Token, query, skip, limit)
}

func (s EcoLocationSource) Delete(ctx context.Context, id int64) error {
	return s.Client.DeleteEcoLocation(ctx, s.Token, id)
}

func (s EcoLocationSource) CreateEcoLocation(ctx context.Context, params domain.EcoLocationParams) error {
	return s.Client.CreateEcoLocation(ctx, s.Token, params)
}

func (s EcoLocationSource) UpdateEcoLocation(ctx context.Context, id int64, params domain.EcoLocationParams) error {
	return s.Client.UpdateEcoLocation(ctx, s.Token, id, params)
}
