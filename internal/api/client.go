// Package api implements the typed HTTP client for the SafaStep platform
// API consumed by the console.
//
// Every backend response is wrapped in a JSON envelope carrying a
// "success" boolean and, on rejection, a "detail" message. The client
// normalizes that envelope into domain errors: network failures become
// ETRANSPORT, non-2xx statuses and success:false become status-derived
// codes with the server-provided detail preferred as the user-facing
// message.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/safastep/console/internal/domain"
)

// DefaultTimeout bounds every outbound call to the backend.
const DefaultTimeout = 15 * time.Second

// Client issues requests against the platform API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client for the given base URL (e.g. "http://localhost:8000").
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logger,
	}
}

// NewClientWithHTTP creates a Client with a caller-supplied http.Client.
// Used by tests to point the client at an httptest server.
func NewClientWithHTTP(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// =============================================================================
// Envelope
// =============================================================================

// envelope is the wrapper convention used by every backend response.
type envelope struct {
	Success bool   `json:"success"`
	Detail  string `json:"detail"`
}

func (e *envelope) ok() bool        { return e.Success }
func (e *envelope) message() string { return e.Detail }

// response is implemented by every typed response struct via an embedded
// envelope.
type response interface {
	ok() bool
	message() string
}

// =============================================================================
// Request plumbing
// =============================================================================

// do issues a request and decodes the enveloped response into out.
//
// op names the logical operation for error reporting (e.g. "users.list").
// token is attached as a bearer credential when non-empty. body, when
// non-nil, is marshaled as the JSON request body.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, token string, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return domain.Internal(err, op, "failed to encode request body")
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return domain.Internal(err, op, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend unreachable", "op", op, "error", err)
		return domain.Transport(err, op)
	}
	defer resp.Body.Close()

	// Decode the body regardless of status: rejection responses carry
	// the detail message in the same envelope.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.Transport(err, op)
	}

	if out == nil {
		out = &envelope{}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return domain.Internal(err, op, "failed to decode response")
		}
		// Non-JSON error body; fall through to the status mapping with
		// no server detail.
	}

	env, _ := out.(response)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := ""
		if env != nil {
			detail = env.message()
		}
		return rejected(op, resp.StatusCode, detail)
	}
	if env != nil && !env.ok() {
		return rejected(op, resp.StatusCode, env.message())
	}
	return nil
}

// get is a convenience wrapper for GET requests.
func (c *Client) get(ctx context.Context, op, path string, query url.Values, token string, out any) error {
	return c.do(ctx, op, http.MethodGet, path, query, token, nil, out)
}

// pageQuery builds the skip/limit (and optional query) parameters shared
// by all list and search endpoints.
func pageQuery(queryText string, skip, limit int) url.Values {
	v := url.Values{}
	if queryText != "" {
		v.Set("query", queryText)
	}
	v.Set("skip", fmt.Sprintf("%d", skip))
	v.Set("limit", fmt.Sprintf("%d", limit))
	return v
}
