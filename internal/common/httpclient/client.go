// internal/common/httpclient/client.go

// Package httpclient carries the service's outbound HTTP conventions: JSON
// bodies, optional bearer auth, and a per-client timeout.
package httpclient

import (
	"context"
	"io"
	"net/http"
	"time"
)

type Client struct {
	httpClient *http.Client
	bearer     string
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewClientWithBearer returns a client that attaches the token as a Bearer
// Authorization header on every request. An empty token means no header.
func NewClientWithBearer(timeout time.Duration, token string) *Client {
	c := NewClient(timeout)
	c.bearer = token
	return c
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	c.applyAuth(req)
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.Do(req)
}

// PostJSON issues a POST with a JSON content type and the client's auth.
func (c *Client) PostJSON(ctx context.Context, url string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.applyAuth(req)
	return c.httpClient.Do(req)
}

func (c *Client) applyAuth(req *http.Request) {
	if c.bearer != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
}
