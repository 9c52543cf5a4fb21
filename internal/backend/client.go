// Package backend is the HTTP client for the hosted forum backend. It covers
// the four surfaces the app needs: auth, the row-level data API, object
// storage and the realtime feed. Every request carries the project API key;
// user-scoped calls additionally carry the session's bearer token.
package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	internal_errors "github.com/floatdr/forum/internal/errors"
)

type Client struct {
	BaseURL     string
	RealtimeURL string
	APIKey      string
	HttpClient  *http.Client
}

func New(baseURL, realtimeURL, apiKey string) *Client {
	return &Client{
		BaseURL:     baseURL,
		RealtimeURL: realtimeURL,
		APIKey:      apiKey,
		HttpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// do is the single, unified helper for making backend requests. An empty
// token sends the API key alone, which the backend treats as anonymous.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, token string, header http.Header) (*http.Response, error) {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("apikey", c.APIKey)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend unavailable: %w", err)
	}
	return resp, nil
}

// statusError drains the response body and converts a non-2xx status into an
// ErrorWithStatusCode so handlers can pass the backend's verdict through.
func statusError(resp *http.Response, what string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := fmt.Sprintf("%s failed", what)
	if len(body) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, string(body))
	}
	return &internal_errors.ErrorWithStatusCode{Message: msg, StatusCode: resp.StatusCode}
}
