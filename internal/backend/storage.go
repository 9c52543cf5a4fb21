package backend

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Upload stores an object under bucket/name and returns its public URL.
// Buckets used by the app are public-read, so the URL can go straight into
// a row and render without a token.
func (c *Client) Upload(ctx context.Context, token, bucket, name, contentType string, data []byte) (string, error) {
	path := fmt.Sprintf("/storage/v1/object/%s/%s", url.PathEscape(bucket), url.PathEscape(name))
	header := http.Header{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header = header
	req.Header.Set("apikey", c.APIKey)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("backend unavailable: %w", err)
	}
	defer resp.Body.Close()

	if err := statusError(resp, "upload "+bucket+"/"+name); err != nil {
		return "", err
	}
	return c.PublicURL(bucket, name), nil
}

// PublicURL derives the unauthenticated download URL of an object.
func (c *Client) PublicURL(bucket, name string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.BaseURL, url.PathEscape(bucket), url.PathEscape(name))
}
