// Package fetch downloads listing feeds over HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrTooLarge is returned when a response body exceeds Config.MaxBodyBytes.
var ErrTooLarge = errors.New("response body too large")

// Config configures the Client. Zero values get defaults:
//   - Timeout:      60s
//   - MaxBodyBytes: 64 MiB
//   - UserAgent:    "property-sync/1.0"
type Config struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	UserAgent    string

	// Transport replaces the default RoundTripper, mainly for tests.
	Transport http.RoundTripper
}

// Client performs a single GET per call. It does not retry.
type Client struct {
	httpClient *http.Client
	maxBody    int64
	userAgent  string
}

// NewClient constructs a Client from cfg.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 64 << 20
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "property-sync/1.0"
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout, Transport: cfg.Transport},
		maxBody:    cfg.MaxBodyBytes,
		userAgent:  cfg.UserAgent,
	}
}

// Fetch returns the body of GET url. Non-2xx responses are errors.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/xml, text/xml, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: reading body: %w", url, err)
	}
	if int64(len(data)) > c.maxBody {
		return nil, fmt.Errorf("fetch %s: %w (limit %d bytes)", url, ErrTooLarge, c.maxBody)
	}
	return data, nil
}
