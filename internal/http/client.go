package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// StatusError is returned when the service answers with a non-success code.
type StatusError struct {
	Code   int
	Status string
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (%s)", e.Code, e.Status, e.URL)
}

// NotFound reports whether the service answered 404.
func (e *StatusError) NotFound() bool {
	return e.Code == http.StatusNotFound
}

// Client wraps HTTP operations against the track service.
//
// Client provides:
//   - Base URL resolution for API paths
//   - Bearer token and User-Agent headers
//   - JSON decoding of API responses
//   - Resumable audio streams delivered as stream events
//
// Example usage:
//
//	client := NewClient("https://api.example.com", WithToken(token))
//
//	var track dto.JSONTrack
//	err := client.GetJSON(ctx, "/v1/tracks/4uLU6h", &track)
//
//	events, err := client.Stream(ctx, "/v1/tracks/4uLU6h/audio")
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	userAgent  string

	maxRetries int
	cooldown   func(attempt int) time.Duration
	wait       func(ctx context.Context, d time.Duration) error
	chunkSize  int
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent to the service.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry sets how many times an interrupted stream is resumed and how
// long to wait before each attempt (1-based).
func WithRetry(maxRetries int, cooldown func(attempt int) time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.cooldown = cooldown
	}
}

// WithChunkSize sets the read size used for streams.
func WithChunkSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// NewClient creates a new HTTP client for the service at baseURL.
//
// The client is configured with:
//   - 60 second response header timeout (no overall timeout, streams are long)
//   - "trackdl" User-Agent header
//   - 7 stream retries with a 0.2s * 4^(attempt-1) cooldown
func NewClient(baseURL string, opts ...Option) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = 60 * time.Second

	c := &Client{
		httpClient: &http.Client{Transport: transport},
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  "trackdl",
		maxRetries: 7,
		cooldown: func(attempt int) time.Duration {
			wait := 200 * time.Millisecond
			for i := 1; i < attempt; i++ {
				wait *= 4
			}
			return wait
		},
		wait:      sleep,
		chunkSize: 64 * 1024,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL resolves an API path against the base URL. Absolute URLs are
// returned unchanged.
func (c *Client) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 200 OK (*StatusError)
//   - Reading the body fails
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, c.URL(url), 0)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// GetJSON performs a GET request and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, path string, v any) error {
	body, err := c.Get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// DownloadBytes downloads a file and returns the bytes in memory.
//
// Use this for small files like cover art images. Audio goes through
// Stream.
//
// Example:
//
//	imageData, err := client.DownloadBytes(ctx, meta.Album.CoverURL)
func (c *Client) DownloadBytes(ctx context.Context, url string) ([]byte, error) {
	return c.Get(ctx, url)
}

// do sends a GET, asking for bytes from offset onwards when offset > 0.
// A success response is returned with its body open.
func (c *Client) do(ctx context.Context, url string, offset int64) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" && strings.HasPrefix(url, c.baseURL) {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status, URL: url}
	}
	return resp, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
