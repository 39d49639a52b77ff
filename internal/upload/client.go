// Package upload sends finished images to the remote image host.
//
// The host speaks the imgbb API: a form-encoded POST with "key" and "image"
// (base64) fields, answered by JSON carrying a success flag and the public
// URL of the stored image.
package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ironsheep/photoedit-mcp/internal/editerr"
)

// DefaultEndpoint is the imgbb upload endpoint.
const DefaultEndpoint = "https://api.imgbb.com/1/upload"

// Result is the outcome of an upload.
type Result struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

// Uploader stores base64 image data on the remote host.
type Uploader interface {
	Upload(ctx context.Context, base64Data []byte) (Result, error)
}

// Client is an Uploader for imgbb-compatible hosts.
type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithLogger sets the client's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for endpoint. An empty endpoint uses
// DefaultEndpoint. The HTTP client has no timeout; callers bound uploads
// through the context.
func NewClient(endpoint, apiKey string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{},
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// response is the subset of the imgbb reply we read.
type response struct {
	Success bool `json:"success"`
	Status  int  `json:"status"`
	Data    struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload posts the image once. There are no retries. Transport failures,
// non-2xx statuses and replies without success are network errors.
func (c *Client) Upload(ctx context.Context, base64Data []byte) (Result, error) {
	if len(base64Data) == 0 {
		return Result{}, editerr.Validationf("upload", "empty image data")
	}

	form := url.Values{}
	form.Set("key", c.apiKey)
	form.Set("image", string(base64Data))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, editerr.Network("upload", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, editerr.Network("upload", fmt.Errorf("HTTP POST %s: %w", c.endpoint, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, editerr.Network("upload", fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return Result{}, editerr.Network("upload", fmt.Errorf("decode response: %w", err))
	}
	if !r.Success {
		msg := r.Error.Message
		if msg == "" {
			msg = "host reported failure"
		}
		return Result{Success: false}, editerr.Network("upload", errors.New(msg))
	}
	if r.Data.URL == "" {
		return Result{}, editerr.Network("upload", errors.New("reply has no image url"))
	}

	c.logger.Info("image uploaded", "url", r.Data.URL, "size_bytes", len(base64Data))
	return Result{Success: true, URL: r.Data.URL}, nil
}
