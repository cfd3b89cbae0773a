// Package apiclient implements the versioned HTTP/JSON protocol against the
// Narada backend: remote dispatch submission and polling, extension action
// relay, file uploads, cloud browser sessions and the SDK compatibility
// check. It owns no browser resources; it only talks to the API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/NaradaAI/narada-go/api/schemas"
	"github.com/NaradaAI/narada-go/internal/network"
)

const defaultPollInterval = 3 * time.Second

// Options configures a Client.
type Options struct {
	// BaseURL is the versioned API root, e.g. https://api.narada.ai/fast/v2.
	BaseURL string
	// APIKey is sent as the x-api-key header. Ignored when AuthHeaders is set.
	APIKey string
	// AuthHeaders overrides the default API-key header scheme entirely.
	AuthHeaders map[string]string
	// HTTPClient overrides the default tuned transport (tests).
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client is the HTTP client for the Narada API. It is safe for concurrent
// use; independent windows share one transport pool.
type Client struct {
	baseURL      string
	authHeaders  map[string]string
	httpc        *http.Client
	logger       *zap.Logger
	pollInterval time.Duration
}

// New creates a Client from the options.
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	headers := opts.AuthHeaders
	if headers == nil {
		headers = map[string]string{"x-api-key": opts.APIKey}
	}

	httpc := opts.HTTPClient
	if httpc == nil {
		cfg := network.NewDefaultClientConfig()
		cfg.Logger = logger
		// Extension actions and cloud session creation block server-side
		// until they complete; deadlines come from the request context.
		cfg.RequestTimeout = 0
		cfg.ResponseHeaderTimeout = 0
		httpc = network.NewClient(cfg)
	}

	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		authHeaders:  headers,
		httpc:        httpc,
		logger:       logger.Named("apiclient"),
		pollInterval: defaultPollInterval,
	}
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.baseURL }

// SetPollInterval overrides the dispatch polling cadence. Used by tests; the
// protocol default is 3 seconds.
func (c *Client) SetPollInterval(d time.Duration) { c.pollInterval = d }

// doJSON performs one authenticated JSON round trip. A non-2xx answer becomes
// a *schemas.HTTPStatusError carrying the response body. The raw response is
// returned alongside so callers can special-case status codes.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s %s request: %w", method, path, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, err
	}
	for k, v := range c.authHeaders {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, fmt.Errorf("reading %s %s response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, &schemas.HTTPStatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        url,
			Body:       string(raw),
		}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp, fmt.Errorf("decoding %s %s response: %w", method, path, err)
		}
	}
	return resp, nil
}
