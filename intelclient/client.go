// Package intelclient talks to a third-party URL threat-intelligence service.
// The lookup is advisory: it runs with a bounded timeout and an unavailable or
// failing service simply contributes no signal.
package intelclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/theopenlane/httpsling"
)

const defaultTimeout = 5 * time.Second

// Signal is the advisory verdict returned by the service.
type Signal struct {
	IsThreat          bool   `json:"isThreat"`
	ThreatType        string `json:"threatType,omitempty"`
	ThreatDescription string `json:"threatDescription,omitempty"`
}

// Client queries the threat-intel endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient supplies a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds a single lookup.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithAPIKey sets the bearer token sent with each lookup.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// NewClient creates a threat-intel client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		timeout:    defaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Lookup asks the service about one URL. Errors mean "no signal available",
// never "threat": the caller must treat any failure as an absent advisory.
func (c *Client) Lookup(ctx context.Context, rawURL string) (Signal, error) {
	if c.baseURL == "" {
		return Signal{}, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/v1/check?url=" + url.QueryEscape(rawURL)
	if c.apiKey != "" {
		endpoint += "&key=" + url.QueryEscape(c.apiKey)
	}

	requester := httpsling.MustNew(
		httpsling.URL(endpoint),
		httpsling.Method(http.MethodGet),
		httpsling.WithHTTPClient(c.httpClient),
	)

	var buf bytes.Buffer

	resp, _, err := requester.ReceiveTo(ctx, &buf)
	if err != nil {
		return Signal{}, fmt.Errorf("threat-intel lookup: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Signal{}, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var signal Signal
	if err := json.Unmarshal(buf.Bytes(), &signal); err != nil {
		return Signal{}, fmt.Errorf("decode threat-intel response: %w", err)
	}

	return signal, nil
}
