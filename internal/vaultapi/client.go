// Package vaultapi provides a secret fetcher backed by a Vault-style
// HTTP KV v2 endpoint. It satisfies the stash.SecretFetcher capability
// and performs one synchronous GET per fetch; nothing is cached or
// retried.
package vaultapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultRequestTimeout = 10 * time.Second

// Option configures the behaviour of New.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRequestTimeout bounds each fetch, including any limiter wait.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRateLimit caps outgoing fetches with a token bucket.
func WithRateLimit(ratePerSecond float64, burst int) Option {
	return func(c *Client) {
		if ratePerSecond <= 0 {
			ratePerSecond = 1
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(ratePerSecond), burst)
	}
}

// WithLogger attaches a logger for fetch diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client fetches secrets over HTTP from a KV v2 mount.
type Client struct {
	addr       string
	token      string
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// New creates a client for the Vault server at addr, authenticating
// with token.
func New(addr, token string, opts ...Option) *Client {
	c := &Client{
		addr:       strings.TrimRight(addr, "/"),
		token:      token,
		httpClient: &http.Client{},
		timeout:    defaultRequestTimeout,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// kvResponse mirrors the KV v2 read payload.
type kvResponse struct {
	Data struct {
		Data map[string]any `json:"data"`
	} `json:"data"`
}

// FetchSecret reads the secret at path and returns the value stored
// under key. A missing path (HTTP 404) and a missing key within the
// payload are reported as distinct errors.
func (c *Client) FetchSecret(path, key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("wait for fetch slot: %w", err)
		}
	}

	url := c.addr + "/v1/" + strings.Trim(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build secret request: %w", err)
	}
	req.Header.Set("X-Vault-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch secret %q: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("secret path %q not found", path)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch secret %q: unexpected status %d", path, resp.StatusCode)
	}

	var payload kvResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode secret payload for %q: %w", path, err)
	}

	raw, ok := payload.Data.Data[key]
	if !ok {
		return "", fmt.Errorf("secret %q has no key %q", path, key)
	}

	c.logger.Debug("fetched secret",
		zap.String("path", path),
		zap.String("key", key),
	)

	return stringify(raw), nil
}

// stringify renders non-string secret values (numbers, booleans) the
// way the KV API returned them.
func stringify(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}
