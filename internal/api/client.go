package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// PathPrefix is prepended to every endpoint path, and is part of the signed path.
const PathPrefix = "/trade-api/v2"

// Environment selects the venue deployment.
type Environment string

const (
	EnvDemo Environment = "demo"
	EnvProd Environment = "prod"
)

// Base URLs for each environment.
const (
	DemoBaseURL = "https://demo-api.kalshi.co"
	ProdBaseURL = "https://api.elections.kalshi.com"
)

// ParseEnvironment accepts "demo" or "prod" (any case).
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(strings.ToLower(strings.TrimSpace(s))) {
	case EnvDemo:
		return EnvDemo, nil
	case EnvProd:
		return EnvProd, nil
	}
	return "", fmt.Errorf("unknown environment %q (want demo or prod)", s)
}

// BaseURL returns the scheme and host for the environment.
func (e Environment) BaseURL() string {
	if e == EnvProd {
		return ProdBaseURL
	}
	return DemoBaseURL
}

// Signer produces authentication headers for a request.
// Satisfied by *auth.Credentials.
type Signer interface {
	SignRequest(method, path string, now time.Time) (map[string]string, error)
}

// ObserveFunc receives the outcome of every round trip. status is 0 when
// no HTTP response was received.
type ObserveFunc func(method string, status int, elapsed time.Duration)

// Client provides access to the Kalshi REST API.
type Client struct {
	baseURL    string
	signer     Signer
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
	observe    ObserveFunc
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new REST API client. A nil signer sends unauthenticated
// requests, which the venue accepts for public market data only.
func NewClient(baseURL string, signer Signer, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		signer:  signer,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: slog.Default(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithClock overrides the time source used for request timestamps.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// WithObserver installs a hook called after every round trip.
func WithObserver(fn ObserveFunc) ClientOption {
	return func(c *Client) {
		c.observe = fn
	}
}
