package finnhub

import (
	"errors"
	"net/http"
	"strings"
)

const (
	baseURL = "https://finnhub.io/api/v1"

	// TokenHeader carries the API key. Finnhub also accepts ?token=, but a
	// header keeps the key out of logged URLs.
	TokenHeader = "X-Finnhub-Token"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=finnhub_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// FinnhubAPIClient is a client for the Finnhub REST API.
type FinnhubAPIClient struct {
	baseURL    string
	httpClient HTTPClient
	token      string
	// header is sent with every request, after the token header.
	header http.Header
}

// FinnhubAPIClientOption is a configuration option for the Finnhub API client.
type FinnhubAPIClientOption func(*FinnhubAPIClient)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) FinnhubAPIClientOption {
	return func(c *FinnhubAPIClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) FinnhubAPIClientOption {
	return func(c *FinnhubAPIClient) {
		c.httpClient = httpClient
	}
}

// WithToken replaces the API key, e.g. for a single call made on behalf
// of another account.
func WithToken(token string) FinnhubAPIClientOption {
	return func(c *FinnhubAPIClient) {
		c.token = strings.TrimSpace(token)
	}
}

// WithHeader adds headers to every request. The token header cannot be
// overridden this way; use WithToken.
func WithHeader(header http.Header) FinnhubAPIClientOption {
	return func(c *FinnhubAPIClient) {
		for key, values := range header {
			if http.CanonicalHeaderKey(key) == TokenHeader {
				continue
			}
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewFinnhubAPIClient creates a new Finnhub API client. An empty token
// yields a client that reports HasToken() == false.
func NewFinnhubAPIClient(token string, options ...FinnhubAPIClientOption) (*FinnhubAPIClient, error) {
	c := &FinnhubAPIClient{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		token:      strings.TrimSpace(token),
		header:     http.Header{},
	}
	for _, option := range options {
		option(c)
	}
	return c, nil
}

// HasToken reports whether requests will be authenticated.
func (c *FinnhubAPIClient) HasToken() bool { return c.token != "" }

// with returns a copy of c with per-call options applied.
func (c *FinnhubAPIClient) with(opts []FinnhubAPIClientOption) *FinnhubAPIClient {
	if len(opts) == 0 {
		return c
	}
	cp := *c
	cp.header = c.header.Clone()
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

func (c *FinnhubAPIClient) requestHeader() http.Header {
	h := c.header.Clone()
	h.Set("Accept", "application/json")
	if c.token != "" {
		h.Set(TokenHeader, c.token)
	}
	return h
}
