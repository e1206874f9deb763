// Package sentry provides functionality for interacting with the Sentry REST API.
package sentry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/danielolaszy/sentry-relay/internal/logging"
	"github.com/danielolaszy/sentry-relay/internal/version"
	"github.com/danielolaszy/sentry-relay/pkg/models"
	"golang.org/x/oauth2"
)

// maxBodySize caps how much of an upstream response is read.
const maxBodySize = 10 << 20

var (
	// ErrUnauthorized is returned when Sentry rejects the auth token.
	ErrUnauthorized = errors.New("sentry rejected the auth token")
	// ErrUpstream is returned for every other failed upstream request.
	ErrUpstream = errors.New("sentry request failed")
)

// Client encapsulates access to the Sentry API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient sets the client whose transport carries upstream requests.
// Its Timeout is ignored in favour of WithTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each upstream request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient creates a client for the API rooted at baseURL, for example
// https://sentry.io/api/0/.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid sentry api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid sentry api url: %q is not absolute", baseURL)
	}
	if u.Path == "" || u.Path[len(u.Path)-1] != '/' {
		u.Path += "/"
	}

	c := &Client{
		baseURL:    u,
		httpClient: http.DefaultClient,
		timeout:    10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// GetIssue fetches issues/{id}/ authenticated with token as a bearer token.
// A 401 response yields ErrUnauthorized; every other failure yields ErrUpstream.
func (c *Client) GetIssue(ctx context.Context, id, token string) (*models.SentryIssue, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrUnauthorized)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL.ResolveReference(&url.URL{Path: "issues/" + url.PathEscape(id) + "/"})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	logging.Debug("fetching sentry issue",
		"issue_id", id,
		"url", endpoint.String(),
		"token", logging.MaskSensitive(token))

	resp, err := c.authorized(ctx, token).Do(req)
	if err != nil {
		logging.Error("sentry request failed", "issue_id", id, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrUpstream, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		logging.Warn("sentry rejected auth token", "issue_id", id, "status_code", resp.StatusCode)
		return nil, ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		logging.Error("unexpected sentry response", "issue_id", id, "status_code", resp.StatusCode)
		return nil, fmt.Errorf("%w: %s %s returned %s", ErrUpstream, req.Method, endpoint.String(), resp.Status)
	}

	var issue models.SentryIssue
	if err := json.Unmarshal(body, &issue); err != nil {
		return nil, fmt.Errorf("%w: decoding issue %s: %w", ErrUpstream, id, err)
	}
	if issue.ID == "" {
		return nil, fmt.Errorf("%w: issue %s response has no id", ErrUpstream, id)
	}

	logging.Debug("fetched sentry issue", "issue_id", issue.ID, "status", issue.Status, "count", int64(issue.Count))
	return &issue, nil
}

// authorized wraps the configured transport with a static bearer token.
func (c *Client) authorized(ctx context.Context, token string) *http.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient), ts)
}
