// Package client is a typed client for the gasdesk HTTP API. Calls that fail
// with a retryable error (503 or a network failure) are retried with
// exponential backoff; every other failure is returned immediately.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/gasdesk/internal/server"
)

// Config holds common client configuration
type Config struct {
	ServerURL string
	Timeout   time.Duration

	// Token is the bearer session token sent with every call.
	Token string

	// MaxTries bounds attempts per call, including the first.
	MaxTries uint

	// RetryInterval is the first backoff interval.
	RetryInterval time.Duration
}

// DefaultConfig returns a default client configuration
func DefaultConfig() Config {
	return Config{
		ServerURL:     "http://localhost:8080",
		Timeout:       30 * time.Second,
		MaxTries:      5,
		RetryInterval: 200 * time.Millisecond,
	}
}

// Client calls the gasdesk API.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
}

// New creates a client for cfg. Zero fields take their defaults.
func New(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.ServerURL == "" {
		cfg.ServerURL = def.ServerURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxTries == 0 {
		cfg.MaxTries = def.MaxTries
	}
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = def.RetryInterval
	}

	return &Client{
		cfg:        cfg,
		baseURL:    strings.TrimSuffix(cfg.ServerURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// WithToken returns a copy of c that authenticates as token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.cfg.Token = token
	return &clone
}

// RegisterIndividual creates an individual account and returns its session.
func (c *Client) RegisterIndividual(ctx context.Context, reg server.IndividualRegistration) (*server.SessionResponse, error) {
	var resp server.SessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/individuals", reg, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RegisterOrganization creates an organization account and returns its session.
func (c *Client) RegisterOrganization(ctx context.Context, reg server.OrganizationRegistration) (*server.SessionResponse, error) {
	var resp server.SessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/organizations", reg, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login starts a session.
func (c *Client) Login(ctx context.Context, req server.LoginRequest) (*server.SessionResponse, error) {
	var resp server.SessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/sessions", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Profile returns the session's account.
func (c *Client) Profile(ctx context.Context) (*server.Profile, error) {
	var resp server.Profile
	if err := c.do(ctx, http.MethodGet, "/api/v1/profile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Outlets lists outlets whose name contains query, ignoring case. An empty
// query lists every outlet.
func (c *Client) Outlets(ctx context.Context, query string) ([]server.Outlet, error) {
	path := "/api/v1/outlets"
	if query != "" {
		path += "?" + url.Values{"q": {query}}.Encode()
	}

	var resp server.OutletList
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Outlets, nil
}

// Submit sends a pickup request. Resubmitting replaces the previous request,
// so retrying is safe.
func (c *Client) Submit(ctx context.Context, form server.RequestForm) (*server.Request, error) {
	var resp server.Request
	if err := c.do(ctx, http.MethodPost, "/api/v1/requests", form, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CurrentRequest returns the session's request, or nil when there is none.
func (c *Client) CurrentRequest(ctx context.Context) (*server.Request, error) {
	var resp server.CurrentRequest
	if err := c.do(ctx, http.MethodGet, "/api/v1/requests/current", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Request, nil
}

// ActiveToken returns the organization's active token. Token is nil when
// none has been issued.
func (c *Client) ActiveToken(ctx context.Context) (*server.ActiveToken, error) {
	var resp server.ActiveToken
	if err := c.do(ctx, http.MethodGet, "/api/v1/tokens/active", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CompletedTokens returns the completed order history, newest first.
func (c *Client) CompletedTokens(ctx context.Context) ([]*server.Token, error) {
	var resp server.TokenList
	if err := c.do(ctx, http.MethodGet, "/api/v1/tokens/completed", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tokens, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.RetryInterval

	log := zerolog.Ctx(ctx)

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, c.attempt(ctx, method, path, payload, out)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.cfg.MaxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Debug().Err(err).Str("path", path).Dur("next", next).Msg("Retrying request")
		}),
	)
	return err
}

// attempt makes one call. Errors that must not be retried are wrapped with
// backoff.Permanent.
func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := decodeError(resp)
		if apiErr.Retryable || resp.StatusCode == http.StatusServiceUnavailable {
			return apiErr
		}
		return backoff.Permanent(apiErr)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body server.ErrorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &body); err != nil || body.Error.Code == "" {
		apiErr.Code = server.CodeInternal
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	apiErr.ErrorDetail = body.Error
	return apiErr
}

// IsRetryable reports whether err came from a response the server marked
// retryable.
func IsRetryable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Retryable
}
