// Package accessclient is the caller-side helper other platform services use
// to query the authoritative role right after login, tolerating the short
// window where a freshly provisioned employee has not propagated yet.
package accessclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/replyhub/identity-api/internal/models"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

const (
	defaultAttempts = 3
	defaultBackoff  = 200 * time.Millisecond
)

// Result is a discriminated outcome: callers branch on Success instead of
// catching errors, and redirect to login only once retries are exhausted.
// A failed attempt never signs the caller out as a side effect.
type Result struct {
	Success     bool
	Role        models.Role
	WorkspaceID *string
	Err         error
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     zerolog.Logger
	attempts   uint64
	backoff    time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithBackoff overrides the fixed delay between attempts.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL, bearerToken string, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      bearerToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger.With().Str("component", "access_client").Logger(),
		attempts:   defaultAttempts,
		backoff:    defaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchRoleWithRetry queries /api/access/me up to three times with a fixed
// backoff. 401/403 and network errors are retried, since they can be
// propagation delay right after acceptance; 5xx is immediately terminal.
func (c *Client) FetchRoleWithRetry(ctx context.Context) Result {
	var grant struct {
		Role        models.Role `json:"role"`
		WorkspaceID *string     `json:"workspace_id"`
	}

	backoff := retry.WithMaxRetries(c.attempts-1, retry.NewConstant(c.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/access/me", nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn().Err(err).Msg("access lookup failed, will retry")
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			return json.NewDecoder(resp.Body).Decode(&grant)
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			c.logger.Warn().Int("status", resp.StatusCode).Msg("access not resolved yet, will retry")
			return retry.RetryableError(fmt.Errorf("access denied with status %d", resp.StatusCode))
		case resp.StatusCode >= 500:
			return fmt.Errorf("access service returned status %d", resp.StatusCode)
		default:
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
	})
	if err != nil {
		return Result{Err: err}
	}

	return Result{Success: true, Role: grant.Role, WorkspaceID: grant.WorkspaceID}
}
