// Package upstream fetches site scores and market metrics from the external
// scoring service.
package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/sitepicker/internal/model"
)

// Snapshot is the scoring service's current view of one site. Either part
// may be nil when the service has not produced it yet.
type Snapshot struct {
	Scores  *model.ScoreRow        `json:"scores"`
	Metrics *model.UpstreamMetrics `json:"metrics"`
}

// Client fetches site snapshots by street address.
type Client interface {
	// FetchSite returns the snapshot for address, or nil when the service
	// does not know the site.
	FetchSite(ctx context.Context, address string) (*Snapshot, error)
}

// Option configures the client.
type Option func(*client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithAPIKey sends key as a bearer token on every request.
func WithAPIKey(key string) Option {
	return func(c *client) {
		c.apiKey = key
	}
}

// WithRateLimit sets the requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithMaxAttempts sets the total number of tries for transient failures.
func WithMaxAttempts(n int) Option {
	return func(c *client) {
		if n > 0 {
			c.backoff.maxAttempts = n
		}
	}
}

// WithBackoff overrides the initial and maximum retry delays.
func WithBackoff(initial, maxDelay time.Duration) Option {
	return func(c *client) {
		c.backoff.initial = initial
		c.backoff.max = maxDelay
	}
}

// WithCircuitBreaker opens the circuit after threshold consecutive failed
// fetches and probes again after cooldown. A threshold of 0 disables it.
func WithCircuitBreaker(threshold int, cooldown time.Duration) Option {
	return func(c *client) {
		if threshold <= 0 {
			c.breaker = nil
			return
		}
		c.breaker = newBreaker(threshold, cooldown)
	}
}

type client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	backoff    backoff
	breaker    *breaker
}

// NewClient creates a Client for the service rooted at baseURL.
func NewClient(baseURL string, opts ...Option) Client {
	c := &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(5, 5),
		backoff:    defaultBackoff(),
		breaker:    newBreaker(5, 30*time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) FetchSite(ctx context.Context, address string) (*Snapshot, error) {
	if strings.TrimSpace(address) == "" {
		return nil, eris.New("upstream: address is required")
	}
	if c.breaker == nil {
		return c.fetch(ctx, address)
	}
	if err := c.breaker.allow(); err != nil {
		return nil, err
	}
	snap, err := c.fetch(ctx, address)
	if ctx.Err() != nil {
		c.breaker.release()
	} else {
		c.breaker.record(err)
	}
	return snap, err
}

func (c *client) fetch(ctx context.Context, address string) (*Snapshot, error) {
	return do(ctx, c.backoff, address, func(ctx context.Context) (*Snapshot, error) {
		return c.fetchOnce(ctx, address)
	})
}

func (c *client) fetchOnce(ctx context.Context, address string) (*Snapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "upstream: rate limit")
	}

	reqURL := c.baseURL + "/v1/sites?" + url.Values{"address": {address}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "upstream: build request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "upstream: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case transientStatus(resp.StatusCode):
		return nil, &TransientError{
			Err:        eris.Errorf("upstream: service returned status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	case resp.StatusCode != http.StatusOK:
		return nil, eris.Errorf("upstream: service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "upstream: read body")
	}

	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, eris.Wrap(err, "upstream: parse response")
	}
	return &snap, nil
}
