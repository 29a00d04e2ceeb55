package providers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// Client is a rate-limited REST client shared by the concrete providers.
// It enforces a minimum spacing between consecutive calls and retries
// transient failures with exponential backoff. All waits go through the
// injected clock and observe context cancellation.
type Client struct {
	name       string
	baseURL    string
	apiKey     string
	http       *http.Client
	clock      clock.Clock
	maxRetries int
	retryBase  time.Duration
	minSpacing time.Duration
	logger     *zap.Logger

	mu       sync.Mutex
	lastCall time.Time
}

// NewClient creates a provider client
func NewClient(
	name, baseURL, apiKey string,
	timeout time.Duration,
	maxRetries int,
	retryBase, minSpacing time.Duration,
	clk clock.Clock,
	logger *zap.Logger,
) *Client {
	if clk == nil {
		clk = clock.New()
	}
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Client{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		http:       &http.Client{Timeout: timeout},
		clock:      clk,
		maxRetries: maxRetries,
		retryBase:  retryBase,
		minSpacing: minSpacing,
		logger:     logger,
	}
}

// GetJSON performs a GET against path, decoding the response into dest.
// Failures come back as *Error classified per the taxonomy.
func (c *Client) GetJSON(ctx context.Context, op, path string, params url.Values, dest interface{}) error {
	if err := c.waitSpacing(ctx); err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.retryBase * time.Duration(1<<uint(attempt))
			c.logger.Warn("Provider call failed, backing off",
				zap.String("provider", c.name),
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr),
			)
			if err := c.sleep(ctx, backoff); err != nil {
				return err
			}
		}

		err := c.doOnce(ctx, op, path, params, dest)
		if err == nil {
			return nil
		}
		lastErr = err
		if !Retryable(err) {
			return err
		}
	}

	return lastErr
}

func (c *Client) doOnce(ctx context.Context, op, path string, params url.Values, dest interface{}) error {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &Error{Kind: KindClientError, Provider: c.name, Op: op, Err: err}
	}
	req.Header.Set("Accept", "*/*")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		var netErr net.Error
		if ctx.Err() != nil {
			return &Error{Kind: KindTimeout, Provider: c.name, Op: op, Err: ctx.Err()}
		}
		if errors.As(err, &netErr) && netErr.Timeout() {
			return &Error{Kind: KindTimeout, Provider: c.name, Op: op, Err: err}
		}
		return &Error{Kind: KindServerError, Provider: c.name, Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body)
		return &Error{Kind: KindRateLimited, Provider: c.name, Op: op, Status: resp.StatusCode}
	case resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		return &Error{Kind: KindServerError, Provider: c.name, Op: op, Status: resp.StatusCode}
	case resp.StatusCode >= 400:
		io.Copy(io.Discard, resp.Body)
		return &Error{Kind: KindClientError, Provider: c.name, Op: op, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &Error{Kind: KindMissingData, Provider: c.name, Op: op, Err: err}
	}
	return nil
}

// waitSpacing reserves the next call slot and sleeps until it is due.
// Calls to one provider are serialized; there is a single monitoring
// loop, so the mutex only guards the timestamp, not the wait.
func (c *Client) waitSpacing(ctx context.Context) error {
	if c.minSpacing <= 0 {
		return nil
	}

	c.mu.Lock()
	now := c.clock.Now()
	var wait time.Duration
	if !c.lastCall.IsZero() {
		if elapsed := now.Sub(c.lastCall); elapsed < c.minSpacing {
			wait = c.minSpacing - elapsed
		}
	}
	c.lastCall = now.Add(wait)
	c.mu.Unlock()

	if wait > 0 {
		c.logger.Debug("Spacing provider call",
			zap.String("provider", c.name),
			zap.Duration("wait", wait),
		)
		return c.sleep(ctx, wait)
	}
	return nil
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	t := c.clock.Timer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
