// Package resilience wraps an HTTP doer with retry/backoff and a
// circuit breaker, the shape the pack's provider clients construct
// their transport around (ClientConfig{Name, Timeout, MaxRetries,
// InitialInterval, MaxInterval}).
package resilience

import (
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

// ClientConfig configures a resilient HTTP client for one named
// upstream provider.
type ClientConfig struct {
	Name            string
	Timeout         time.Duration
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Client is an http.Client-shaped HTTP doer that retries transient
// failures with exponential backoff and trips a circuit breaker after
// repeated failures so a degraded upstream stops being hammered.
type Client struct {
	inner   *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	retry   ClientConfig
}

// NewClient builds a resilient client. A zero-valued MaxRetries
// disables retry (single attempt, breaker-protected only).
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 5 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("provider", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	}

	return &Client{
		inner:   &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker[*http.Response](settings),
		retry:   cfg,
	}
}

// errRetryableStatus marks a 5xx response so backoff.Retry retries it;
// it never escapes Do, which returns the last response instead.
var errRetryableStatus = errors.New("retryable upstream status")

// Do executes req through the breaker, retrying transient failures
// (network errors and 5xx responses) with exponential backoff up to
// MaxRetries retries (MaxRetries+1 attempts in all). A breaker trip
// short-circuits immediately.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retry.InitialInterval
	bo.MaxInterval = c.retry.MaxInterval
	boWithLimit := backoff.WithMaxRetries(bo, c.retry.MaxRetries)

	var resp *http.Response
	op := func() error {
		r, err := c.breaker.Execute(func() (*http.Response, error) {
			return c.inner.Do(req)
		})
		if err != nil {
			return err
		}
		if r.StatusCode >= 500 {
			resp = r
			return errRetryableStatus
		}
		resp = r
		return nil
	}

	err := backoff.Retry(op, backoff.WithContext(boWithLimit, req.Context()))
	if err != nil && err != errRetryableStatus {
		return nil, err
	}
	return resp, nil
}
