package upstream

import (
	"context"
	"net/http"
	"time"

	"github.com/airwatch/aqcore/internal/upstream/resilience"
)

// Client is the single capability interface every upstream provider
// implements (spec.md §9's "object-shape polymorphism" resolution: one
// interface, canonical records, no raw-payload leakage past this
// boundary).
type Client interface {
	// Name identifies the provider for logging and dataQuality bookkeeping.
	Name() string
	// Fetch returns live data, or the provider's deterministic mock if
	// live fetch fails and the provider's fallback policy is "mock".
	// Providers whose fallback policy is "null" return (Payload{}, err)
	// unchanged so the Canonicalizer can skip them.
	Fetch(ctx context.Context, q Query) (Payload, error)
	// TTL is the CacheLayer TTL for this provider's responses.
	TTL() time.Duration
}

// HTTPDoer abstracts request execution so a resilience.Client or a
// plain *http.Client can be substituted in tests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// httpConfig is the shared construction shape for every live client.
type httpConfig struct {
	name    string
	baseURL string
	timeout time.Duration
	ttl     time.Duration
	doer    HTTPDoer
}

func newHTTPDoer(name string, timeout time.Duration) HTTPDoer {
	return resilience.NewClient(resilience.ClientConfig{
		Name:            name,
		Timeout:         timeout,
		MaxRetries:      2,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	})
}

// fallbackPolicy distinguishes "mock on failure" providers from
// "skip on failure" providers per spec.md §4.2's defaults table.
type fallbackPolicy int

const (
	fallbackMock fallbackPolicy = iota
	fallbackNull
)
