package domain

import "errors"

// Error taxonomy per spec.md §7. Only ErrBadRequest and ErrInternal are
// ever allowed to reach the transport boundary; every other sentinel is
// absorbed at the client or cache boundary into a fallback value.
var (
	// ErrBadRequest marks an invalid query. Never retried, surfaced as-is.
	ErrBadRequest = errors.New("bad request")

	// ErrTimeout marks an upstream deadline elapsed.
	ErrTimeout = errors.New("upstream timeout")

	// ErrUpstream marks a non-2xx response or parse failure from a provider.
	ErrUpstream = errors.New("upstream error")

	// ErrFallbackMock is a diagnostic marker for a value that came from a
	// deterministic mock rather than a live provider. The CacheLayer
	// caches a value returned with it, unlike ErrTimeout/ErrUpstream. The
	// upstream clients here flag mock results with their FromMock field
	// and do not return this error.
	ErrFallbackMock = errors.New("fallback mock payload")

	// ErrUnavailable marks that no provider produced data and mocks are
	// disabled by configuration.
	ErrUnavailable = errors.New("no data available")

	// ErrInternal marks a programmer error or invariant violation.
	ErrInternal = errors.New("internal error")
)
