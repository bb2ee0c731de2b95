package domain

import "errors"

var (
	// ErrInvalidRequest is returned when the query is missing, too long, or the options are malformed
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRateLimited is returned when a client exceeds its request window
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCatalogUnavailable is returned when the catalog source cannot supply products
	ErrCatalogUnavailable = errors.New("catalog source unavailable")

	// ErrCacheMiss is returned when data is not found in cache or has expired
	ErrCacheMiss = errors.New("cache miss")

	// ErrAnalyticsFailure is returned by analytics sinks; callers only log it
	ErrAnalyticsFailure = errors.New("analytics record failed")
)

// RateLimitError carries the limiter decision so callers can tell clients when to retry
type RateLimitError struct {
	Decision RateDecision
}

func (e *RateLimitError) Error() string {
	return ErrRateLimited.Error()
}

// Unwrap lets errors.Is(err, ErrRateLimited) match
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}
