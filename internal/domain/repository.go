package domain

import (
	"context"
	"time"
)

// CatalogSource supplies the full product list for a request, including out-of-stock products
type CatalogSource interface {
	ListProducts(ctx context.Context) ([]Product, error)
}

// AnalyticsSink accepts fire-and-forget interaction records
type AnalyticsSink interface {
	Record(ctx context.Context, interaction Interaction) error
}

// ResultCache stores encoded response payloads for a fixed TTL
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// RateLimiter gates how often a client may invoke the search pipeline
type RateLimiter interface {
	Check(clientID string) RateDecision
}

// Clock returns the current time; tests substitute a fake
type Clock func() time.Time
