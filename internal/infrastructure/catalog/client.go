package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/saintathena/backend/internal/domain"
	"github.com/saintathena/backend/internal/logger"
	"golang.org/x/time/rate"
)

// errNonRetryable marks responses that retrying cannot fix
var errNonRetryable = errors.New("non-retryable catalog response")

// ClientConfig holds configuration for the REST catalog client
type ClientConfig struct {
	BaseURL           string
	APIKey            string
	Table             string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxRetries        int
}

// Client reads the product table from a PostgREST endpoint (e.g. Supabase).
// Retries and throttling live here, not in the search pipeline.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	table       string
	maxRetries  int
	rateLimiter *rate.Limiter
	debug       bool
	log         *log.Logger
}

// NewClient creates a new catalog API client
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	table := cfg.Table
	if table == "" {
		table = "products"
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 20
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 10
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		table:       table,
		maxRetries:  retries,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), burst),
		log:         logger.New("catalog"),
	}
}

// SetDebug enables per-attempt logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// ListProducts fetches every product row, sellable or not
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	params := url.Values{}
	params.Add("select", "*")
	params.Add("order", "id.asc")
	reqURL := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, url.PathEscape(c.table), params.Encode())

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		rows, err := c.fetch(ctx, reqURL)
		if err == nil {
			if c.debug {
				c.log.Debug("fetched products", "count", len(rows), "attempt", attempt)
			}
			return MapProducts(rows), nil
		}

		lastErr = err
		if errors.Is(err, errNonRetryable) || ctx.Err() != nil {
			break
		}

		c.log.Warn("catalog request failed", "attempt", attempt, "err", err)
		if attempt < c.maxRetries {
			if err := sleepContext(ctx, exponentialBackoff(attempt)); err != nil {
				return nil, err
			}
		}
	}

	c.log.Error("all catalog attempts failed", "table", c.table, "err", lastErr)
	return nil, lastErr
}

// fetch performs one GET and decodes the product rows
func (c *Client) fetch(ctx context.Context, reqURL string) ([]ProductRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", errNonRetryable, err)
	}
	req.Header.Set("User-Agent", "SaintAthena/1.0")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200))
	default:
		return nil, fmt.Errorf("%w: status %d: %s", errNonRetryable, resp.StatusCode, truncate(string(body), 200))
	}

	var rows []ProductRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", errNonRetryable, err)
	}
	return rows, nil
}

// exponentialBackoff returns 500ms, 1s, 2s, ... for attempts 1, 2, 3, ...
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
