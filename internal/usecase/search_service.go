package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/saintathena/backend/internal/domain"
	"github.com/saintathena/backend/internal/logger"
)

// Orchestrator defaults
const (
	defaultMaxQueryLength   = 2000
	defaultAnalyticsTimeout = 5 * time.Second
	anonymousClient         = "anonymous"
	interactionTypeSearch   = "search"
)

// SearchServiceConfig holds configuration for the search service
type SearchServiceConfig struct {
	Defaults          domain.SearchOptions
	ListItemLimit     int
	MaxQueryLength    int
	AnalyticsTimeout  time.Duration
	ParallelThreshold int
	Workers           int
	Logger            *log.Logger
}

// SearchService is the request boundary: validate -> rate limit -> cache -> catalog -> rank -> cache.
type SearchService struct {
	catalog    domain.CatalogSource
	cache      domain.ResultCache
	limiter    domain.RateLimiter
	analytics  domain.AnalyticsSink
	normalizer *Normalizer
	ranker     *Ranker
	decomposer *ListDecomposer
	suggester  *Suggester
	config     SearchServiceConfig
	log        *log.Logger
	pending    sync.WaitGroup
}

// NewSearchService creates a new search service with dependencies
func NewSearchService(
	catalog domain.CatalogSource,
	cache domain.ResultCache,
	limiter domain.RateLimiter,
	analytics domain.AnalyticsSink,
	config SearchServiceConfig,
) *SearchService {
	if config.Defaults.MinScore <= 0 && config.Defaults.Limit <= 0 {
		config.Defaults = domain.DefaultSearchOptions()
	}
	if config.Defaults.Limit <= 0 {
		config.Defaults.Limit = domain.DefaultLimit
	}
	if config.MaxQueryLength <= 0 {
		config.MaxQueryLength = defaultMaxQueryLength
	}
	if config.AnalyticsTimeout <= 0 {
		config.AnalyticsTimeout = defaultAnalyticsTimeout
	}
	l := config.Logger
	if l == nil {
		l = logger.New("search")
	}

	normalizer := NewNormalizer(nil)
	ranker := NewRanker(normalizer, NewMatcher(), RankerConfig{
		ParallelThreshold: config.ParallelThreshold,
		Workers:           config.Workers,
	})

	return &SearchService{
		catalog:    catalog,
		cache:      cache,
		limiter:    limiter,
		analytics:  analytics,
		normalizer: normalizer,
		ranker:     ranker,
		decomposer: NewListDecomposer(normalizer, ranker, config.ListItemLimit),
		suggester:  NewSuggester(normalizer, 0),
		config:     config,
		log:        l,
	}
}

// Search runs one request through the pipeline.
// Validation failures never reach the rate limiter or the cache.
func (s *SearchService) Search(ctx context.Context, request *domain.SearchRequest) (*domain.SearchResponse, error) {
	query, mode, opts, err := s.validate(request)
	if err != nil {
		return nil, err
	}

	clientID := request.ClientID
	if clientID == "" {
		clientID = anonymousClient
	}
	if decision := s.limiter.Check(clientID); !decision.Allowed {
		s.log.Warn("rate limit exceeded", "client", clientID, "resetAt", decision.ResetAt)
		return nil, &domain.RateLimitError{Decision: decision}
	}

	cacheKey := CacheKey(mode, query, opts)
	if cached, ok := s.getFromCache(ctx, cacheKey); ok {
		s.log.Debug("cache hit", "query", query, "mode", mode)
		cached.Cached = true
		return cached, nil
	}

	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		s.log.Error("catalog fetch failed", "err", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	var resp *domain.SearchResponse
	if mode == domain.ModeList {
		list := s.decomposer.SearchList(products, query)
		resp = &domain.SearchResponse{
			Mode:       domain.ModeList,
			Query:      query,
			Items:      list.Entries,
			TotalItems: list.Len(),
		}
	} else {
		matches := s.ranker.Search(products, query, opts)
		resp = &domain.SearchResponse{
			Mode:    domain.ModeSingle,
			Query:   query,
			Matches: matches,
			Count:   len(matches),
		}
	}

	// Cache the result; a failed write only costs a recomputation later
	if err := s.setInCache(ctx, cacheKey, resp); err != nil {
		s.log.Warn("cache write failed", "key", cacheKey, "err", err)
	}

	s.recordInteraction(request.UserID, query, resp.ResultCount())

	s.log.Debug("search complete", "query", query, "mode", mode, "results", resp.ResultCount(), "catalog", len(products))
	return resp, nil
}

// Suggest completes partial input from the current catalog. It is neither cached nor rate limited.
func (s *SearchService) Suggest(ctx context.Context, input string) (*domain.SuggestResponse, error) {
	input = strings.TrimSpace(input)
	if input == "" || utf8.RuneCountInString(input) > s.config.MaxQueryLength {
		return nil, fmt.Errorf("%w: q is required", domain.ErrInvalidRequest)
	}

	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		s.log.Error("catalog fetch failed", "err", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	resp := s.suggester.Suggest(products, input)
	return &resp, nil
}

// Wait blocks until in-flight analytics writes have finished; used on shutdown
func (s *SearchService) Wait() {
	s.pending.Wait()
}

func (s *SearchService) validate(request *domain.SearchRequest) (string, string, domain.SearchOptions, error) {
	if request == nil {
		return "", "", domain.SearchOptions{}, fmt.Errorf("%w: query is required and must be a string", domain.ErrInvalidRequest)
	}

	query := strings.TrimSpace(request.Query)
	if query == "" {
		return "", "", domain.SearchOptions{}, fmt.Errorf("%w: query is required and must be a string", domain.ErrInvalidRequest)
	}
	if utf8.RuneCountInString(query) > s.config.MaxQueryLength {
		return "", "", domain.SearchOptions{}, fmt.Errorf("%w: query exceeds %d characters", domain.ErrInvalidRequest, s.config.MaxQueryLength)
	}

	mode := strings.ToLower(strings.TrimSpace(request.Mode))
	switch mode {
	case "":
		mode = domain.ModeSingle
	case domain.ModeSingle, domain.ModeList:
	default:
		return "", "", domain.SearchOptions{}, fmt.Errorf("%w: mode must be %q or %q", domain.ErrInvalidRequest, domain.ModeSingle, domain.ModeList)
	}

	opts, err := request.Options.Resolve(s.config.Defaults)
	if err != nil {
		return "", "", domain.SearchOptions{}, err
	}
	return query, mode, opts, nil
}

// CacheKey builds the cache key from the mode, the trimmed query and the resolved options.
// Options are written in a fixed field order so equal option sets always produce equal keys.
// List mode ranks with fixed options, so its key is the mode and query alone.
// Format: "{mode}:{query}:includeOutOfStock={bool};limit={n};minScore={f}" or "list:{query}"
func CacheKey(mode, query string, opts domain.SearchOptions) string {
	if mode == domain.ModeList {
		return mode + ":" + query
	}
	return fmt.Sprintf("%s:%s:includeOutOfStock=%t;limit=%d;minScore=%s",
		mode, query, opts.IncludeOutOfStock, opts.Limit, strconv.FormatFloat(opts.MinScore, 'f', -1, 64))
}

// getFromCache retrieves and decodes a cached response
func (s *SearchService) getFromCache(ctx context.Context, key string) (*domain.SearchResponse, bool) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	resp, err := decodeResponse(data)
	if err != nil {
		s.log.Warn("discarding undecodable cache entry", "key", key, "err", err)
		return nil, false
	}
	return resp, true
}

// setInCache stores an encoded snapshot of the response
func (s *SearchService) setInCache(ctx context.Context, key string, resp *domain.SearchResponse) error {
	data, err := encodeResponse(resp)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data)
}

// recordInteraction writes the analytics record in the background. It holds no locks,
// uses its own deadline and never reports back to the caller.
func (s *SearchService) recordInteraction(userID, query string, found int) {
	if s.analytics == nil {
		return
	}

	interaction := domain.Interaction{
		UserID:        userID,
		Type:          interactionTypeSearch,
		QueryText:     query,
		ProductsFound: found,
		CreatedAt:     time.Now().UTC(),
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("analytics sink panicked", "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.config.AnalyticsTimeout)
		defer cancel()

		if err := s.analytics.Record(ctx, interaction); err != nil {
			s.log.Warn("analytics record failed", "err", err)
		}
	}()
}
