package usecase

import (
	"fmt"
	"math"
	"runtime"
	"slices"
	"strings"

	"github.com/saintathena/backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

// defaultParallelThreshold is the catalog size from which scoring fans out across workers
const defaultParallelThreshold = 512

// lowStockThreshold triggers the "only N left" reason
const lowStockThreshold = 10

// RankerConfig holds configuration for the ranker
type RankerConfig struct {
	ParallelThreshold int
	Workers           int
}

// Ranker scores a catalog against one query and returns the ordered matches.
// It is pure: the same catalog, query and options always produce the same output.
type Ranker struct {
	normalizer        *Normalizer
	matcher           *Matcher
	parallelThreshold int
	workers           int
}

// NewRanker creates a ranker with the given configuration
func NewRanker(normalizer *Normalizer, matcher *Matcher, config RankerConfig) *Ranker {
	if normalizer == nil {
		normalizer = NewNormalizer(nil)
	}
	if matcher == nil {
		matcher = NewMatcher()
	}

	threshold := config.ParallelThreshold
	if threshold <= 0 {
		threshold = defaultParallelThreshold
	}

	workers := config.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Ranker{
		normalizer:        normalizer,
		matcher:           matcher,
		parallelThreshold: threshold,
		workers:           workers,
	}
}

// Search ranks the catalog for a free-text query. A leading quantity ("2 lbs salmon") is
// stripped, and each product keeps the better of its scores against the stripped and the full
// text, so a name that itself starts with a quantity ("Half Chicken") still matches exactly.
// Empty catalogs and queries without tokens return an empty result, never an error.
func (r *Ranker) Search(catalog []domain.Product, query string, opts domain.SearchOptions) []domain.MatchCandidate {
	return r.rank(catalog, r.queryVariants(ParseQuantity(query)), opts)
}

// queryVariants normalizes the stripped text first, then the full text when it differs
func (r *Ranker) queryVariants(item ParsedItem) []domain.NormalizedText {
	stripped := r.normalizer.Normalize(item.Query)
	full := r.normalizer.Normalize(item.Text)
	switch {
	case stripped.Empty():
		return []domain.NormalizedText{full}
	case full.Empty() || full.Text == stripped.Text:
		return []domain.NormalizedText{stripped}
	default:
		return []domain.NormalizedText{stripped, full}
	}
}

type scored struct {
	index int
	match Match
}

func (r *Ranker) rank(catalog []domain.Product, queries []domain.NormalizedText, opts domain.SearchOptions) []domain.MatchCandidate {
	results := []domain.MatchCandidate{}
	queries = slices.DeleteFunc(slices.Clone(queries), domain.NormalizedText.Empty)
	if len(catalog) == 0 || len(queries) == 0 {
		return results
	}
	if opts.Limit <= 0 {
		opts.Limit = domain.DefaultLimit
	}

	matches := r.scoreAll(catalog, queries, opts)

	kept := make([]scored, 0, len(matches))
	for i, m := range matches {
		if m.MatchedOn == nil || m.Score < opts.MinScore {
			continue
		}
		kept = append(kept, scored{index: i, match: m})
	}

	slices.SortFunc(kept, func(a, b scored) int {
		return compareCandidates(catalog[a.index], a.match.Score, catalog[b.index], b.match.Score)
	})

	if len(kept) > opts.Limit {
		kept = kept[:opts.Limit]
	}

	for _, k := range kept {
		p := catalog[k.index]
		results = append(results, domain.MatchCandidate{
			Product:   p,
			Score:     k.match.Score,
			MatchedOn: k.match.MatchedOn,
			Reason:    relevanceReason(p, k.match.MatchedOn),
		})
	}
	return results
}

// scoreAll scores every eligible product against each query variant and keeps the best;
// excluded products keep a zero Match.
// Large catalogs are split into contiguous chunks scored concurrently; each worker writes
// only its own slice range, so no synchronization is needed beyond the final Wait.
func (r *Ranker) scoreAll(catalog []domain.Product, queries []domain.NormalizedText, opts domain.SearchOptions) []Match {
	matches := make([]Match, len(catalog))

	scoreRange := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			p := catalog[i]
			if !opts.IncludeOutOfStock && !p.Sellable() {
				continue
			}
			pp := r.normalizer.Prepare(p)
			m := r.matcher.Score(queries[0], pp)
			for _, q := range queries[1:] {
				if alt := r.matcher.Score(q, pp); alt.Score > m.Score {
					m = alt
				}
			}
			m.Score = roundScore(m.Score)
			matches[i] = m
		}
	}

	if len(catalog) < r.parallelThreshold || r.workers <= 1 {
		scoreRange(0, len(catalog))
		return matches
	}

	var g errgroup.Group
	g.SetLimit(r.workers)
	chunk := (len(catalog) + r.workers - 1) / r.workers
	for lo := 0; lo < len(catalog); lo += chunk {
		hi := min(lo+chunk, len(catalog))
		g.Go(func() error {
			scoreRange(lo, hi)
			return nil
		})
	}
	_ = g.Wait()

	return matches
}

// compareCandidates orders by score desc, stock desc, name asc, then id asc
func compareCandidates(a domain.Product, aScore float64, b domain.Product, bScore float64) int {
	switch {
	case aScore > bScore:
		return -1
	case aScore < bScore:
		return 1
	case a.Stock > b.Stock:
		return -1
	case a.Stock < b.Stock:
		return 1
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func roundScore(s float64) float64 {
	return math.Round(s*100) / 100
}

// relevanceReason explains a match to the shopper
func relevanceReason(p domain.Product, matchedOn []string) string {
	var parts []string
	if p.OnSale && p.SalePrice != nil && p.Price > 0 && *p.SalePrice < p.Price {
		discount := math.Round((p.Price - *p.SalePrice) / p.Price * 100)
		parts = append(parts, fmt.Sprintf("%.0f%% off!", discount))
	}
	if slices.Contains(matchedOn, domain.FieldAlias) {
		parts = append(parts, "Alternate name matched.")
	}
	if p.Stock > 0 && p.Stock < lowStockThreshold {
		parts = append(parts, fmt.Sprintf("Only %d left!", p.Stock))
	}
	if len(parts) == 0 {
		return "Great match for your search"
	}
	return strings.Join(parts, " ")
}
