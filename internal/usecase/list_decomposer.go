package usecase

import (
	"regexp"

	"github.com/saintathena/backend/internal/domain"
)

// listSeparatorPattern splits a shopping list on line breaks, commas, semicolons and the word "and"
var listSeparatorPattern = regexp.MustCompile(`(?i)\r?\n|[,;]|\band\b`)

// Confidence labels for list entries
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// ListDecomposer turns a free-text shopping list into independently ranked items
type ListDecomposer struct {
	normalizer *Normalizer
	ranker     *Ranker
	options    domain.SearchOptions
}

// NewListDecomposer creates a decomposer ranking the top itemLimit matches per item
// with the default score threshold, in-stock products only.
func NewListDecomposer(normalizer *Normalizer, ranker *Ranker, itemLimit int) *ListDecomposer {
	if itemLimit <= 0 {
		itemLimit = domain.ListItemLimit
	}
	opts := domain.DefaultSearchOptions()
	opts.Limit = itemLimit
	return &ListDecomposer{normalizer: normalizer, ranker: ranker, options: opts}
}

// SearchList splits the text into items, strips quantities, collapses items that normalize
// identically into their first occurrence and ranks each. It never fails; unrecognized
// fragments are dropped and items without matches map to an empty list.
func (d *ListDecomposer) SearchList(catalog []domain.Product, text string) domain.ShoppingListResult {
	result := domain.ShoppingListResult{Entries: []domain.ListEntry{}}
	seen := make(map[string]bool)

	for _, fragment := range listSeparatorPattern.Split(text, -1) {
		item := ParseQuantity(fragment)
		if item.Text == "" {
			continue
		}
		query := d.normalizer.Normalize(item.Query)
		if query.Empty() || seen[query.Text] {
			continue
		}
		seen[query.Text] = true

		matches := d.ranker.rank(catalog, d.ranker.queryVariants(item), d.options)
		entry := domain.ListEntry{
			Text:       item.Text,
			Query:      item.Query,
			Quantity:   item.Quantity,
			Unit:       item.Unit,
			Matches:    matches,
			Confidence: confidenceFor(matches),
		}
		if len(matches) > 0 {
			best := matches[0]
			entry.BestMatch = &best
		}
		result.Entries = append(result.Entries, entry)
	}
	return result
}

// confidenceFor grades the best match: high at 80+, low under 50 or when nothing matched
func confidenceFor(matches []domain.MatchCandidate) string {
	if len(matches) == 0 {
		return ConfidenceLow
	}
	switch best := matches[0].Score; {
	case best >= 80:
		return ConfidenceHigh
	case best < 50:
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}
