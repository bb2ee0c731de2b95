package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Search modes accepted by the orchestrator
const (
	ModeSingle = "single"
	ModeList   = "list"
)

// Default search option values
const (
	DefaultMinScore = 40.0
	DefaultLimit    = 10
	ListItemLimit   = 3
)

// Match fields reported in MatchCandidate.MatchedOn
const (
	FieldName        = "name"
	FieldAlias       = "alias"
	FieldKeyword     = "keyword"
	FieldCategory    = "category"
	FieldDescription = "description"
)

// SearchOptions controls thresholds for a single ranking call
type SearchOptions struct {
	MinScore          float64 `json:"minScore" msgpack:"minScore"`
	Limit             int     `json:"limit" msgpack:"limit"`
	IncludeOutOfStock bool    `json:"includeOutOfStock" msgpack:"includeOutOfStock"`
}

// DefaultSearchOptions returns min score 40, limit 10, in-stock only
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{MinScore: DefaultMinScore, Limit: DefaultLimit}
}

// SearchOptionsInput is the caller-facing options object; nil fields take defaults
type SearchOptionsInput struct {
	MinScore          *float64 `json:"minScore,omitempty"`
	Limit             *int     `json:"limit,omitempty"`
	IncludeOutOfStock *bool    `json:"includeOutOfStock,omitempty"`
}

// Resolve applies defaults to the input and validates the result
func (in *SearchOptionsInput) Resolve(defaults SearchOptions) (SearchOptions, error) {
	opts := defaults
	if in == nil {
		return opts, nil
	}
	if in.MinScore != nil {
		if *in.MinScore < 0 || *in.MinScore > 100 {
			return opts, fmt.Errorf("%w: minScore must be between 0 and 100", ErrInvalidRequest)
		}
		opts.MinScore = *in.MinScore
	}
	if in.Limit != nil {
		if *in.Limit < 1 || *in.Limit > 100 {
			return opts, fmt.Errorf("%w: limit must be between 1 and 100", ErrInvalidRequest)
		}
		opts.Limit = *in.Limit
	}
	if in.IncludeOutOfStock != nil {
		opts.IncludeOutOfStock = *in.IncludeOutOfStock
	}
	return opts, nil
}

// MatchCandidate is one ranked product for a query
type MatchCandidate struct {
	Product   Product  `json:"product" msgpack:"product"`
	Score     float64  `json:"matchScore" msgpack:"matchScore"`
	MatchedOn []string `json:"matchedOn" msgpack:"matchedOn"`
	Reason    string   `json:"relevanceReason,omitempty" msgpack:"relevanceReason,omitempty"`
}

// ListEntry is one recognized shopping-list item and its top matches
type ListEntry struct {
	Text       string           `json:"query" msgpack:"query"`
	Query      string           `json:"cleanedQuery" msgpack:"cleanedQuery"`
	Quantity   float64          `json:"quantity" msgpack:"quantity"`
	Unit       string           `json:"unit,omitempty" msgpack:"unit,omitempty"`
	Matches    []MatchCandidate `json:"matches" msgpack:"matches"`
	BestMatch  *MatchCandidate  `json:"bestMatch" msgpack:"bestMatch"`
	Confidence string           `json:"confidence" msgpack:"confidence"`
}

// ShoppingListResult preserves the order in which items first appeared in the input
type ShoppingListResult struct {
	Entries []ListEntry
}

// Get returns the entry keyed by the item's original text
func (r ShoppingListResult) Get(text string) (ListEntry, bool) {
	for _, e := range r.Entries {
		if e.Text == text {
			return e, true
		}
	}
	return ListEntry{}, false
}

// Len returns the number of distinct items
func (r ShoppingListResult) Len() int {
	return len(r.Entries)
}

// SearchRequest is the caller-facing request for the orchestrator
type SearchRequest struct {
	Query    string              `json:"query"`
	Mode     string              `json:"mode,omitempty"`
	Options  *SearchOptionsInput `json:"options,omitempty"`
	ClientID string              `json:"-"`
	UserID   string              `json:"-"`
}

// SearchResponse carries either single-mode matches or list-mode items
type SearchResponse struct {
	Mode       string           `msgpack:"mode"`
	Query      string           `msgpack:"query"`
	Matches    []MatchCandidate `msgpack:"matches"`
	Count      int              `msgpack:"count"`
	Items      []ListEntry      `msgpack:"items"`
	TotalItems int              `msgpack:"totalItems"`
	Cached     bool             `msgpack:"-"`
}

type singleResponseJSON struct {
	Mode    string           `json:"mode"`
	Query   string           `json:"query"`
	Matches []MatchCandidate `json:"matches"`
	Count   int              `json:"count"`
	Cached  bool             `json:"cached"`
}

type listResponseJSON struct {
	Mode       string      `json:"mode"`
	Query      string      `json:"query"`
	Items      []ListEntry `json:"items"`
	TotalItems int         `json:"totalItems"`
	Cached     bool        `json:"cached"`
}

// MarshalJSON renders only the fields of the response's mode
func (r SearchResponse) MarshalJSON() ([]byte, error) {
	if r.Mode == ModeList {
		items := r.Items
		if items == nil {
			items = []ListEntry{}
		}
		return json.Marshal(listResponseJSON{
			Mode: r.Mode, Query: r.Query, Items: items, TotalItems: r.TotalItems, Cached: r.Cached,
		})
	}
	matches := r.Matches
	if matches == nil {
		matches = []MatchCandidate{}
	}
	return json.Marshal(singleResponseJSON{
		Mode: r.Mode, Query: r.Query, Matches: matches, Count: r.Count, Cached: r.Cached,
	})
}

// ResultCount is the number of matches (single) or distinct items (list)
func (r *SearchResponse) ResultCount() int {
	if r.Mode == ModeList {
		return r.TotalItems
	}
	return r.Count
}

// SuggestResponse lists category and vocabulary suggestions for partial input
type SuggestResponse struct {
	Query      string   `json:"query"`
	Categories []string `json:"categories"`
	Terms      []string `json:"terms"`
}

// Interaction is a best-effort analytics record for one search
type Interaction struct {
	UserID        string
	Type          string
	QueryText     string
	ProductsFound int
	CreatedAt     time.Time
}

// RateDecision reports the outcome of a rate limit check
type RateDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}
