package usecase

import (
	"fmt"
	"testing"

	"github.com/saintathena/backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func suggestCatalog() []domain.Product {
	return []domain.Product{
		{Name: "Salmon Fillet", Category: "Seafood", Available: true},
		{Name: "Salmon Belly", Category: "Seafood", Available: true},
		{Name: "Salted Egg", Category: "Dairy & Eggs", Available: true},
		{Name: "Squid", Category: "Seafood", Available: false},
		{Name: "Kangkong", Category: "Vegetables", Available: true, Keywords: []string{"salad greens"}},
	}
}

func TestSuggest(t *testing.T) {
	s := NewSuggester(NewNormalizer(nil), 0)

	testCases := []struct {
		name       string
		input      string
		categories []string
		terms      []string
	}{
		{name: "completes by popularity then alphabet", input: "sal", categories: []string{}, terms: []string{"salmon", "salad", "salted"}},
		{name: "keeps leading words", input: "Fresh SAL", categories: []string{}, terms: []string{"fresh salmon", "fresh salad", "fresh salted"}},
		{name: "category containing the input", input: "sea", categories: []string{"Seafood"}, terms: []string{}},
		{name: "category with punctuation", input: "dairy eggs", categories: []string{"Dairy & Eggs"}, terms: []string{}},
		{name: "complete word is not repeated", input: "salmon", categories: []string{}, terms: []string{}},
		{name: "unavailable products are ignored", input: "squ", categories: []string{}, terms: []string{}},
		{name: "empty input", input: "  ", categories: []string{}, terms: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Suggest(suggestCatalog(), tc.input)
			assert.Equal(t, tc.input, got.Query)
			assert.Equal(t, tc.categories, got.Categories)
			assert.Equal(t, tc.terms, got.Terms)
		})
	}
}

func TestSuggest_Limits(t *testing.T) {
	var catalog []domain.Product
	for i := 0; i < 8; i++ {
		catalog = append(catalog, domain.Product{
			Name:      fmt.Sprintf("Fish%c", 'a'+i),
			Category:  fmt.Sprintf("Fish Aisle %d", i),
			Available: true,
		})
	}

	got := NewSuggester(NewNormalizer(nil), 2).Suggest(catalog, "fish")

	assert.Len(t, got.Categories, 5)
	assert.Equal(t, "Fish Aisle 0", got.Categories[0])
	assert.Equal(t, []string{"fisha", "fishb"}, got.Terms)
}
