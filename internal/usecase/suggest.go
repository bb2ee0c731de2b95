package usecase

import (
	"sort"
	"strings"

	"github.com/saintathena/backend/internal/domain"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Suggestion limits
const (
	maxCategorySuggestions = 5
	defaultTermSuggestions = 8
)

// Suggester completes partial input from the catalog's own vocabulary
type Suggester struct {
	normalizer *Normalizer
	termLimit  int
}

// NewSuggester creates a suggester returning at most termLimit vocabulary completions
func NewSuggester(normalizer *Normalizer, termLimit int) *Suggester {
	if termLimit <= 0 {
		termLimit = defaultTermSuggestions
	}
	return &Suggester{normalizer: normalizer, termLimit: termLimit}
}

// Suggest returns categories of available products that contain the input, and completions
// of the input's last word drawn from product names, aliases and keywords.
func (s *Suggester) Suggest(catalog []domain.Product, input string) domain.SuggestResponse {
	resp := domain.SuggestResponse{Query: input, Categories: []string{}, Terms: []string{}}

	folded := foldTokens(input)
	if len(folded) == 0 {
		return resp
	}

	resp.Categories = s.categories(catalog, strings.Join(folded, " "))

	last := folded[len(folded)-1]
	lead := strings.Join(folded[:len(folded)-1], " ")
	for _, term := range s.completions(catalog, last) {
		if lead != "" {
			term = lead + " " + term
		}
		resp.Terms = append(resp.Terms, term)
	}
	return resp
}

// categories keeps first-seen order so suggestions are stable for a given catalog
func (s *Suggester) categories(catalog []domain.Product, needle string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, p := range catalog {
		if !p.Available || p.Category == "" || seen[p.Category] {
			continue
		}
		if strings.Contains(strings.Join(foldTokens(p.Category), " "), needle) {
			seen[p.Category] = true
			out = append(out, p.Category)
			if len(out) == maxCategorySuggestions {
				break
			}
		}
	}
	return out
}

type termCount struct {
	term  string
	count int
}

// completions indexes the vocabulary in a prefix trie weighted by how many products use each word
func (s *Suggester) completions(catalog []domain.Product, prefix string) []string {
	trie := patricia.NewTrie()
	for _, p := range catalog {
		if !p.Available {
			continue
		}
		words := foldTokens(p.Name)
		for _, a := range p.Aliases {
			words = append(words, foldTokens(a)...)
		}
		for _, k := range p.Keywords {
			words = append(words, foldTokens(k)...)
		}
		for _, w := range uniqueTokens(words) {
			if len(w) < 2 {
				continue
			}
			key := patricia.Prefix(w)
			if item := trie.Get(key); item != nil {
				trie.Set(key, item.(int)+1)
			} else {
				trie.Insert(key, 1)
			}
		}
	}

	var found []termCount
	_ = trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		word := string(p)
		if word == prefix {
			return nil
		}
		found = append(found, termCount{term: word, count: item.(int)})
		return nil
	})

	sort.Slice(found, func(i, j int) bool {
		if found[i].count != found[j].count {
			return found[i].count > found[j].count
		}
		return found[i].term < found[j].term
	})

	out := make([]string, 0, min(len(found), s.termLimit))
	for i := 0; i < len(found) && i < s.termLimit; i++ {
		out = append(out, found[i].term)
	}
	return out
}
