package usecase

import (
	"strings"
	"unicode/utf8"

	"github.com/saintathena/backend/internal/domain"
)

// Field weights: a perfect token match on the field contributes weight*1.0
const (
	weightName        = 1.00
	weightAlias       = 0.95
	weightKeyword     = 0.85
	weightCategory    = 0.60
	weightDescription = 0.50
)

// Scoring shape
const (
	maxScore          = 100.0
	maxInexactScore   = 99.0 // only a textually identical name or alias reaches 100
	specificityShare  = 0.10 // share of the score decided by how much of the name the query covers
	categoryBonus     = 4.0
	descriptionBonus  = 2.0
	strongTokenMatch  = 0.80 // similarity at which a token counts as matched for coverage and bonuses
	prefixBase        = 0.85
	substringBase     = 0.70
	containmentSpread = 0.10
	minContainmentLen = 3
	prefixBonus       = 0.05 // over the best edit-distance similarity at the same distance
	substringBonus    = 0.02
	maxContainedSim   = 0.99
)

// PreparedProduct holds the normalized fields of one product for repeated scoring
type PreparedProduct struct {
	Product     domain.Product
	Name        domain.NormalizedText
	Aliases     []domain.NormalizedText
	Keywords    []string
	Category    []string
	Description []string
}

// Prepare normalizes every matchable field of the product
func (n *Normalizer) Prepare(p domain.Product) PreparedProduct {
	pp := PreparedProduct{
		Product:     p,
		Name:        n.Normalize(p.Name),
		Category:    uniqueTokens(n.Normalize(p.Category).Tokens),
		Description: uniqueTokens(n.Normalize(p.Description).Tokens),
	}
	for _, a := range p.Aliases {
		if na := n.Normalize(a); !na.Empty() {
			pp.Aliases = append(pp.Aliases, na)
		}
	}
	var kw []string
	for _, k := range p.Keywords {
		kw = append(kw, n.Normalize(k).Tokens...)
	}
	pp.Keywords = uniqueTokens(kw)
	return pp
}

// Match is the outcome of scoring one query against one product
type Match struct {
	Score     float64
	MatchedOn []string
}

// Matcher scores normalized queries against prepared products. It holds no state.
type Matcher struct{}

// NewMatcher creates a matcher
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Score returns a similarity in [0,100] and the fields that contributed to it.
//
// Each query token takes its best weighted similarity over name, aliases, keywords,
// category and description; the mean over query tokens is the base, so every token has
// to find a match for a high score. A small share of the score rewards queries that cover
// most of the product name. Category and description add capped bonuses.
func (m *Matcher) Score(query domain.NormalizedText, pp PreparedProduct) Match {
	if query.Empty() {
		return Match{}
	}

	if query.Text == pp.Name.Text {
		return Match{Score: maxScore, MatchedOn: []string{domain.FieldName}}
	}
	for _, a := range pp.Aliases {
		if query.Text == a.Text {
			return Match{Score: maxScore, MatchedOn: []string{domain.FieldAlias}}
		}
	}

	qTokens := uniqueTokens(query.Tokens)
	nameTokens := uniqueTokens(pp.Name.Tokens)
	aliasTokens := make([][]string, len(pp.Aliases))
	for i, a := range pp.Aliases {
		aliasTokens[i] = uniqueTokens(a.Tokens)
	}

	contributed := make(map[string]bool, 5)
	var sum float64
	var categoryHit, descriptionHit bool

	for _, qt := range qTokens {
		best, field := weightName*bestSimilarity(qt, nameTokens), domain.FieldName
		for _, at := range aliasTokens {
			if s := weightAlias * bestSimilarity(qt, at); s > best {
				best, field = s, domain.FieldAlias
			}
		}
		if s := weightKeyword * bestSimilarity(qt, pp.Keywords); s > best {
			best, field = s, domain.FieldKeyword
		}

		catSim := bestSimilarity(qt, pp.Category)
		if s := weightCategory * catSim; s > best {
			best, field = s, domain.FieldCategory
		}
		descSim := bestSimilarity(qt, pp.Description)
		if s := weightDescription * descSim; s > best {
			best, field = s, domain.FieldDescription
		}

		categoryHit = categoryHit || catSim >= strongTokenMatch
		descriptionHit = descriptionHit || descSim >= strongTokenMatch
		if best > 0 {
			contributed[field] = true
		}
		sum += best
	}

	mean := sum / float64(len(qTokens))
	if mean == 0 {
		return Match{}
	}

	coverage := tokenCoverage(qTokens, nameTokens)
	for _, at := range aliasTokens {
		coverage = max(coverage, tokenCoverage(qTokens, at))
	}

	score := maxScore * mean * (1 - specificityShare + specificityShare*coverage)
	if categoryHit {
		score += categoryBonus
		contributed[domain.FieldCategory] = true
	}
	if descriptionHit {
		score += descriptionBonus
		contributed[domain.FieldDescription] = true
	}

	return Match{
		Score:     clamp(score, 0, maxInexactScore),
		MatchedOn: orderedFields(contributed),
	}
}

// tokenSimilarity compares one query token against one field token, in [0,1].
// Edit distance is tolerated up to maxEdits of the query token's length; a query token that is a
// prefix or substring of the field token scores above any edit-distance match of the same distance,
// and a prefix above a substring.
func tokenSimilarity(q, t string) float64 {
	if q == t {
		return 1
	}

	qLen := utf8.RuneCountInString(q)
	tLen := utf8.RuneCountInString(t)
	longest := max(qLen, tLen)
	if longest == 0 {
		return 0
	}

	var sim float64
	d := levenshteinDistance(q, t)
	if d <= maxEdits(qLen) {
		sim = 1 - float64(d)/float64(longest)
	}

	if qLen >= minContainmentLen && qLen < tLen {
		ratio := float64(qLen) / float64(tLen)
		// No token at distance d from t scores above 1 - d/(tLen+d) by edit distance alone
		reach := 1 - float64(d)/float64(tLen+d)
		switch {
		case strings.HasPrefix(t, q):
			sim = max(sim, prefixBase+containmentSpread*ratio, min(maxContainedSim, reach+prefixBonus))
		case strings.Contains(t, q):
			sim = max(sim, substringBase+containmentSpread*ratio, min(maxContainedSim, reach+substringBonus))
		}
	}
	return sim
}

// maxEdits is the edit tolerance for a query token of n runes
func maxEdits(n int) int {
	switch {
	case n <= 2:
		return 0
	case n <= 4:
		return 1
	case n <= 8:
		return 2
	default:
		return n / 4
	}
}

// bestSimilarity returns the highest similarity of q against any field token
func bestSimilarity(q string, field []string) float64 {
	var best float64
	for _, t := range field {
		if s := tokenSimilarity(q, t); s > best {
			best = s
			if best == 1 {
				break
			}
		}
	}
	return best
}

// tokenCoverage is the fraction of field tokens strongly matched by some query token
func tokenCoverage(query, field []string) float64 {
	if len(field) == 0 {
		return 0
	}
	matched := 0
	for _, t := range field {
		for _, q := range query {
			if tokenSimilarity(q, t) >= strongTokenMatch {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(field))
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)
	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	// Use two rows instead of full matrix for space efficiency
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// uniqueTokens drops repeated tokens, keeping first occurrence order
func uniqueTokens(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

var fieldOrder = []string{
	domain.FieldName,
	domain.FieldAlias,
	domain.FieldKeyword,
	domain.FieldCategory,
	domain.FieldDescription,
}

func orderedFields(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for _, f := range fieldOrder {
		if set[f] {
			out = append(out, f)
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
