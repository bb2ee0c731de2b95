package usecase

import (
	"strings"
	"unicode"

	"github.com/saintathena/backend/internal/domain"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// defaultAliases is loaded once from the embedded resource
var defaultAliases = MustParseAliasTable(defaultAliasFile)

// Normalizer canonicalizes free text into comparable tokens
type Normalizer struct {
	aliases *AliasTable
}

// NewNormalizer creates a normalizer over the given alias table; nil uses the embedded table
func NewNormalizer(aliases *AliasTable) *Normalizer {
	if aliases == nil {
		aliases = defaultAliases
	}
	return &Normalizer{aliases: aliases}
}

// Normalize folds case, strips diacritics and punctuation, collapses whitespace,
// splits into tokens and applies the alias table. It never fails.
func (n *Normalizer) Normalize(text string) domain.NormalizedText {
	tokens := n.aliases.Apply(foldTokens(text))
	return domain.NormalizedText{
		Text:   strings.Join(tokens, " "),
		Tokens: tokens,
	}
}

// Normalize uses the embedded alias table
func Normalize(text string) domain.NormalizedText {
	return defaultNormalizer.Normalize(text)
}

var defaultNormalizer = NewNormalizer(nil)

// foldTokens runs every normalization step except alias substitution
func foldTokens(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Fields(stripPunctuation(stripDiacritics(strings.ToLower(text))))
}

// stripDiacritics removes combining marks after canonical decomposition (é -> e, ñ -> n)
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

// stripPunctuation replaces anything that is not a letter or digit with a space.
// Apostrophes are dropped so possessives stay one token.
func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\'' || r == '’':
			return -1
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return r
		default:
			return ' '
		}
	}, s)
}
