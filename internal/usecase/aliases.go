package usecase

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed aliases.toml
var defaultAliasFile string

// aliasFile is the on-disk layout of the alias resource
type aliasFile struct {
	Version int                 `toml:"version"`
	Aliases map[string][]string `toml:"aliases"`
}

// AliasTable maps vernacular phrases (as normalized token sequences) to canonical tokens.
// It is immutable after construction and safe for concurrent use.
type AliasTable struct {
	version   int
	phrases   map[string][]string
	maxPhrase int
}

// ParseAliasTable decodes a TOML alias resource
func ParseAliasTable(data string) (*AliasTable, error) {
	var f aliasFile
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, fmt.Errorf("decode alias table: %w", err)
	}

	t := &AliasTable{version: f.Version, phrases: make(map[string][]string)}
	for canonical, variants := range f.Aliases {
		target := foldTokens(canonical)
		if len(target) == 0 {
			return nil, fmt.Errorf("alias table: empty canonical term %q", canonical)
		}
		for _, v := range variants {
			tokens := foldTokens(v)
			if len(tokens) == 0 {
				continue
			}
			key := strings.Join(tokens, " ")
			if prev, ok := t.phrases[key]; ok && strings.Join(prev, " ") != strings.Join(target, " ") {
				return nil, fmt.Errorf("alias table: %q maps to both %q and %q", v, strings.Join(prev, " "), canonical)
			}
			t.phrases[key] = target
			t.maxPhrase = max(t.maxPhrase, len(tokens))
		}
	}
	return t, nil
}

// MustParseAliasTable is like ParseAliasTable but panics on a malformed resource
func MustParseAliasTable(data string) *AliasTable {
	t, err := ParseAliasTable(data)
	if err != nil {
		panic(err)
	}
	return t
}

// Version returns the resource version
func (t *AliasTable) Version() int {
	return t.version
}

// Len returns the number of variant phrases
func (t *AliasTable) Len() int {
	return len(t.phrases)
}

// Apply replaces known variant phrases with their canonical tokens, longest phrase first
func (t *AliasTable) Apply(tokens []string) []string {
	if t == nil || len(t.phrases) == 0 || len(tokens) == 0 {
		return tokens
	}

	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		replaced := false
		for n := min(t.maxPhrase, len(tokens)-i); n > 0; n-- {
			if target, ok := t.phrases[strings.Join(tokens[i:i+n], " ")]; ok {
				out = append(out, target...)
				i += n
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, tokens[i])
			i++
		}
	}
	return out
}
