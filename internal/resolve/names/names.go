// Package names converts inflected person names to nominative case and
// optionally matches them against a configured contact list.
//
// Latvian and Estonian person names arrive in dative, genitive or allative
// case ("piezvani Jānim", "helista Marile"). Normalization is a per-language
// suffix-stripping table applied token-by-token, so first and last names are
// handled independently; unmapped endings pass through unchanged.
package names

import (
	"strings"
	"unicode/utf8"

	"github.com/kkarklins/balss/pkg/types"
)

// suffixRule rewrites one inflectional ending. Rules are tried in order and
// the first applicable one wins, so longer endings must come first.
type suffixRule struct {
	suffix  string
	replace string
}

var suffixRules = map[types.Language][]suffixRule{
	types.LanguageLatvian: {
		{"ņam", "ņš"}, // Bērziņam -> Bērziņš
		{"im", "is"},  // Jānim -> Jānis
		{"am", "s"},   // Kārlam -> Kārls
		{"ai", "a"},   // Annai -> Anna
		{"ei", "e"},   // Ilzei -> Ilze
		{"as", "a"},   // Annas -> Anna
		{"es", "e"},   // Ilzes -> Ilze
	},
	types.LanguageEstonian: {
		{"ile", "i"}, // Marile -> Mari
		{"le", ""},   // emale -> ema
		{"lt", ""},   // Marilt -> Mari
	},
}

// minStem is the minimum rune count that must remain after stripping a
// suffix; shorter results keep the original token.
const minStem = 3

// Normalize maps an inflected name to nominative case. Multi-word names are
// normalized token-by-token. Unknown languages and unmapped endings return
// the input unchanged.
func Normalize(name string, lang types.Language) string {
	rules := suffixRules[lang]
	if len(rules) == 0 || name == "" {
		return name
	}

	tokens := strings.Fields(name)
	for i, tok := range tokens {
		tokens[i] = normalizeToken(tok, rules)
	}
	return strings.Join(tokens, " ")
}

func normalizeToken(tok string, rules []suffixRule) string {
	lower := strings.ToLower(tok)
	for _, r := range rules {
		if !strings.HasSuffix(lower, r.suffix) {
			continue
		}
		stem := tok[:len(tok)-len(r.suffix)]
		if utf8.RuneCountInString(stem) < minStem {
			return tok
		}
		return stem + r.replace
	}
	return tok
}
