// Package normalize corrects recurring speech-to-text transcription errors
// before any parsing happens.
//
// Each language has an ordered list of substitution rules. Rules are applied
// in list order on the same progressively-mutated string, so an early fix
// (e.g. restoring a dropped diacritic) can enable a later one (e.g. merging a
// split compound word). Unknown languages pass through untouched.
package normalize

import (
	"regexp"

	"github.com/kkarklins/balss/pkg/types"
)

// Rule is a single substitution. When ReplaceFunc is nil the rule is a
// literal substitution using Replace (which may reference capture groups with
// $1, $2, ...); otherwise ReplaceFunc computes the replacement from the
// match's submatch groups.
type Rule struct {
	Pattern     *regexp.Regexp
	Replace     string
	ReplaceFunc func(groups []string) string
}

func (r Rule) apply(text string) string {
	if r.ReplaceFunc == nil {
		return r.Pattern.ReplaceAllString(text, r.Replace)
	}
	return r.Pattern.ReplaceAllStringFunc(text, func(m string) string {
		return r.ReplaceFunc(r.Pattern.FindStringSubmatch(m))
	})
}

var rulesByLanguage = map[types.Language][]Rule{
	types.LanguageLatvian:  latvianRules,
	types.LanguageEstonian: estonianRules,
}

// Normalize applies the rule list for lang to text and reports whether any
// rule changed it. Languages without a rule list return text unchanged.
func Normalize(text string, lang types.Language) (string, bool) {
	out := text
	for _, r := range rulesByLanguage[lang] {
		out = r.apply(out)
	}
	return out, out != text
}

// matchCase copies the leading capitalization of src onto repl so that
// sentence-initial words keep their casing after substitution. Both arguments
// are assumed to start with an ASCII or Latin-1/Latvian/Estonian letter.
func matchCase(repl, src string) string {
	if src == "" || repl == "" {
		return repl
	}
	srcRunes := []rune(src)
	replRunes := []rune(repl)
	if isUpper(srcRunes[0]) {
		replRunes[0] = toUpper(replRunes[0])
	}
	return string(replRunes)
}

func isUpper(r rune) bool {
	return r != toLower(r)
}

func toUpper(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z':
		return r - 32
	case r == 'ā':
		return 'Ā'
	case r == 'ē':
		return 'Ē'
	case r == 'ī':
		return 'Ī'
	case r == 'ū':
		return 'Ū'
	case r == 'š':
		return 'Š'
	case r == 'ž':
		return 'Ž'
	case r == 'č':
		return 'Č'
	case r == 'ģ':
		return 'Ģ'
	case r == 'ķ':
		return 'Ķ'
	case r == 'ļ':
		return 'Ļ'
	case r == 'ņ':
		return 'Ņ'
	case r == 'õ':
		return 'Õ'
	case r == 'ä':
		return 'Ä'
	case r == 'ö':
		return 'Ö'
	case r == 'ü':
		return 'Ü'
	}
	return r
}

func toLower(r rune) rune {
	switch {
	case r >= 'A' && r <= 'Z':
		return r + 32
	case r == 'Ā':
		return 'ā'
	case r == 'Ē':
		return 'ē'
	case r == 'Ī':
		return 'ī'
	case r == 'Ū':
		return 'ū'
	case r == 'Š':
		return 'š'
	case r == 'Ž':
		return 'ž'
	case r == 'Č':
		return 'č'
	case r == 'Ģ':
		return 'ģ'
	case r == 'Ķ':
		return 'ķ'
	case r == 'Ļ':
		return 'ļ'
	case r == 'Ņ':
		return 'ņ'
	case r == 'Õ':
		return 'õ'
	case r == 'Ä':
		return 'ä'
	case r == 'Ö':
		return 'ö'
	case r == 'Ü':
		return 'ü'
	}
	return r
}
