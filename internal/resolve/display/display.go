// Package display builds the short human-facing description for a resolved
// action.
//
// Cleaning strips the trigger phrase, every consumed date/time phrase, and
// leading filler words, then capitalizes what remains. The result is never
// empty: a trigger-only or time-only utterance falls back to the original
// text, and an empty payload with a known due date gets a "(due <date>)"
// annotation instead.
package display

import (
	"strings"
	"time"
	"unicode"

	"github.com/kkarklins/balss/internal/resolve/datetime"
	"github.com/kkarklins/balss/pkg/types"
)

// fillers are connective words dropped from the edges of the cleaned
// fragment.
var fillers = map[types.Language]map[string]bool{
	types.LanguageLatvian: {
		"man":   true,
		"mums":  true,
		"lūdzu": true,
		"lai":   true,
		"ka":    true,
		"un":    true,
	},
	types.LanguageEstonian: {
		"mulle":  true,
		"meelde": true,
		"palun":  true,
		"et":     true,
		"ja":     true,
	},
}

// Cleaner strips temporal and trigger tokens from utterances. It reuses the
// date/time resolver to locate consumed spans, so the cleaner and the
// resolver can never disagree about what counted as a time phrase.
type Cleaner struct {
	res *datetime.Resolver
}

// NewCleaner returns a Cleaner using res to locate temporal spans.
func NewCleaner(res *datetime.Resolver) *Cleaner {
	return &Cleaner{res: res}
}

// Clean returns the display description for text. trigger is the span of the
// classification trigger phrase (zero when the default rule fired). due is
// the resolved date used for the fallback annotation when hasDue is set.
// removedTime reports whether any date/time tokens were stripped.
func (c *Cleaner) Clean(text string, lang types.Language, trigger datetime.Span, due time.Time, hasDue bool) (desc string, removedTime bool) {
	lower := strings.ToLower(text)

	spans := c.res.TemporalSpans(lower, lang)
	removedTime = len(spans) > 0
	if trigger.End > trigger.Start {
		spans = append(spans, trigger)
	}

	cleaned := blankSpans(text, spans)
	cleaned = dropFillers(cleaned, lang)
	cleaned = collapse(cleaned)

	if cleaned == "" {
		original := collapse(text)
		if hasDue && removedTime {
			return capitalize(original) + " (due " + due.Format("2006-01-02") + ")", removedTime
		}
		return original, removedTime
	}
	return capitalize(cleaned), removedTime
}

// blankSpans replaces each span with spaces, preserving byte offsets.
func blankSpans(text string, spans []datetime.Span) string {
	b := []byte(text)
	for _, sp := range spans {
		for i := sp.Start; i < sp.End && i < len(b); i++ {
			b[i] = ' '
		}
	}
	return string(b)
}

// dropFillers removes connective words from both edges of the fragment.
// Words in the middle are kept; removing them would garble the description.
func dropFillers(text string, lang types.Language) string {
	fl := fillers[lang]
	if fl == nil {
		return text
	}
	words := strings.Fields(text)
	for len(words) > 0 && fl[strings.ToLower(words[0])] {
		words = words[1:]
	}
	for len(words) > 0 && fl[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// collapse trims the fragment and squeezes runs of whitespace left behind by
// span blanking. Stray punctuation at the edges goes too.
func collapse(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '.' || r == ';'
	})
}

func capitalize(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}
