package names

import (
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	defaultPhoneticThreshold = 0.70
	defaultFuzzyThreshold    = 0.85
)

// MatcherOption is a functional option for configuring a [Matcher].
type MatcherOption func(*Matcher)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score required for a
// phonetically-matched contact to be accepted. Default: 0.70.
func WithPhoneticThreshold(threshold float64) MatcherOption {
	return func(m *Matcher) {
		m.phoneticThreshold = threshold
	}
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score when no phonetic
// candidate is found and the matcher falls back to pure string similarity.
// Default: 0.85.
func WithFuzzyThreshold(threshold float64) MatcherOption {
	return func(m *Matcher) {
		m.fuzzyThreshold = threshold
	}
}

// Matcher aligns a normalized spoken name with the configured contact list.
// Speech recognition regularly mangles proper names, so exact comparison is
// useless; the matcher filters candidates by Double Metaphone code overlap
// and ranks them by Jaro-Winkler similarity. Read-only after construction and
// safe for concurrent use.
type Matcher struct {
	contacts          []string
	phoneticThreshold float64
	fuzzyThreshold    float64
}

// NewMatcher returns a Matcher over the given contact names.
func NewMatcher(contacts []string, opts ...MatcherOption) *Matcher {
	m := &Matcher{
		contacts:          contacts,
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Match returns the contact most similar to name. When matched is false,
// corrected equals name unchanged and confidence is 0.
func (m *Matcher) Match(name string) (corrected string, confidence float64, matched bool) {
	nameLower := strings.ToLower(strings.TrimSpace(name))
	if nameLower == "" || len(m.contacts) == 0 {
		return name, 0, false
	}
	nameTokens := strings.Fields(nameLower)
	nameCodes := codesForTokens(nameTokens)

	type candidate struct {
		contact  string
		score    float64
		phonetic bool
	}
	var best candidate

	for _, contact := range m.contacts {
		contactLower := strings.ToLower(strings.TrimSpace(contact))
		if contactLower == "" {
			continue
		}
		contactTokens := strings.Fields(contactLower)

		phonetic := codesOverlap(nameCodes, codesForTokens(contactTokens))
		score := bestJWScore(nameTokens, contactTokens, nameLower, contactLower)

		if phonetic {
			if score >= m.phoneticThreshold && (!best.phonetic || score > best.score) {
				best = candidate{contact: contact, score: score, phonetic: true}
			}
		} else if !best.phonetic && score >= m.fuzzyThreshold && score > best.score {
			best = candidate{contact: contact, score: score}
		}
	}

	if best.contact == "" {
		return name, 0, false
	}
	return best.contact, best.score, true
}

// codesForTokens returns the union of the Double Metaphone codes of the
// tokens, excluding empty codes.
func codesForTokens(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		p, s := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}

func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}

// bestJWScore takes the highest Jaro-Winkler similarity across full strings,
// space-stripped strings, and the best token pair, so one mangled word of a
// two-word name does not sink the whole comparison.
func bestJWScore(aTokens, bTokens []string, aFull, bFull string) float64 {
	score := matchr.JaroWinkler(aFull, bFull, false)

	if len(aTokens) > 1 || len(bTokens) > 1 {
		if s := matchr.JaroWinkler(strings.Join(aTokens, ""), strings.Join(bTokens, ""), false); s > score {
			score = s
		}
	}
	for _, at := range aTokens {
		for _, bt := range bTokens {
			if s := matchr.JaroWinkler(at, bt, false); s > score {
				score = s
			}
		}
	}
	return score
}
