package datetime

import (
	"regexp"
	"strconv"
	"time"
	"unicode"

	"github.com/kkarklins/balss/pkg/types"
)

// lexicon bundles the per-language pattern tables the date and time resolvers
// dispatch through. All lookups expect lowercased input.
type lexicon struct {
	// relativeDays maps relative-day keywords to whole-day offsets
	// (today=0, tomorrow=1, day-after-tomorrow=2).
	relativeDays map[string]int

	// weekdayStems maps weekday name stems to weekdays. Stems are matched as
	// token prefixes so inflected forms resolve too.
	weekdayStems map[string]time.Weekday

	// nextWeekPhrases are "next week" modifier phrases, matched on token
	// boundaries.
	nextWeekPhrases []string

	// relOffset matches relative time offsets ("in N minutes/hours/days").
	// Submatch groups: 1 = full phrase, 2 = amount (digits or number word,
	// may be empty meaning 1), 3 = unit word.
	relOffset *regexp.Regexp

	// numberWords maps number-word stems to values, for relative-offset
	// amounts. Matched by longest prefix.
	numberWords map[string]int

	// monthStems maps month-name stems to months, shared by the numeric and
	// ordinal specific-date paths.
	monthStems map[string]time.Month

	// ordinalDays maps spelled ordinal words (inflected day-of-month forms)
	// to 1..9 and the exact-tens forms to 10, 20, 30.
	ordinalDays map[string]int

	// ordinalTens maps tens prefix words (e.g. "twenty") used in compound
	// ordinals ("twenty sixth") to 20/30.
	ordinalTens map[string]int

	// hourWords maps spelled hour words to 1..12.
	hourWords map[string]int

	// hourNeedsMarker requires a clock-marker token immediately before a
	// spelled hour word for it to count as a time.
	hourNeedsMarker bool

	// halfPrefix is the "half past" word; halfFused reports whether it fuses
	// with the hour word into a single token.
	halfPrefix string
	halfFused  bool

	// minuteWords maps spelled minute words that may trail an hour word.
	minuteWords map[string]int

	// clockMarkers are adverbial clock words ("at ... o'clock").
	clockMarkers map[string]bool

	// markerTime matches a clock marker followed by a numeric hour and
	// optional minutes. Submatch groups: 1 = hour, 2 = minutes (may be empty).
	markerTime *regexp.Regexp

	// dayParts are coarse time-of-day qualifiers with their default clock
	// hour and AM/PM band.
	dayParts []dayPartPhrase
}

// dayPartPhrase is one day-part qualifier. Phrase may contain a space; it is
// matched on token boundaries.
type dayPartPhrase struct {
	phrase string
	hour   int
	pm     bool
}

var lexicons = map[types.Language]*lexicon{
	types.LanguageLatvian:  latvianLexicon,
	types.LanguageEstonian: estonianLexicon,
}

// Span is a half-open [Start, End) byte range into the analysed text.
type Span struct {
	Start int
	End   int
}

func (s Span) union(o Span) Span {
	if o.Start < s.Start {
		s.Start = o.Start
	}
	if o.End > s.End {
		s.End = o.End
	}
	return s
}

// token is a maximal run of letters or digits with its position.
type token struct {
	text string
	span Span
}

// tokenize splits lowercased text into letter/digit runs. Punctuation and
// whitespace separate tokens; a period after a digit run is left out of the
// token (numeric dates are matched by regexp instead).
func tokenize(s string) []token {
	var toks []token
	start := -1
	for i, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			toks = append(toks, token{text: s[start:i], span: Span{start, i}})
			start = -1
		}
	}
	if start >= 0 {
		toks = append(toks, token{text: s[start:], span: Span{start, len(s)}})
	}
	return toks
}

// month resolves a token to a month via stem-prefix matching.
func (lx *lexicon) month(tok string) (time.Month, bool) {
	for stem, m := range lx.monthStems {
		if hasPrefix(tok, stem) {
			return m, true
		}
	}
	return 0, false
}

// weekday resolves a token to a weekday via stem-prefix matching.
func (lx *lexicon) weekday(tok string) (time.Weekday, bool) {
	for stem, wd := range lx.weekdayStems {
		if hasPrefix(tok, stem) {
			return wd, true
		}
	}
	return 0, false
}

// numberWord resolves a number-word token by longest-prefix match so that
// compound forms ("twenty") win over their embedded units ("two").
func (lx *lexicon) numberWord(tok string) (int, bool) {
	best := -1
	bestLen := 0
	for stem, n := range lx.numberWords {
		if hasPrefix(tok, stem) && len(stem) > bestLen {
			best = n
			bestLen = len(stem)
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// amount parses a relative-offset amount: digits, a number word, or empty
// (meaning 1, as in "in an hour").
func (lx *lexicon) amount(s string) (int, bool) {
	if s == "" {
		return 1, true
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, n > 0
	}
	return lx.numberWord(s)
}

// findPhrase locates phrase in text on token boundaries: the characters just
// before and after the match must not be letters. Returns the match span.
func findPhrase(text, phrase string) (Span, bool) {
	from := 0
	for {
		i := indexFrom(text, phrase, from)
		if i < 0 {
			return Span{}, false
		}
		end := i + len(phrase)
		if boundaryBefore(text, i) && boundaryAfter(text, end) {
			return Span{i, end}, true
		}
		from = i + 1
	}
}

func indexFrom(s, sub string, from int) int {
	if from >= len(s) {
		return -1
	}
	for i := from; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r := lastRune(s[:i])
	return !unicode.IsLetter(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := firstRune(s[i:])
	return !unicode.IsLetter(r)
}

func firstRune(s string) (rune, int) {
	for _, r := range s {
		return r, len(string(r))
	}
	return 0, 0
}

func lastRune(s string) rune {
	var last rune
	for _, r := range s {
		last = r
	}
	return last
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
