// Package intent classifies a normalized utterance into an action kind.
//
// Classification is rule-driven: each language carries trigger-word sets and
// the rules fire in a fixed order, first match wins. A "remind me" trigger
// dominates every other cue; the remaining rules fall through to a plain
// reminder when nothing matches.
package intent

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kkarklins/balss/internal/resolve/datetime"
	"github.com/kkarklins/balss/pkg/types"
)

// Result is the classification outcome for one utterance.
type Result struct {
	Kind types.ActionKind

	// Trigger is the phrase that decided the classification, empty for the
	// default rule.
	Trigger string

	// TriggerSpan covers the deciding trigger phrase plus any trailing
	// particle tokens, so the display cleaner can strip it.
	TriggerSpan datetime.Span

	// Triggers lists every recognized trigger phrase in the utterance, for
	// audit logging. The deciding trigger comes first.
	Triggers []string

	// ContactName is the person token exactly as spoken. CallContact only.
	ContactName string

	// Items are the shopping payload fragments in spoken order. Shopping
	// only.
	Items []string

	// Inbox marks a note-style reminder that carries no due date.
	Inbox bool

	// NeedsContext marks an utterance referencing something outside itself
	// ("the same as usual"). The router must escalate it regardless of
	// confidence.
	NeedsContext bool
}

// Classify determines the action kind of text. hasTime reports whether the
// date/time resolver found a time expression; it feeds the location+time
// calendar rule. Unknown languages classify as a plain reminder.
func Classify(text string, lang types.Language, hasTime bool) Result {
	lx := lexicons[lang]
	if lx == nil {
		return Result{Kind: types.KindReminder}
	}

	lower := strings.ToLower(text)
	toks := tokenize(lower)

	decide := func(res Result) Result {
		res.Triggers = collectTriggers(lower, lx, res.Trigger)
		_, _, res.NeedsContext = findAny(lower, lx.contextPhrases)
		return res
	}

	// 1. A remind trigger dominates call and calendar cues.
	if sp, phrase, ok := findAny(lower, lx.remindTriggers); ok {
		sp = absorbParticles(sp, toks, lx)
		return decide(Result{Kind: types.KindReminder, Trigger: phrase, TriggerSpan: sp})
	}

	// 2. Call verb plus a person token.
	if verb, sp, ok := findCallVerb(toks, lx); ok {
		if name, ok := findPerson(text, toks, sp, lx); ok {
			return decide(Result{
				Kind:        types.KindCallContact,
				Trigger:     verb,
				TriggerSpan: sp,
				ContactName: name,
			})
		}
	}

	// 3. Event noun.
	if sp, phrase, ok := findAny(lower, lx.eventNouns); ok {
		return decide(Result{Kind: types.KindCalendar, Trigger: phrase, TriggerSpan: sp})
	}

	// 4. Location phrase plus a time expression.
	if hasTime {
		for _, t := range toks {
			if lx.locationMarkers[t.text] {
				return decide(Result{Kind: types.KindCalendar, Trigger: t.text, TriggerSpan: t.span})
			}
		}
	}

	// 5. Shopping trigger plus an item list.
	if sp, phrase, ok := findAny(lower, lx.shoppingTriggers); ok {
		if items := splitItems(text[min(sp.End, len(text)):], lx); len(items) > 0 {
			return decide(Result{
				Kind:        types.KindShopping,
				Trigger:     phrase,
				TriggerSpan: sp,
				Items:       items,
			})
		}
	}

	// 6. Note trigger: inbox-style reminder without a due date.
	if sp, phrase, ok := findAny(lower, lx.noteTriggers); ok {
		return decide(Result{Kind: types.KindReminder, Trigger: phrase, TriggerSpan: sp, Inbox: true})
	}

	// 7. Default.
	return decide(Result{Kind: types.KindReminder})
}

// collectTriggers gathers every recognized trigger phrase for audit logging,
// with the deciding trigger first.
func collectTriggers(lower string, lx *lexicon, deciding string) []string {
	var out []string
	if deciding != "" {
		out = append(out, deciding)
	}
	add := func(phrases []string) {
		for _, p := range phrases {
			if p == deciding {
				continue
			}
			if _, _, ok := findAny(lower, []string{p}); ok {
				out = append(out, p)
			}
		}
	}
	add(lx.remindTriggers)
	for v := range lx.callVerbs {
		if v != deciding {
			if _, _, ok := findAny(lower, []string{v}); ok {
				out = append(out, v)
			}
		}
	}
	add(lx.eventNouns)
	add(lx.shoppingTriggers)
	add(lx.noteTriggers)
	return out
}

// absorbParticles extends a trigger span over directly following particle
// tokens ("atgādini man", "tuleta mulle meelde").
func absorbParticles(sp datetime.Span, toks []token, lx *lexicon) datetime.Span {
	for i := 0; i < len(toks); i++ {
		if toks[i].span.Start < sp.End {
			continue
		}
		if !lx.particles[toks[i].text] {
			break
		}
		sp.End = toks[i].span.End
	}
	return sp
}

func findCallVerb(toks []token, lx *lexicon) (string, datetime.Span, bool) {
	for _, t := range toks {
		if lx.callVerbs[t.text] {
			return t.text, t.span, true
		}
	}
	return "", datetime.Span{}, false
}

// findPerson locates the contact after the call verb: consecutive capitalized
// tokens in the original text (first plus optional last name) or a known
// relation word. The name is returned verbatim.
func findPerson(text string, toks []token, verb datetime.Span, lx *lexicon) (string, bool) {
	for i, t := range toks {
		if t.span.Start < verb.End {
			continue
		}
		orig := text[t.span.Start:t.span.End]
		if startsUpper(orig) {
			name := orig
			if i+1 < len(toks) {
				next := text[toks[i+1].span.Start:toks[i+1].span.End]
				if startsUpper(next) {
					name += " " + next
				}
			}
			return name, true
		}
		if lx.relationNames[t.text] {
			return orig, true
		}
	}
	return "", false
}

// splitItems cuts a shopping payload into items on commas and the language's
// conjunctions, keeping each fragment verbatim.
func splitItems(payload string, lx *lexicon) []string {
	parts := []string{payload}
	seps := append([]string{","}, lx.itemSeparators...)
	for _, sep := range seps {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, sep)...)
		}
		parts = next
	}

	var items []string
	for _, p := range parts {
		p = strings.TrimFunc(p, func(r rune) bool {
			return unicode.IsSpace(r) || unicode.IsPunct(r)
		})
		if p != "" {
			items = append(items, p)
		}
	}
	return items
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

// token mirrors the datetime tokenizer: a letter/digit run with its span.
type token struct {
	text string
	span datetime.Span
}

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
			toks = append(toks, token{text: s[start:i], span: datetime.Span{Start: start, End: i}})
			start = -1
		}
	}
	if start >= 0 {
		toks = append(toks, token{text: s[start:], span: datetime.Span{Start: start, End: len(s)}})
	}
	return toks
}

// findAny locates the first of phrases present in lower on token boundaries.
func findAny(lower string, phrases []string) (datetime.Span, string, bool) {
	for _, p := range phrases {
		if sp, ok := findPhrase(lower, p); ok {
			return sp, p, true
		}
	}
	return datetime.Span{}, "", false
}

// findPhrase locates phrase in text with non-letter characters (or the text
// edges) on both sides.
func findPhrase(text, phrase string) (datetime.Span, bool) {
	from := 0
	for {
		i := strings.Index(text[from:], phrase)
		if i < 0 {
			return datetime.Span{}, false
		}
		i += from
		end := i + len(phrase)
		if letterBoundary(text, i, end) {
			return datetime.Span{Start: i, End: end}, true
		}
		from = i + 1
	}
}

func letterBoundary(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if unicode.IsLetter(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
