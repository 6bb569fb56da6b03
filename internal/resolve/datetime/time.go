package datetime

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/kkarklins/balss/pkg/types"
)

// clockRE matches a bare numeric HH:MM time.
var clockRE = regexp.MustCompile(`\b([0-9]{1,2}):([0-9]{2})\b`)

// ResolveTime applies the time rules to lowercased text. Precedence, higher
// wins:
//
//  1. explicit numeric times (HH:MM or clock-marker + hour)
//  2. spelled hour words, including half-hour forms and trailing minute words
//  3. day-part defaults (morning 09:00, afternoon 14:00, evening 18:00)
//
// A day-part word co-occurring with a numeric or word-form hour never shifts
// that hour; it only disambiguates the AM/PM band for ambiguous 1..12 values.
// The caller must mask specific-date spans first so a day-of-month is never
// read as an hour.
func (r *Resolver) ResolveTime(lower string, lang types.Language) (TimeResolution, bool) {
	lx := lexicons[lang]
	if lx == nil {
		return TimeResolution{}, false
	}

	dp, dpSpan, hasDP := findDayPart(lower, lx)
	var dpp *dayPartPhrase
	if hasDP {
		dpp = &dp
	}

	if mentions := extractTimes(lower, lx, dpp); len(mentions) > 0 {
		return mentions[0].Time, true
	}

	if hasDP {
		return TimeResolution{
			Hour:   dp.hour,
			Source: SourceDayPart,
			Span:   dpSpan,
		}, true
	}
	return TimeResolution{}, false
}

// ExtractTimes returns every explicit clock-time mention in lowercased text
// in order of appearance. Day-part defaults are excluded; the result feeds
// multi-task splitting, which requires syntactically distinct explicit times.
func (r *Resolver) ExtractTimes(lower string, lang types.Language) []Mention {
	lx := lexicons[lang]
	if lx == nil {
		return nil
	}
	masked := r.maskDateSpans(lower, lang)
	return extractTimes(masked, lx, dayPartOrNil(masked, lx))
}

func extractTimes(lower string, lx *lexicon, dp *dayPartPhrase) []Mention {
	var mentions []Mention
	var taken []Span

	add := func(sp Span, t TimeResolution) {
		if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
			return
		}
		t.Span = sp
		mentions = append(mentions, Mention{Span: sp, Time: t})
		taken = append(taken, sp)
	}

	// Clock marker + numeric hour ("pulksten 9", "kell 18:30").
	for _, m := range lx.markerTime.FindAllStringSubmatchIndex(lower, -1) {
		sp := Span{m[0], m[1]}
		hour := atoi(group(lower, m, 1))
		minute := 0
		if g := group(lower, m, 2); g != "" {
			minute = atoi(g)
		}
		banded, decision := bandHour(hour, dp)
		add(sp, TimeResolution{
			Hour:         banded,
			Minute:       minute,
			Source:       SourceExplicit,
			AMPMDecision: decision,
		})
	}

	// Bare HH:MM.
	for _, m := range clockRE.FindAllStringSubmatchIndex(lower, -1) {
		sp := Span{m[0], m[1]}
		if overlapsAny(taken, sp) {
			continue
		}
		hour := atoi(group(lower, m, 1))
		minute := atoi(group(lower, m, 2))
		banded, decision := bandHour(hour, dp)
		add(sp, TimeResolution{
			Hour:         banded,
			Minute:       minute,
			Source:       SourceExplicit,
			AMPMDecision: decision,
		})
	}

	// Spelled hour words.
	toks := tokenize(lower)
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if overlapsAny(taken, t.span) {
			continue
		}

		// Fused half-hour token ("pusdeviņos" = 8:30).
		if lx.halfFused && hasPrefix(t.text, lx.halfPrefix) {
			if h, ok := lx.hourWords[t.text[len(lx.halfPrefix):]]; ok {
				banded, decision := bandHour(h, dp)
				add(t.span, halfPast(banded, decision))
				continue
			}
		}

		// Separate half-hour token pair ("pool üheksa" = 8:30).
		if t.text == lx.halfPrefix && i+1 < len(toks) {
			if h, ok := lx.hourWords[toks[i+1].text]; ok {
				banded, decision := bandHour(h, dp)
				add(t.span.union(toks[i+1].span), halfPast(banded, decision))
				i++
				continue
			}
		}

		h, ok := lx.hourWords[t.text]
		if !ok {
			continue
		}
		sp := t.span
		if lx.hourNeedsMarker {
			if i == 0 || !lx.clockMarkers[toks[i-1].text] {
				continue
			}
			sp = toks[i-1].span.union(sp)
		}

		minute := 0
		if i+1 < len(toks) {
			if mw, ok := lx.minuteWords[toks[i+1].text]; ok {
				minute = mw
				sp = sp.union(toks[i+1].span)
				i++
			}
		}
		banded, decision := bandHour(h, dp)
		add(sp, TimeResolution{
			Hour:         banded,
			Minute:       minute,
			Source:       SourceWordHour,
			AMPMDecision: decision,
		})
	}

	sort.Slice(mentions, func(i, j int) bool {
		return mentions[i].Span.Start < mentions[j].Span.Start
	})
	return mentions
}

// halfPast converts a banded "half past" target hour into the resulting
// clock time: half of nine is 8:30.
func halfPast(bandedHour int, decision string) TimeResolution {
	return TimeResolution{
		Hour:         bandedHour - 1,
		Minute:       30,
		Source:       SourceWordHour,
		AMPMDecision: decision,
	}
}

// bandHour disambiguates an ambiguous 1..11 hour. A co-occurring day-part
// qualifier decides the band; otherwise 1..7 defaults to PM and 8..11 to AM.
// 0, 12 and 13+ pass through unchanged. The decision string is recorded in
// the gold log.
func bandHour(h int, dp *dayPartPhrase) (int, string) {
	if h == 0 || h >= 12 {
		return h, ""
	}
	if dp != nil {
		if dp.pm {
			return h + 12, fmt.Sprintf("%d->%d (day-part pm)", h, h+12)
		}
		return h, fmt.Sprintf("%d->%d (day-part am)", h, h)
	}
	if h <= 7 {
		return h + 12, fmt.Sprintf("%d->%d (default pm)", h, h+12)
	}
	return h, fmt.Sprintf("%d->%d (default am)", h, h)
}

func findDayPart(lower string, lx *lexicon) (dayPartPhrase, Span, bool) {
	for _, dp := range lx.dayParts {
		if sp, ok := findPhrase(lower, dp.phrase); ok {
			return dp, sp, true
		}
	}
	return dayPartPhrase{}, Span{}, false
}

func overlapsAny(spans []Span, sp Span) bool {
	for _, s := range spans {
		if sp.Start < s.End && s.Start < sp.End {
			return true
		}
	}
	return false
}
