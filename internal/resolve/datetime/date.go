package datetime

import (
	"regexp"
	"time"

	"github.com/kkarklins/balss/pkg/types"
)

// numericDateRE matches a numeric day-of-month followed by a month word
// ("7. novembrī", "26 novembril"). The month word is validated against the
// language's stem table before the match is accepted.
var numericDateRE = regexp.MustCompile(`\b([0-9]{1,2})\.?\s+([\pL]+)`)

// ResolveDate applies the date rules to lowercased text in fixed precedence
// order, first match wins:
//
//  1. relative-day keywords
//  2. weekday names (with an optional "next week" modifier adding 7 days;
//     "next week" alone resolves to next Monday)
//  3. relative offsets ("in N minutes/hours/days")
//  4. specific dates, numeric or spelled-ordinal
//  5. default: today at midnight
//
// Specific dates in the past roll forward to next year. Languages without a
// lexicon fall straight through to the default.
func (r *Resolver) ResolveDate(lower string, now time.Time, lang types.Language) DateResolution {
	now = now.In(r.loc)
	today := midnight(now, r.loc)

	lx := lexicons[lang]
	if lx == nil {
		return DateResolution{Base: today, Derivation: DefaultToday{}}
	}

	toks := tokenize(lower)

	for _, t := range toks {
		if off, ok := lx.relativeDays[t.text]; ok {
			return DateResolution{
				Base:       today.AddDate(0, 0, off),
				Derivation: RelativeDay{Offset: off},
				Span:       t.span,
			}
		}
	}

	nextWeekSpan, hasNextWeek := findNextWeek(lower, lx)
	if wd, sp, ok := findWeekday(toks, lx); ok {
		offset := (isoWeekday(wd) - isoWeekday(now.Weekday()) + 7) % 7
		base := today.AddDate(0, 0, offset)
		if hasNextWeek {
			day := wd
			return DateResolution{
				Base:       base.AddDate(0, 0, 7),
				Derivation: NextWeek{Day: &day},
				Span:       sp.union(nextWeekSpan),
			}
		}
		return DateResolution{
			Base:       base,
			Derivation: Weekday{Day: wd, SameDay: offset == 0},
			Span:       sp,
		}
	}
	if hasNextWeek {
		offset := (isoWeekday(time.Monday) - isoWeekday(now.Weekday()) + 7) % 7
		if offset == 0 {
			offset = 7
		}
		return DateResolution{
			Base:       today.AddDate(0, 0, offset),
			Derivation: NextWeek{},
			Span:       nextWeekSpan,
		}
	}

	if d, ok := findRelOffset(lower, lx); ok {
		d.Base = now.Add(d.Derivation.(RelativeTime).Offset)
		return d
	}

	if d, ok := findNumericDate(lower, lx); ok {
		return resolveSpecific(d, today, r.loc)
	}
	if d, ok := findOrdinalDate(toks, lx); ok {
		return resolveSpecific(d, today, r.loc)
	}

	return DateResolution{Base: today, Derivation: DefaultToday{}}
}

// dateSpans returns the spans of all specific-date phrases in lower, for
// masking before time extraction.
func dateSpans(lower string, lx *lexicon) []Span {
	var spans []Span
	if d, ok := findNumericDate(lower, lx); ok {
		spans = append(spans, d.Span)
	}
	if d, ok := findOrdinalDate(tokenize(lower), lx); ok {
		spans = append(spans, d.Span)
	}
	return spans
}

func findNextWeek(lower string, lx *lexicon) (Span, bool) {
	for _, phrase := range lx.nextWeekPhrases {
		if sp, ok := findPhrase(lower, phrase); ok {
			return sp, true
		}
	}
	return Span{}, false
}

func findWeekday(toks []token, lx *lexicon) (time.Weekday, Span, bool) {
	for _, t := range toks {
		if wd, ok := lx.weekday(t.text); ok {
			return wd, t.span, true
		}
	}
	return 0, Span{}, false
}

// findRelOffset matches "in N minutes/hours/days". The returned resolution
// carries only the derivation and span; the caller fills in Base from now.
//
// The optional amount group is greedy and can swallow an ordinary word that
// precedes a bare-unit form ("tuleta meelde tunni pärast" captures "meelde").
// When the captured amount is not a number word, the scan resumes just past
// it so the bare-unit match is still found.
func findRelOffset(lower string, lx *lexicon) (DateResolution, bool) {
	for from := 0; from < len(lower); {
		m := lx.relOffset.FindStringSubmatchIndex(lower[from:])
		if m == nil {
			return DateResolution{}, false
		}
		amountStr := group(lower[from:], m, 2)
		unit := group(lower[from:], m, 3)

		n, ok := lx.amount(amountStr)
		if !ok {
			from += m[5]
			continue
		}
		per, ok := unitDuration(unit)
		if !ok {
			from += m[3]
			continue
		}
		return DateResolution{
			Derivation: RelativeTime{Offset: time.Duration(n) * per},
			Span:       Span{from + m[2], from + m[3]},
		}, true
	}
	return DateResolution{}, false
}

func findNumericDate(lower string, lx *lexicon) (DateResolution, bool) {
	for _, m := range numericDateRE.FindAllStringSubmatchIndex(lower, -1) {
		mon, ok := lx.month(group(lower, m, 2))
		if !ok {
			continue
		}
		day := atoi(group(lower, m, 1))
		if day < 1 || day > 31 {
			continue
		}
		return DateResolution{
			Derivation: SpecificDate{Day: day, Month: mon},
			Span:       Span{m[0], m[1]},
		}, true
	}
	return DateResolution{}, false
}

// findOrdinalDate matches spelled-ordinal dates: an ordinal word, or a tens
// word plus a units ordinal, directly followed by a month word.
func findOrdinalDate(toks []token, lx *lexicon) (DateResolution, bool) {
	for i, t := range toks {
		if tens, ok := lx.ordinalTens[t.text]; ok && i+2 < len(toks) {
			if unit, ok := lx.ordinalDays[toks[i+1].text]; ok && unit < 10 {
				if mon, ok := lx.month(toks[i+2].text); ok {
					return DateResolution{
						Derivation: SpecificDate{Day: tens + unit, Month: mon, Ordinal: true},
						Span:       t.span.union(toks[i+2].span),
					}, true
				}
			}
		}
		if day, ok := lx.ordinalDays[t.text]; ok && i+1 < len(toks) {
			if mon, ok := lx.month(toks[i+1].text); ok {
				return DateResolution{
					Derivation: SpecificDate{Day: day, Month: mon, Ordinal: true},
					Span:       t.span.union(toks[i+1].span),
				}, true
			}
		}
	}
	return DateResolution{}, false
}

// resolveSpecific anchors a specific date in the current year, rolling to
// next year when the date has already passed.
func resolveSpecific(d DateResolution, today time.Time, loc *time.Location) DateResolution {
	sd := d.Derivation.(SpecificDate)
	base := time.Date(today.Year(), sd.Month, sd.Day, 0, 0, 0, 0, loc)
	if base.Before(today) {
		base = base.AddDate(1, 0, 0)
	}
	d.Base = base
	return d
}

func unitDuration(unit string) (time.Duration, bool) {
	switch {
	case hasPrefix(unit, "min"):
		return time.Minute, true
	case hasPrefix(unit, "stund"), hasPrefix(unit, "tun"):
		return time.Hour, true
	case hasPrefix(unit, "dien"), hasPrefix(unit, "päev"):
		return 24 * time.Hour, true
	}
	return 0, false
}

// isoWeekday returns ISO numbering: Monday=1 .. Sunday=7.
func isoWeekday(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}

func midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func group(s string, m []int, n int) string {
	if m[2*n] < 0 {
		return ""
	}
	return s[m[2*n]:m[2*n+1]]
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
