// Package datetime resolves natural-language date and time expressions in
// Latvian and Estonian transcripts into absolute timestamps.
//
// Resolution is pure with respect to its (text, now) input: the same text and
// reference instant always produce the same result. Date rules are evaluated
// in a fixed precedence order and the winning rule is reported as a
// [Derivation] variant, so consuming code can switch exhaustively on how a
// date was derived instead of inspecting flags.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/kkarklins/balss/pkg/types"
)

// Derivation identifies which date rule produced a [DateResolution]. Exactly
// one derivation wins per resolution call.
type Derivation interface {
	derivation()
	// Tag is a short stable label for audit logging.
	Tag() string
}

// RelativeDay is a today/tomorrow/day-after-tomorrow keyword.
type RelativeDay struct {
	Offset int // whole days from the reference date
}

// Weekday is a weekday name resolved to its next occurrence.
type Weekday struct {
	Day time.Weekday
	// SameDay is set when the reference day already matches. The final
	// decision whether today still counts depends on the resolved time of
	// day and is made by [Resolver.Resolve].
	SameDay bool
}

// NextWeek is a "next week" modifier, optionally combined with a weekday.
type NextWeek struct {
	Day *time.Weekday // nil when no weekday token co-occurred
}

// RelativeTime is an "in N minutes/hours/days" offset from the reference
// instant. It always implies an explicit time.
type RelativeTime struct {
	Offset time.Duration
}

// SpecificDate is a numeric ("7. novembrī") or spelled-ordinal ("septītajā
// novembrī") calendar date.
type SpecificDate struct {
	Day     int
	Month   time.Month
	Ordinal bool // spelled-ordinal form rather than numeric
}

// DefaultToday is the fallback when no date rule matched.
type DefaultToday struct{}

func (RelativeDay) derivation()  {}
func (Weekday) derivation()      {}
func (NextWeek) derivation()     {}
func (RelativeTime) derivation() {}
func (SpecificDate) derivation() {}
func (DefaultToday) derivation() {}

func (d RelativeDay) Tag() string  { return fmt.Sprintf("relative_day:%d", d.Offset) }
func (d Weekday) Tag() string      { return "weekday:" + strings.ToLower(d.Day.String()) }
func (d NextWeek) Tag() string     { return "next_week" }
func (d RelativeTime) Tag() string { return "relative_time:" + d.Offset.String() }
func (d SpecificDate) Tag() string {
	return fmt.Sprintf("specific_date:%02d-%02d", int(d.Month), d.Day)
}
func (DefaultToday) Tag() string { return "default_today" }

// DateResolution is the date rule outcome. Base is midnight of the resolved
// day in the resolver's zone, except for [RelativeTime] where it is the full
// offset instant. Span covers the consumed text; it is zero for
// [DefaultToday].
type DateResolution struct {
	Base       time.Time
	Derivation Derivation
	Span       Span
}

// Source identifies how a clock time was derived.
type Source int

const (
	// SourceExplicit is a numeric time: HH:MM or a clock-marker + hour.
	SourceExplicit Source = iota
	// SourceWordHour is a spelled hour word, with or without minutes.
	SourceWordHour
	// SourceDayPart is a day-part default (morning/afternoon/evening).
	SourceDayPart
)

func (s Source) String() string {
	switch s {
	case SourceExplicit:
		return "explicit"
	case SourceWordHour:
		return "word_hour"
	case SourceDayPart:
		return "day_part"
	}
	return "unknown"
}

// TimeResolution is a resolved clock time. AMPMDecision records how an
// ambiguous 1..12 hour was banded; it is empty when the hour was already
// unambiguous.
type TimeResolution struct {
	Hour         int
	Minute       int
	Source       Source
	AMPMDecision string
	Span         Span
}

// Mention is one explicit clock-time occurrence, used for multi-task
// splitting. Day-part defaults never produce mentions.
type Mention struct {
	Span Span
	Time TimeResolution
}

// Resolver resolves dates and times in a fixed time zone. It is stateless
// apart from the zone and safe for concurrent use.
type Resolver struct {
	loc *time.Location
}

// NewResolver returns a Resolver performing all date math in loc.
func NewResolver(loc *time.Location) *Resolver {
	return &Resolver{loc: loc}
}

// Location returns the resolver's time zone.
func (r *Resolver) Location() *time.Location { return r.loc }

// Result is the combined date+time outcome for one utterance.
type Result struct {
	// Start is the resolved timestamp: midnight of the resolved day when no
	// time was found, otherwise the resolved clock time on that day.
	Start time.Time

	// HasTime reports whether an explicit or derivable clock time was
	// present, not merely a date.
	HasTime bool

	Date DateResolution
	Time *TimeResolution

	// AMPMDecision mirrors Time.AMPMDecision for audit logging; empty when
	// no banding was needed.
	AMPMDecision string

	// Rolled is set when a same-day weekday target had already passed and
	// the date moved one week forward.
	Rolled bool
}

// HasDay reports whether a date rule other than the default matched.
func (res Result) HasDay() bool {
	_, def := res.Date.Derivation.(DefaultToday)
	return !def
}

// Resolve runs date and time resolution over text. Date spans are masked
// before time extraction so a day-of-month number is never mistaken for an
// hour. Weekday targets that resolve to today keep today only while the
// resolved time of day has not passed; otherwise the date rolls one week
// forward. The same policy applies when the time came from a day-part
// default.
func (r *Resolver) Resolve(text string, now time.Time, lang types.Language) Result {
	lower := strings.ToLower(text)
	now = now.In(r.loc)

	d := r.ResolveDate(lower, now, lang)
	res := Result{Date: d}

	if _, rel := d.Derivation.(RelativeTime); rel {
		res.Start = d.Base
		res.HasTime = true
		return res
	}

	masked := r.maskDateSpans(lower, lang)
	t, ok := r.ResolveTime(masked, lang)
	if !ok {
		res.Start = d.Base
		return res
	}

	res.Time = &t
	res.AMPMDecision = t.AMPMDecision
	res.HasTime = true

	y, m, day := d.Base.Date()
	start := time.Date(y, m, day, t.Hour, t.Minute, 0, 0, r.loc)
	if wd, isWeekday := d.Derivation.(Weekday); isWeekday && wd.SameDay && !start.After(now) {
		start = start.AddDate(0, 0, 7)
		res.Rolled = true
	}
	res.Start = start
	return res
}

// maskDateSpans blanks out numeric and ordinal specific-date spans so the
// time resolver never reads a day-of-month as an hour.
func (r *Resolver) maskDateSpans(lower string, lang types.Language) string {
	lx := lexicons[lang]
	if lx == nil {
		return lower
	}
	spans := dateSpans(lower, lx)
	if len(spans) == 0 {
		return lower
	}
	b := []byte(lower)
	for _, sp := range spans {
		for i := sp.Start; i < sp.End && i < len(b); i++ {
			b[i] = ' '
		}
	}
	return string(b)
}

// TemporalSpans returns every text span consumed by date or time resolution:
// date phrases, clock-time mentions, day-part qualifiers, and relative-offset
// phrases. The display cleaner uses these to strip temporal tokens from the
// description.
func (r *Resolver) TemporalSpans(lower string, lang types.Language) []Span {
	lx := lexicons[lang]
	if lx == nil {
		return nil
	}

	var spans []Span
	spans = append(spans, dateSpans(lower, lx)...)

	for _, t := range tokenize(lower) {
		if _, ok := lx.relativeDays[t.text]; ok {
			spans = append(spans, t.span)
			continue
		}
		if _, ok := lx.weekday(t.text); ok {
			spans = append(spans, t.span)
			continue
		}
		if lx.clockMarkers[t.text] {
			spans = append(spans, t.span)
		}
	}
	for _, phrase := range lx.nextWeekPhrases {
		if sp, ok := findPhrase(lower, phrase); ok {
			spans = append(spans, sp)
		}
	}
	if d, ok := findRelOffset(lower, lx); ok {
		spans = append(spans, d.Span)
	}

	masked := r.maskDateSpans(lower, lang)
	_, dpSpan, hasDP := findDayPart(masked, lx)
	if hasDP {
		spans = append(spans, dpSpan)
	}
	for _, men := range extractTimes(masked, lx, dayPartOrNil(masked, lx)) {
		spans = append(spans, men.Span)
	}
	return spans
}

func dayPartOrNil(masked string, lx *lexicon) *dayPartPhrase {
	dp, _, ok := findDayPart(masked, lx)
	if !ok {
		return nil
	}
	return &dp
}
