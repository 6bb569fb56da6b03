// Package resolve assembles the resolution pipeline: the deterministic fast
// path, the confidence score, and the router that escalates low-confidence
// parses to the teacher resolver and records every outcome in the gold log.
package resolve

import (
	"strings"
	"time"

	"github.com/kkarklins/balss/internal/normalize"
	"github.com/kkarklins/balss/internal/resolve/datetime"
	"github.com/kkarklins/balss/internal/resolve/display"
	"github.com/kkarklins/balss/internal/resolve/intent"
	"github.com/kkarklins/balss/internal/resolve/names"
	"github.com/kkarklins/balss/pkg/types"
)

// calendarDefaultDuration is the event length assumed when no interval was
// stated.
const calendarDefaultDuration = time.Hour

// FastResult is the fast path's output plus the audit metadata the router
// needs for scoring and gold logging.
type FastResult struct {
	Resolution *types.Resolution

	// Confidence is the calibrated score in [0.85, 0.95].
	Confidence float64

	// Signals are the inputs that produced Confidence.
	Signals Signals

	// AMPMDecision records hour banding, empty when none was needed.
	AMPMDecision string

	// UsedTriggers lists the recognized trigger phrases, deciding one first.
	UsedTriggers []string

	// DescTimeTokensRemoved reports whether the display cleaner stripped
	// date/time tokens.
	DescTimeTokensRemoved bool

	// NeedsContext is the hard-ambiguity flag: the utterance references
	// something outside itself and must be escalated whatever the score.
	NeedsContext bool
}

// PipelineOption is a functional option for configuring a [Pipeline].
type PipelineOption func(*Pipeline)

// WithClock overrides the pipeline's time source. Tests use this for
// deterministic date math.
func WithClock(clock func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithContacts enables phonetic contact matching against the given names.
func WithContacts(contacts []string) PipelineOption {
	return func(p *Pipeline) {
		if len(contacts) > 0 {
			p.matcher = names.NewMatcher(contacts)
		}
	}
}

// Pipeline is the deterministic fast path: normalizer, date/time resolver,
// intent classifier, contact normalizer, and display cleaner in sequence.
// Stateless per request and safe for concurrent use.
type Pipeline struct {
	res     *datetime.Resolver
	cleaner *display.Cleaner
	matcher *names.Matcher
	clock   func() time.Time
}

// NewPipeline returns a pipeline resolving in loc.
func NewPipeline(loc *time.Location, opts ...PipelineOption) *Pipeline {
	res := datetime.NewResolver(loc)
	p := &Pipeline{
		res:     res,
		cleaner: display.NewCleaner(res),
		clock:   time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Resolve runs the fast path over text. It never fails: an utterance nothing
// matches still resolves to a default reminder at base confidence.
func (p *Pipeline) Resolve(text string, lang types.Language) FastResult {
	now := p.clock().In(p.res.Location())

	normalized, changed := normalize.Normalize(text, lang)
	corrected := ""
	if changed {
		corrected = normalized
	}

	dt := p.res.Resolve(normalized, now, lang)
	it := intent.Classify(normalized, lang, dt.HasTime)

	if actions, ok := p.trySplit(normalized, lang, dt, it, corrected); ok {
		return p.finish(&types.Resolution{Multi: types.NewMultiAction(actions)}, dt, it)
	}

	action := types.ParsedAction{
		Kind:           it.Kind,
		HasTime:        dt.HasTime,
		Language:       lang,
		CorrectedInput: corrected,
	}

	// Start is set only when a date or time rule actually matched,
	// midnight-anchored when only a date was found. Utterances with no
	// temporal expression at all stay undated.
	hasDue := dt.HasTime || dt.HasDay()
	if hasDue {
		action.Start = types.NewOffsetTime(dt.Start)
	}
	if it.Kind == types.KindCalendar && dt.HasTime {
		action.End = types.NewOffsetTime(dt.Start.Add(calendarDefaultDuration))
	}

	desc, removed := p.cleaner.Clean(normalized, lang, it.TriggerSpan, dt.Start, hasDue)
	action.Description = desc

	switch it.Kind {
	case types.KindShopping:
		action.Items = it.Items
	case types.KindCallContact:
		action.ContactName = it.ContactName
		normalizedName := names.Normalize(it.ContactName, lang)
		if p.matcher != nil {
			if match, _, ok := p.matcher.Match(normalizedName); ok {
				normalizedName = match
			}
		}
		action.ContactNormalized = normalizedName
	}

	res := FastResult{
		Resolution:            &types.Resolution{Action: &action},
		AMPMDecision:          dt.AMPMDecision,
		UsedTriggers:          it.Triggers,
		DescTimeTokensRemoved: removed,
		NeedsContext:          it.NeedsContext,
	}
	return p.score(res, dt, it)
}

// finish packages a multi-action resolution with its score and metadata.
func (p *Pipeline) finish(resolution *types.Resolution, dt datetime.Result, it intent.Result) FastResult {
	removed := false
	for _, a := range resolution.Multi.Actions {
		if a.HasTime {
			removed = true
			break
		}
	}
	res := FastResult{
		Resolution:            resolution,
		AMPMDecision:          dt.AMPMDecision,
		UsedTriggers:          it.Triggers,
		DescTimeTokensRemoved: removed,
		NeedsContext:          it.NeedsContext,
	}
	return p.score(res, dt, it)
}

func (p *Pipeline) score(res FastResult, dt datetime.Result, it intent.Result) FastResult {
	res.Signals = Signals{
		HasTime: dt.HasTime,
		HasDay:  dt.HasDay(),
		HasType: it.Trigger != "",
	}
	res.Confidence = res.Signals.Score()
	return res
}

// trySplit turns a reminder with two or more explicit clock times into a
// multi-action: one reminder per time, all sharing the resolved date. Only
// reminders split; calendar events and shopping lists with several times stay
// single actions.
func (p *Pipeline) trySplit(normalized string, lang types.Language, dt datetime.Result, it intent.Result, corrected string) ([]types.ParsedAction, bool) {
	if it.Kind != types.KindReminder || it.Inbox {
		return nil, false
	}

	lower := strings.ToLower(normalized)
	mentions := p.res.ExtractTimes(lower, lang)
	if len(mentions) < 2 {
		return nil, false
	}

	y, m, d := dt.Date.Base.Date()
	loc := p.res.Location()

	actions := make([]types.ParsedAction, 0, len(mentions))
	for i, mention := range mentions {
		segStart := 0
		if i > 0 {
			segStart = mention.Span.Start
		}
		segEnd := len(normalized)
		if i+1 < len(mentions) {
			segEnd = mentions[i+1].Span.Start
		}
		segment := strings.TrimSpace(normalized[segStart:segEnd])

		trigger := datetime.Span{}
		if i == 0 && it.TriggerSpan.End <= segEnd {
			trigger = it.TriggerSpan
		}

		start := time.Date(y, m, d, mention.Time.Hour, mention.Time.Minute, 0, 0, loc)
		desc, _ := p.cleaner.Clean(segment, lang, trigger, start, true)

		actions = append(actions, types.ParsedAction{
			Kind:           types.KindReminder,
			Description:    desc,
			Start:          types.NewOffsetTime(start),
			HasTime:        true,
			Language:       lang,
			CorrectedInput: corrected,
		})
	}
	return actions, true
}
