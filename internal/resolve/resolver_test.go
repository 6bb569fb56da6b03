package resolve_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/kkarklins/balss/internal/resolve"
	"github.com/kkarklins/balss/pkg/types"
)

// Fixture instant: Wednesday 2026-03-04 10:00 in Riga (EET, +02:00).
func fixtureClock(t *testing.T) (func() time.Time, *time.Location) {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Riga")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, loc)
	return func() time.Time { return now }, loc
}

func newPipeline(t *testing.T, opts ...resolve.PipelineOption) *resolve.Pipeline {
	t.Helper()
	clock, loc := fixtureClock(t)
	return resolve.NewPipeline(loc, append([]resolve.PipelineOption{resolve.WithClock(clock)}, opts...)...)
}

func TestPipeline_TimedReminderLatvian(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	res := p.Resolve("atgādini man rīt pulksten 15:00 izņemt veļu", types.LanguageLatvian)

	a := res.Resolution.Action
	if a == nil {
		t.Fatal("want single action")
	}
	if a.Kind != types.KindReminder {
		t.Errorf("Kind = %q, want reminder", a.Kind)
	}
	if a.Description != "Izņemt veļu" {
		t.Errorf("Description = %q, want %q", a.Description, "Izņemt veļu")
	}
	if !a.HasTime {
		t.Error("HasTime = false, want true")
	}
	wantStart := "2026-03-05T15:00:00+02:00"
	if got := a.Start.Format("2006-01-02T15:04:05-07:00"); got != wantStart {
		t.Errorf("Start = %s, want %s", got, wantStart)
	}
	if res.Confidence != 0.95 {
		t.Errorf("Confidence = %v, want 0.95", res.Confidence)
	}
	if len(res.UsedTriggers) == 0 || res.UsedTriggers[0] != "atgādini" {
		t.Errorf("UsedTriggers = %v, want atgādini first", res.UsedTriggers)
	}
	if !res.DescTimeTokensRemoved {
		t.Error("DescTimeTokensRemoved = false, want true")
	}
}

func TestPipeline_CallContactEstonianWordHour(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	res := p.Resolve("helista emale homme kell viis", types.LanguageEstonian)

	a := res.Resolution.Action
	if a.Kind != types.KindCallContact {
		t.Fatalf("Kind = %q, want call_contact", a.Kind)
	}
	if a.ContactName != "emale" {
		t.Errorf("ContactName = %q, want spoken form kept", a.ContactName)
	}
	if a.ContactNormalized != "ema" {
		t.Errorf("ContactNormalized = %q, want %q", a.ContactNormalized, "ema")
	}
	// "viis" after "kell" is ambiguous hour 5, banded to afternoon.
	wantStart := "2026-03-05T17:00:00+02:00"
	if got := a.Start.Format("2006-01-02T15:04:05-07:00"); got != wantStart {
		t.Errorf("Start = %s, want %s", got, wantStart)
	}
	if res.AMPMDecision != "5->17 (default pm)" {
		t.Errorf("AMPMDecision = %q", res.AMPMDecision)
	}
}

func TestPipeline_ContactMatchedAgainstKnownContacts(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, resolve.WithContacts([]string{"Janis Berzins", "Anna Ozola"}))
	res := p.Resolve("piezvani Janis", types.LanguageLatvian)

	a := res.Resolution.Action
	if a.Kind != types.KindCallContact {
		t.Fatalf("Kind = %q, want call_contact", a.Kind)
	}
	if a.ContactNormalized != "Janis Berzins" {
		t.Errorf("ContactNormalized = %q, want matched contact", a.ContactNormalized)
	}
}

func TestPipeline_UndatedCallHasNoStart(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	res := p.Resolve("piezvani Jānim par budžetu", types.LanguageLatvian)

	a := res.Resolution.Action
	if a.Kind != types.KindCallContact {
		t.Fatalf("Kind = %q, want call_contact", a.Kind)
	}
	// No date or time rule matched, so no timestamp may be invented.
	if a.Start != nil {
		t.Errorf("Start = %v, want nil", a.Start.Time)
	}
	if a.End != nil {
		t.Errorf("End = %v, want nil", a.End.Time)
	}
	if a.HasTime {
		t.Error("HasTime = true, want false")
	}
}

func TestPipeline_UndatedReminderHasNoStart(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	res := p.Resolve("izņemt veļu", types.LanguageLatvian)

	a := res.Resolution.Action
	if a.Kind != types.KindReminder {
		t.Fatalf("Kind = %q, want reminder", a.Kind)
	}
	if a.Start != nil {
		t.Errorf("Start = %v, want nil", a.Start.Time)
	}
}

func TestPipeline_NeedsContextFlag(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	tests := []struct {
		text string
		lang types.Language
		want bool
	}{
		{"atgādini man rīt pulksten 15:00 izņemt veļu kā parasti", types.LanguageLatvian, true},
		{"nopirkt to pašu", types.LanguageLatvian, true},
		{"tuleta mulle meelde homme kell viis nagu tavaliselt", types.LanguageEstonian, true},
		{"atgādini man rīt pulksten 15:00 izņemt veļu", types.LanguageLatvian, false},
		{"osta piima ja leiba", types.LanguageEstonian, false},
	}
	for _, tc := range tests {
		res := p.Resolve(tc.text, tc.lang)
		if res.NeedsContext != tc.want {
			t.Errorf("Resolve(%q): NeedsContext = %v, want %v", tc.text, res.NeedsContext, tc.want)
		}
	}
}

func TestPipeline_CalendarGetsDefaultEnd(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	res := p.Resolve("tikšanās rīt pulksten 15:00", types.LanguageLatvian)

	a := res.Resolution.Action
	if a.Kind != types.KindCalendar {
		t.Fatalf("Kind = %q, want calendar", a.Kind)
	}
	if a.End == nil {
		t.Fatal("End = nil, want start + 1h")
	}
	if got := a.End.Sub(a.Start.Time); got != time.Hour {
		t.Errorf("End - Start = %v, want 1h", got)
	}
}

func TestPipeline_ShoppingItems(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	res := p.Resolve("osta piima ja leiba", types.LanguageEstonian)

	a := res.Resolution.Action
	if a.Kind != types.KindShopping {
		t.Fatalf("Kind = %q, want shopping", a.Kind)
	}
	if want := []string{"piima", "leiba"}; !reflect.DeepEqual(a.Items, want) {
		t.Errorf("Items = %v, want %v", a.Items, want)
	}
	// No time, no day; only the trigger contributes.
	if res.Confidence != 0.88 {
		t.Errorf("Confidence = %v, want 0.88", res.Confidence)
	}
}

func TestPipeline_InboxNoteHasNoStart(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	res := p.Resolve("pieraksti ideja par projektu", types.LanguageLatvian)

	a := res.Resolution.Action
	if a.Kind != types.KindReminder {
		t.Fatalf("Kind = %q, want reminder", a.Kind)
	}
	if a.Start != nil {
		t.Errorf("Start = %v, want nil for an undated note", a.Start)
	}
	if a.HasTime {
		t.Error("HasTime = true, want false")
	}
}

func TestPipeline_SplitsReminderWithTwoTimes(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	res := p.Resolve("atgādini man rīt 15:00 izņemt veļu un 18:00 piezvanīt Jānim", types.LanguageLatvian)

	if res.Resolution.Multi == nil {
		t.Fatalf("want multi action, got single: %+v", res.Resolution.Action)
	}
	actions := res.Resolution.Multi.Actions
	if len(actions) != 2 {
		t.Fatalf("actions = %d, want 2", len(actions))
	}

	if actions[0].Description != "Izņemt veļu" {
		t.Errorf("actions[0].Description = %q", actions[0].Description)
	}
	if actions[1].Description != "Piezvanīt Jānim" {
		t.Errorf("actions[1].Description = %q", actions[1].Description)
	}
	// Both share the resolved day.
	for i, want := range []string{"2026-03-05T15:00:00+02:00", "2026-03-05T18:00:00+02:00"} {
		if got := actions[i].Start.Format("2006-01-02T15:04:05-07:00"); got != want {
			t.Errorf("actions[%d].Start = %s, want %s", i, got, want)
		}
		if !actions[i].HasTime {
			t.Errorf("actions[%d].HasTime = false", i)
		}
		if actions[i].Kind != types.KindReminder {
			t.Errorf("actions[%d].Kind = %q", i, actions[i].Kind)
		}
	}
}

func TestPipeline_CalendarWithTwoTimesStaysSingle(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	res := p.Resolve("tikšanās rīt 15:00 un 18:00", types.LanguageLatvian)

	if res.Resolution.Multi != nil {
		t.Fatal("calendar events must not split")
	}
	if res.Resolution.Action.Kind != types.KindCalendar {
		t.Errorf("Kind = %q, want calendar", res.Resolution.Action.Kind)
	}
}

func TestPipeline_NormalizerFeedsDownstream(t *testing.T) {
	t.Parallel()

	// "sodien" without the diacritic would not resolve as today; the
	// normalizer restores it before date resolution.
	p := newPipeline(t)
	res := p.Resolve("atgadini man sodien pulksten 15:00 izņemt veļu", types.LanguageLatvian)

	a := res.Resolution.Action
	if a.CorrectedInput == "" {
		t.Error("CorrectedInput empty, want the normalized text recorded")
	}
	wantStart := "2026-03-04T15:00:00+02:00"
	if got := a.Start.Format("2006-01-02T15:04:05-07:00"); got != wantStart {
		t.Errorf("Start = %s, want %s", got, wantStart)
	}
}

func TestPipeline_Deterministic(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	const text = "atgādini man piektdien vakarā aiziet uz veikalu"

	first := p.Resolve(text, types.LanguageLatvian)
	second := p.Resolve(text, types.LanguageLatvian)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same input resolved differently:\n%+v\n%+v", first, second)
	}
}

func TestPipeline_ConfidenceStaysInBand(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	inputs := []struct {
		text string
		lang types.Language
	}{
		{"atgādini man rīt pulksten 15:00 izņemt veļu", types.LanguageLatvian},
		{"izņemt veļu", types.LanguageLatvian},
		{"osta piima ja leiba", types.LanguageEstonian},
		{"", types.LanguageLatvian},
		{"xyzzy plugh", types.LanguageEstonian},
	}
	for _, in := range inputs {
		res := p.Resolve(in.text, in.lang)
		if res.Confidence < 0.85 || res.Confidence > 0.95 {
			t.Errorf("Resolve(%q): confidence %v outside [0.85, 0.95]", in.text, res.Confidence)
		}
	}
}

func TestPipeline_DescriptionNeverEmpty(t *testing.T) {
	t.Parallel()

	p := newPipeline(t)
	inputs := []struct {
		text string
		lang types.Language
	}{
		{"atgādini man rīt pulksten 15:00", types.LanguageLatvian}, // trigger and time only
		{"rīt 15:00", types.LanguageLatvian},
		{"homme kell viis", types.LanguageEstonian},
	}
	for _, in := range inputs {
		res := p.Resolve(in.text, in.lang)
		if res.Resolution.First().Description == "" {
			t.Errorf("Resolve(%q): empty description", in.text)
		}
	}
}
