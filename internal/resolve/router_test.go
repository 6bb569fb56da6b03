package resolve_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/kkarklins/balss/internal/goldlog"
	"github.com/kkarklins/balss/internal/resolve"
	"github.com/kkarklins/balss/pkg/types"
)

type fakeTeacher struct {
	mu     sync.Mutex
	result *types.Resolution
	err    error
	calls  int
}

func (f *fakeTeacher) Resolve(_ context.Context, _ string, _ time.Time, _ types.Language) (*types.Resolution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeTeacher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type memorySink struct {
	mu      sync.Mutex
	entries []goldlog.Entry
}

func (s *memorySink) Append(_ context.Context, e goldlog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *memorySink) all() []goldlog.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]goldlog.Entry(nil), s.entries...)
}

// drain flushes asynchronous gold-log appends before assertions.
func drain(t *testing.T, r *resolve.Router) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Drain(ctx); err != nil {
		t.Fatalf("drain: %v", err)
	}
}

// Confident fast-path input: full signal set scores 0.95.
const confidentText = "atgādini man rīt pulksten 15:00 izņemt veļu"

// Weak input: no time, no day, no trigger; scores 0.85 and escalates.
const weakText = "izņemt veļu"

func newRouter(t *testing.T, tc *fakeTeacher, sink goldlog.Sink, opts ...resolve.RouterOption) *resolve.Router {
	t.Helper()
	clock, _ := fixtureClock(t)
	opts = append([]resolve.RouterOption{resolve.WithRouterClock(clock)}, opts...)
	if tc != nil {
		opts = append(opts, resolve.WithTeacher(tc))
	}
	return resolve.NewRouter(newPipeline(t), sink, slog.Default(), opts...)
}

func TestRouter_ConfidentResultSkipsTeacher(t *testing.T) {
	t.Parallel()

	tc := &fakeTeacher{}
	sink := &memorySink{}
	r := newRouter(t, tc, sink)

	resp := r.Resolve(context.Background(), confidentText, types.LanguageLatvian)
	drain(t, r)

	if resp.Decision != goldlog.DecisionFastPath {
		t.Errorf("Decision = %q, want v3", resp.Decision)
	}
	if tc.callCount() != 0 {
		t.Errorf("teacher calls = %d, want 0", tc.callCount())
	}

	entries := sink.all()
	if len(entries) != 1 {
		t.Fatalf("gold log entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Decision != goldlog.DecisionFastPath {
		t.Errorf("entry decision = %q, want v3", e.Decision)
	}
	if e.TeacherResult != nil {
		t.Error("entry teacher result should be null when not consulted")
	}
	if e.ConfidenceAfter != 0.95 {
		t.Errorf("entry confidence = %v, want 0.95", e.ConfidenceAfter)
	}
	if e.ASRText != confidentText {
		t.Errorf("entry asr text = %q", e.ASRText)
	}
}

func TestRouter_TeacherAgreement(t *testing.T) {
	t.Parallel()

	sink := &memorySink{}
	pipeline := newPipeline(t)
	fast := pipeline.Resolve(weakText, types.LanguageLatvian)

	// Teacher echoes the fast-path result: consulted, no override.
	tc := &fakeTeacher{result: fast.Resolution}
	r := newRouter(t, tc, sink)

	resp := r.Resolve(context.Background(), weakText, types.LanguageLatvian)
	drain(t, r)

	if tc.callCount() != 1 {
		t.Fatalf("teacher calls = %d, want 1", tc.callCount())
	}
	if resp.Decision != goldlog.DecisionTeacher {
		t.Errorf("Decision = %q, want teacher", resp.Decision)
	}

	entries := sink.all()
	if len(entries) != 1 {
		t.Fatalf("gold log entries = %d, want 1", len(entries))
	}
	if entries[0].Discrepancies != nil {
		t.Errorf("Discrepancies = %+v, want nil on agreement", entries[0].Discrepancies)
	}
	if entries[0].TeacherResult == nil {
		t.Error("entry teacher result missing")
	}
}

func TestRouter_TeacherOverride(t *testing.T) {
	t.Parallel()

	sink := &memorySink{}
	clock, _ := fixtureClock(t)
	taught := &types.Resolution{Action: &types.ParsedAction{
		Kind:        types.KindShopping,
		Description: "Veļa",
		Items:       []string{"veļa"},
		Language:    types.LanguageLatvian,
	}}
	tc := &fakeTeacher{result: taught}
	r := newRouter(t, tc, sink, resolve.WithRouterClock(clock))

	resp := r.Resolve(context.Background(), weakText, types.LanguageLatvian)
	drain(t, r)

	if resp.Decision != goldlog.DecisionTeacherOverride {
		t.Errorf("Decision = %q, want teacher_override", resp.Decision)
	}
	if resp.Resolution != taught {
		t.Error("response should carry the teacher's resolution")
	}

	entries := sink.all()
	if len(entries) != 1 {
		t.Fatalf("gold log entries = %d, want 1", len(entries))
	}
	d := entries[0].Discrepancies
	if d == nil || d.Severity != goldlog.SeverityHigh {
		t.Errorf("Discrepancies = %+v, want high severity", d)
	}
}

func TestRouter_TeacherFailureDegradesToFastPath(t *testing.T) {
	t.Parallel()

	sink := &memorySink{}
	tc := &fakeTeacher{err: errors.New("backend down")}
	r := newRouter(t, tc, sink)

	resp := r.Resolve(context.Background(), weakText, types.LanguageLatvian)
	drain(t, r)

	if resp.Decision != goldlog.DecisionFastPath {
		t.Errorf("Decision = %q, want v3 after teacher failure", resp.Decision)
	}
	if resp.Resolution == nil || resp.Resolution.First().Description == "" {
		t.Error("fast-path result missing after degradation")
	}

	entries := sink.all()
	if len(entries) != 1 {
		t.Fatalf("gold log entries = %d, want 1", len(entries))
	}
	if entries[0].TeacherResult != nil {
		t.Error("entry teacher result should be null after failure")
	}
	if entries[0].Decision != goldlog.DecisionFastPath {
		t.Errorf("entry decision = %q, want v3", entries[0].Decision)
	}
}

func TestRouter_NoTeacherConfigured(t *testing.T) {
	t.Parallel()

	sink := &memorySink{}
	r := newRouter(t, nil, sink)

	resp := r.Resolve(context.Background(), weakText, types.LanguageLatvian)
	drain(t, r)

	if resp.Decision != goldlog.DecisionFastPath {
		t.Errorf("Decision = %q, want v3 without a teacher", resp.Decision)
	}
	if len(sink.all()) != 1 {
		t.Errorf("gold log entries = %d, want 1", len(sink.all()))
	}
}

func TestRouter_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	t.Parallel()

	sink := &memorySink{}
	tc := &fakeTeacher{err: errors.New("backend down")}
	r := newRouter(t, tc, sink)

	// Default breaker opens after 5 consecutive failures; later requests
	// must not reach the teacher.
	for i := 0; i < 8; i++ {
		r.Resolve(context.Background(), weakText, types.LanguageLatvian)
	}
	drain(t, r)

	if tc.callCount() != 5 {
		t.Errorf("teacher calls = %d, want 5 before the breaker opened", tc.callCount())
	}
	if len(sink.all()) != 8 {
		t.Errorf("gold log entries = %d, want one per request", len(sink.all()))
	}
}

func TestRouter_NeedsContextForcesEscalation(t *testing.T) {
	t.Parallel()

	// Full signal set scores 0.95, but the trailing "as usual" references
	// missing context and must reach the teacher anyway.
	const text = confidentText + " kā parasti"

	sink := &memorySink{}
	pipeline := newPipeline(t)
	fast := pipeline.Resolve(text, types.LanguageLatvian)
	if fast.Confidence < 0.92 {
		t.Fatalf("Confidence = %v, fixture must score above the threshold", fast.Confidence)
	}

	tc := &fakeTeacher{result: fast.Resolution}
	r := newRouter(t, tc, sink)

	resp := r.Resolve(context.Background(), text, types.LanguageLatvian)
	drain(t, r)

	if tc.callCount() != 1 {
		t.Fatalf("teacher calls = %d, want 1 despite high confidence", tc.callCount())
	}
	if resp.Decision != goldlog.DecisionTeacher {
		t.Errorf("Decision = %q, want teacher", resp.Decision)
	}
	entries := sink.all()
	if len(entries) != 1 || entries[0].TeacherResult == nil {
		t.Fatalf("gold log entries = %+v, want one with a teacher result", entries)
	}
}

func TestRouter_TeacherHealthy(t *testing.T) {
	t.Parallel()

	if err := newRouter(t, nil, &memorySink{}).TeacherHealthy(); err == nil {
		t.Error("TeacherHealthy() = nil without a teacher, want error")
	}

	tc := &fakeTeacher{err: errors.New("backend down")}
	r := newRouter(t, tc, &memorySink{})
	if err := r.TeacherHealthy(); err != nil {
		t.Errorf("TeacherHealthy() = %v before failures, want nil", err)
	}

	// Drive the breaker open; health must report the outage.
	for i := 0; i < 5; i++ {
		r.Resolve(context.Background(), weakText, types.LanguageLatvian)
	}
	drain(t, r)
	if err := r.TeacherHealthy(); err == nil {
		t.Error("TeacherHealthy() = nil with the circuit open, want error")
	}
}

func TestRouter_EveryRequestLogsExactlyOnce(t *testing.T) {
	t.Parallel()

	sink := &memorySink{}
	tc := &fakeTeacher{result: &types.Resolution{Action: &types.ParsedAction{
		Kind:        types.KindReminder,
		Description: "X",
		Language:    types.LanguageLatvian,
	}}}
	r := newRouter(t, tc, sink)

	inputs := []string{confidentText, weakText, "osta piima ja leiba"}
	for _, text := range inputs {
		r.Resolve(context.Background(), text, types.LanguageLatvian)
	}
	drain(t, r)

	if got := len(sink.all()); got != len(inputs) {
		t.Errorf("gold log entries = %d, want %d", got, len(inputs))
	}
}
