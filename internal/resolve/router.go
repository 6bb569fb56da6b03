package resolve

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/kkarklins/balss/internal/goldlog"
	"github.com/kkarklins/balss/internal/observe"
	"github.com/kkarklins/balss/internal/resilience"
	"github.com/kkarklins/balss/internal/resolve/teacher"
	"github.com/kkarklins/balss/pkg/types"
)

// defaultThreshold is the confidence at or above which the fast-path result
// is accepted without escalation.
const defaultThreshold = 0.92

// appendTimeout bounds each asynchronous gold-log write.
const appendTimeout = 10 * time.Second

// TeacherResolver is the escalation backend. *teacher.Resolver satisfies
// this.
type TeacherResolver interface {
	Resolve(ctx context.Context, text string, now time.Time, lang types.Language) (*types.Resolution, error)
}

var _ TeacherResolver = (*teacher.Resolver)(nil)

// Response is the routed outcome for one request.
type Response struct {
	Resolution *types.Resolution
	Decision   goldlog.Decision
	Confidence float64
}

// RouterOption is a functional option for configuring a [Router].
type RouterOption func(*Router)

// WithThreshold sets the escalation threshold. Values outside [0.85, 0.95]
// are clamped into the calibrated score band.
func WithThreshold(t float64) RouterOption {
	return func(r *Router) {
		r.threshold = min(max(t, confidenceBase), confidenceCap)
	}
}

// WithTeacher enables escalation through tr, guarded by a circuit breaker.
// Without it every request is answered by the fast path.
func WithTeacher(tr TeacherResolver) RouterOption {
	return func(r *Router) {
		r.teacher = tr
	}
}

// WithMetrics overrides the metrics instance, mainly for tests.
func WithMetrics(m *observe.Metrics) RouterOption {
	return func(r *Router) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithRouterClock overrides the router's time source for deterministic tests.
// The pipeline carries its own clock; both should be set together.
func WithRouterClock(clock func() time.Time) RouterOption {
	return func(r *Router) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// Router decides per request whether the fast-path result stands or the
// teacher is consulted, and writes one gold-log entry either way. Safe for
// concurrent use.
type Router struct {
	fast      *Pipeline
	teacher   TeacherResolver
	breaker   *resilience.CircuitBreaker
	sink      goldlog.Sink
	metrics   *observe.Metrics
	threshold float64
	clock     func() time.Time
	log       *slog.Logger

	appends sync.WaitGroup
}

// NewRouter wires the fast path and gold-log sink into a router.
func NewRouter(fast *Pipeline, sink goldlog.Sink, log *slog.Logger, opts ...RouterOption) *Router {
	if log == nil {
		log = slog.Default()
	}
	r := &Router{
		fast:      fast,
		breaker:   resilience.NewCircuitBreaker("teacher"),
		sink:      sink,
		metrics:   observe.DefaultMetrics(),
		threshold: defaultThreshold,
		clock:     time.Now,
		log:       log,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve answers text. The fast path always runs; the teacher is consulted
// below the confidence threshold or when the utterance raised the
// hard-ambiguity flag, and its failures degrade back to the fast-path
// result. Exactly one gold-log entry is recorded per call, asynchronously so
// a slow sink never delays the response.
func (r *Router) Resolve(ctx context.Context, text string, lang types.Language) Response {
	started := r.clock()

	fast := r.fast.Resolve(text, lang)
	r.metrics.Confidence.Record(ctx, fast.Confidence)

	entry := goldlog.Entry{
		Timestamp:                started,
		ASRText:                  text,
		Language:                 lang,
		Decision:                 goldlog.DecisionFastPath,
		V3Result:                 fast.Resolution,
		ConfidenceAfter:          fast.Confidence,
		AMPMDecision:             fast.AMPMDecision,
		UsedTriggers:             fast.UsedTriggers,
		DescHadTimeTokensRemoved: fast.DescTimeTokensRemoved,
	}

	resp := Response{
		Resolution: fast.Resolution,
		Decision:   goldlog.DecisionFastPath,
		Confidence: fast.Confidence,
	}

	// A sub-threshold score or the hard-ambiguity flag both force a
	// consultation.
	if r.teacher != nil && (fast.Confidence < r.threshold || fast.NeedsContext) {
		if taught, ok := r.escalate(ctx, text, lang); ok {
			entry.TeacherResult = taught
			entry.Discrepancies = Compare(fast.Resolution, taught)

			resp.Resolution = taught
			resp.Decision = goldlog.DecisionTeacher
			if d := entry.Discrepancies; d != nil &&
				(d.Severity == goldlog.SeverityHigh || d.Severity == goldlog.SeverityMid) {
				resp.Decision = goldlog.DecisionTeacherOverride
			}
			entry.Decision = resp.Decision
		}
	}

	r.record(ctx, entry)
	r.metrics.RecordResolution(ctx, string(lang), string(resp.Resolution.Kind()), string(resp.Decision))
	r.metrics.ResolveDuration.Record(ctx, r.clock().Sub(started).Seconds())
	return resp
}

// escalate calls the teacher through the circuit breaker. All failures are
// non-fatal: the caller keeps the fast-path result and the entry records a
// null teacher result.
func (r *Router) escalate(ctx context.Context, text string, lang types.Language) (*types.Resolution, bool) {
	var taught *types.Resolution

	started := r.clock()
	err := r.breaker.Execute(func() error {
		var err error
		taught, err = r.teacher.Resolve(ctx, text, r.clock(), lang)
		return err
	})
	r.metrics.TeacherDuration.Record(ctx, r.clock().Sub(started).Seconds())

	if err != nil {
		reason := "unavailable"
		switch {
		case errors.Is(err, resilience.ErrOpen):
			reason = "circuit_open"
		case errors.Is(err, teacher.ErrTimeout):
			reason = "timeout"
		}
		r.metrics.RecordTeacherError(ctx, reason)
		r.log.Warn("escalation failed, serving fast-path result",
			"reason", reason, "error", err)
		return nil, false
	}
	return taught, true
}

// record appends the entry without blocking the caller. The write outlives
// request cancellation; a sink failure is logged and counted, never
// propagated.
func (r *Router) record(ctx context.Context, entry goldlog.Entry) {
	ctx = context.WithoutCancel(ctx)
	r.appends.Add(1)
	go func() {
		defer r.appends.Done()
		ctx, cancel := context.WithTimeout(ctx, appendTimeout)
		defer cancel()
		if err := r.sink.Append(ctx, entry); err != nil {
			r.metrics.GoldLogErrors.Add(ctx, 1)
			r.log.Error("gold log append failed", "error", err)
		}
	}()
}

// TeacherHealthy reports whether escalation is currently available. It fails
// when no teacher is configured or the circuit is open.
func (r *Router) TeacherHealthy() error {
	if r.teacher == nil {
		return errors.New("resolve: no teacher configured")
	}
	if r.breaker.State() == resilience.StateOpen {
		return errors.New("resolve: teacher circuit open")
	}
	return nil
}

// Drain waits for in-flight gold-log appends, bounded by ctx. Called during
// graceful shutdown.
func (r *Router) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.appends.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
