package goldlog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// AgreementSource is implemented by sinks that can report agreement stats.
// *PostgresSink satisfies this.
type AgreementSource interface {
	Agreement(ctx context.Context, since time.Time) (AgreementReport, error)
}

var _ AgreementSource = (*PostgresSink)(nil)

// Summarizer logs a periodic fast-path/teacher agreement summary. The
// schedule is a standard 5-field cron expression evaluated in the given
// location; each run covers the window since the previous run.
type Summarizer struct {
	source AgreementSource
	sched  cron.Schedule
	loc    *time.Location
	log    *slog.Logger
}

// NewSummarizer parses schedule and returns a stopped summarizer. Call
// [Summarizer.Run] to start it.
func NewSummarizer(source AgreementSource, schedule string, loc *time.Location, log *slog.Logger) (*Summarizer, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		return nil, fmt.Errorf("goldlog: parse summary schedule %q: %w", schedule, err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Summarizer{
		source: source,
		sched:  sched,
		loc:    loc,
		log:    log,
	}, nil
}

// Run executes the schedule until ctx is cancelled. Blocking; callers run it
// in a goroutine or an errgroup. Always returns ctx.Err().
func (s *Summarizer) Run(ctx context.Context) error {
	last := time.Now().In(s.loc)
	for {
		next := s.sched.Next(last)
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		s.Summarize(ctx, last)
		last = next
	}
}

// Summarize queries agreement stats since the given instant and logs them.
// Errors are logged, not returned; a failed summary never stops the loop.
func (s *Summarizer) Summarize(ctx context.Context, since time.Time) {
	report, err := s.source.Agreement(ctx, since)
	if err != nil {
		s.log.Error("gold log summary failed", "error", err)
		return
	}
	s.log.Info("gold log agreement summary",
		"since", since.Format(time.RFC3339),
		"total", report.Total,
		"escalated", report.Escalated,
		"overrides", report.Overrides,
		"agreement_rate", fmt.Sprintf("%.3f", report.AgreementRate()),
		"high", report.BySeverity[SeverityHigh],
		"mid", report.BySeverity[SeverityMid],
		"low", report.BySeverity[SeverityLow],
	)
}
