// Package goldlog records the audit trail comparing fast-path and teacher
// resolutions.
//
// Every resolved request produces exactly one immutable entry, escalated or
// not. The log is append-only from the resolver's perspective; analysis
// happens out-of-band and must never block live resolution. Sink failures
// are non-fatal by contract: the router logs and continues.
package goldlog

import (
	"context"
	"time"

	"github.com/kkarklins/balss/pkg/types"
)

// Decision records which path produced the response returned to the caller.
type Decision string

const (
	// DecisionFastPath means the deterministic result was confident enough
	// and the teacher was never consulted.
	DecisionFastPath Decision = "v3"

	// DecisionTeacher means the teacher was consulted and agreed with the
	// fast path (no discrepancy above low severity).
	DecisionTeacher Decision = "teacher"

	// DecisionTeacherOverride means the teacher was consulted and its result
	// replaced a materially different fast-path result.
	DecisionTeacherOverride Decision = "teacher_override"
)

// Severity classifies how much the two paths disagreed.
type Severity string

const (
	// SeverityHigh: the action kind differs or start times are more than
	// five minutes apart.
	SeverityHigh Severity = "high"

	// SeverityMid: minor field differences (end, items, contact).
	SeverityMid Severity = "mid"

	// SeverityLow: semantically equivalent outputs with textual differences
	// only.
	SeverityLow Severity = "low"
)

// Discrepancies is the structured field-by-field comparison outcome.
type Discrepancies struct {
	Severity Severity `json:"severity"`

	// Tags name the differing fields ("kind", "start", "end", "items",
	// "description", ...).
	Tags []string `json:"tags"`
}

// Entry is one gold-log row. Created once per resolved request and immutable
// thereafter. TeacherResult and Discrepancies are null when the teacher was
// not consulted or did not answer.
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	ASRText   string         `json:"asr_text"`
	Language  types.Language `json:"language"`
	Decision  Decision       `json:"decision"`

	V3Result      *types.Resolution `json:"v3_result"`
	TeacherResult *types.Resolution `json:"teacher_result"`
	Discrepancies *Discrepancies    `json:"discrepancies"`

	ConfidenceAfter float64 `json:"confidence_after"`

	// AMPMDecision records how an ambiguous hour was banded, empty when no
	// banding was needed.
	AMPMDecision string `json:"am_pm_decision,omitempty"`

	UsedTriggers []string `json:"used_triggers"`

	// DescHadTimeTokensRemoved reports whether the display cleaner stripped
	// date/time tokens from the description.
	DescHadTimeTokensRemoved bool `json:"desc_had_time_tokens_removed"`
}

// Sink persists gold-log entries. Append must be safe under concurrent
// writers; failures are non-fatal to callers.
type Sink interface {
	Append(ctx context.Context, e Entry) error
}

// multiSink fans an entry out to several sinks, returning the first error
// after attempting all of them.
type multiSink []Sink

// MultiSink combines sinks into one. Every sink sees every entry even when
// an earlier one fails.
func MultiSink(sinks ...Sink) Sink {
	return multiSink(sinks)
}

func (m multiSink) Append(ctx context.Context, e Entry) error {
	var first error
	for _, s := range m {
		if err := s.Append(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}
