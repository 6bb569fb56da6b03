package resolve

import (
	"strings"
	"time"

	"github.com/kkarklins/balss/internal/goldlog"
	"github.com/kkarklins/balss/pkg/types"
)

// startTolerance is how far apart two start timestamps may be before the
// difference counts as high severity.
const startTolerance = 5 * time.Minute

// Compare diffs the fast-path and teacher resolutions field by field.
// Returns nil when they agree. Severity is the worst differing field: kind
// and start are high, structural fields mid, wording low.
func Compare(fast, teacher *types.Resolution) *goldlog.Discrepancies {
	var tags []string
	severity := goldlog.Severity("")

	record := func(tag string, sev goldlog.Severity) {
		tags = append(tags, tag)
		if worse(sev, severity) {
			severity = sev
		}
	}

	if fast.Kind() != teacher.Kind() {
		record("kind", goldlog.SeverityHigh)
	}

	if fast.Multi != nil && teacher.Multi != nil &&
		len(fast.Multi.Actions) != len(teacher.Multi.Actions) {
		record("actions", goldlog.SeverityHigh)
	}

	compareActions(fast.First(), teacher.First(), record)

	if len(tags) == 0 {
		return nil
	}
	return &goldlog.Discrepancies{Severity: severity, Tags: tags}
}

func compareActions(a, b *types.ParsedAction, record func(string, goldlog.Severity)) {
	if a == nil || b == nil {
		if a != b {
			record("actions", goldlog.SeverityHigh)
		}
		return
	}

	if !sameInstant(a.Start, b.Start, startTolerance) {
		record("start", goldlog.SeverityHigh)
	}
	if a.HasTime != b.HasTime {
		record("has_time", goldlog.SeverityMid)
	}
	if !sameInstant(a.End, b.End, startTolerance) {
		record("end", goldlog.SeverityMid)
	}
	if !sameItems(a.Items, b.Items) {
		record("items", goldlog.SeverityMid)
	}
	if !equalFold(a.ContactNormalized, b.ContactNormalized) {
		record("contact", goldlog.SeverityMid)
	}
	if !equalFold(a.Description, b.Description) {
		record("description", goldlog.SeverityLow)
	}
}

// worse reports whether a outranks b.
func worse(a, b goldlog.Severity) bool {
	return rank(a) > rank(b)
}

func rank(s goldlog.Severity) int {
	switch s {
	case goldlog.SeverityHigh:
		return 3
	case goldlog.SeverityMid:
		return 2
	case goldlog.SeverityLow:
		return 1
	}
	return 0
}

// sameInstant treats two timestamps as equal when both are absent or within
// tolerance of each other.
func sameInstant(a, b *types.OffsetTime, tolerance time.Duration) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	d := a.Sub(b.Time)
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}

// sameItems compares item lists ignoring order and case.
func sameItems(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, it := range a {
		seen[strings.ToLower(strings.TrimSpace(it))]++
	}
	for _, it := range b {
		key := strings.ToLower(strings.TrimSpace(it))
		if seen[key] == 0 {
			return false
		}
		seen[key]--
	}
	return true
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
