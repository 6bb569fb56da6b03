// Package types defines the shared types used across all Balss packages.
//
// These types form the lingua franca between the parsing pipeline, the
// escalation resolver, the gold log, and the HTTP layer. Each package defines
// its own intermediate types, but the cross-cutting action model lives here to
// avoid circular imports.
package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Language identifies a supported input language.
type Language string

const (
	// LanguageLatvian is the "lv" language tag.
	LanguageLatvian Language = "lv"

	// LanguageEstonian is the "et" language tag.
	LanguageEstonian Language = "et"
)

// ParseLanguage maps a language tag to a supported [Language].
// The second return value is false for unknown tags.
func ParseLanguage(tag string) (Language, bool) {
	switch Language(tag) {
	case LanguageLatvian, LanguageEstonian:
		return Language(tag), true
	}
	return "", false
}

// ActionKind enumerates the action types the resolver can produce.
type ActionKind string

const (
	// KindReminder is a timed or inbox-style reminder.
	KindReminder ActionKind = "reminder"

	// KindCalendar is a calendar event with a start and an end.
	KindCalendar ActionKind = "calendar"

	// KindShopping is a shopping-list addition.
	KindShopping ActionKind = "shopping"

	// KindCallContact is a request to call a person.
	KindCallContact ActionKind = "call_contact"

	// KindMultiple wraps an ordered sequence of reminders split from one
	// utterance.
	KindMultiple ActionKind = "multiple"
)

// timeLayout is the serialisation format for all resolved timestamps.
// The offset is always numeric (±HH:MM) — never a bare "Z" — so downstream
// consumers can recover the resolution zone without a lookup.
const timeLayout = "2006-01-02T15:04:05-07:00"

// OffsetTime is a timestamp that always serialises with an explicit numeric
// UTC offset. Carried by pointer on [ParsedAction] so absent timestamps
// marshal as omitted fields.
type OffsetTime struct {
	time.Time
}

// NewOffsetTime wraps t in an [OffsetTime]. The location of t is preserved.
func NewOffsetTime(t time.Time) *OffsetTime {
	return &OffsetTime{Time: t}
}

// MarshalJSON implements json.Marshaler using the fixed numeric-offset layout.
func (t OffsetTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(timeLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. It accepts the numeric-offset
// layout and plain RFC 3339 for tolerance when reading back logged rows.
func (t *OffsetTime) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("types: invalid timestamp %s", s)
	}
	s = s[1 : len(s)-1]
	parsed, err := time.Parse(timeLayout, s)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, s)
	}
	if err != nil {
		return fmt.Errorf("types: parse timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// ParsedAction is the resolver's output for a single task.
type ParsedAction struct {
	// Kind is the action type. Never KindMultiple on a single action.
	Kind ActionKind `json:"kind"`

	// Description is the short human-facing display string. Never empty:
	// when cleaning would strip the whole utterance, the original text is
	// used instead.
	Description string `json:"description"`

	// Notes is optional secondary text.
	Notes string `json:"notes,omitempty"`

	// Start is the resolved absolute start timestamp, nil when no date or
	// time was derivable and the action is inbox-style.
	Start *OffsetTime `json:"start,omitempty"`

	// End is present for calendar events (default Start + 1h) and absent
	// otherwise unless an explicit interval was given.
	End *OffsetTime `json:"end,omitempty"`

	// HasTime is true only when an explicit or derivable clock time was
	// present — a bare date does not set it.
	HasTime bool `json:"has_time"`

	// Items holds the ordered shopping item strings. Shopping only.
	Items []string `json:"items,omitempty"`

	// ContactName is the spoken (possibly inflected) person name.
	// CallContact only.
	ContactName string `json:"contact_name,omitempty"`

	// ContactNormalized is ContactName mapped to nominative case.
	ContactNormalized string `json:"contact_normalized,omitempty"`

	// Language is the resolved language tag.
	Language Language `json:"language"`

	// CorrectedInput records the normalizer's output when it changed the
	// input, empty otherwise.
	CorrectedInput string `json:"corrected_input,omitempty"`
}

// MultiAction wraps an ordered sequence of reminders split from a single
// utterance. Valid only when every element is a reminder and at least two
// distinct explicit clock times were detected.
type MultiAction struct {
	// Kind is always KindMultiple.
	Kind ActionKind `json:"kind"`

	// Actions is the ordered split task list.
	Actions []ParsedAction `json:"actions"`
}

// NewMultiAction builds a [MultiAction] from the given actions.
func NewMultiAction(actions []ParsedAction) *MultiAction {
	return &MultiAction{Kind: KindMultiple, Actions: actions}
}

// Resolution is the union returned by the resolver: exactly one of Action or
// Multi is non-nil.
type Resolution struct {
	Action *ParsedAction
	Multi  *MultiAction
}

// Kind returns the action kind of the resolution.
func (r *Resolution) Kind() ActionKind {
	if r.Multi != nil {
		return KindMultiple
	}
	return r.Action.Kind
}

// First returns the first (or only) action of the resolution. For a
// single-action resolution this is the action itself.
func (r *Resolution) First() *ParsedAction {
	if r.Multi != nil && len(r.Multi.Actions) > 0 {
		return &r.Multi.Actions[0]
	}
	return r.Action
}

// MarshalJSON serialises whichever variant is set, so the HTTP layer and the
// gold log see a ParsedAction or MultiAction object directly rather than a
// wrapper.
func (r Resolution) MarshalJSON() ([]byte, error) {
	if r.Multi != nil {
		return json.Marshal(r.Multi)
	}
	if r.Action != nil {
		return json.Marshal(r.Action)
	}
	return []byte("null"), nil
}

// UnmarshalJSON implements json.Unmarshaler. The kind field decides which
// variant to decode, mirroring [Resolution.MarshalJSON].
func (r *Resolution) UnmarshalJSON(data []byte) error {
	var probe struct {
		Kind ActionKind `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("types: decode resolution: %w", err)
	}
	if probe.Kind == KindMultiple {
		var multi MultiAction
		if err := json.Unmarshal(data, &multi); err != nil {
			return fmt.Errorf("types: decode multi action: %w", err)
		}
		*r = Resolution{Multi: &multi}
		return nil
	}
	var action ParsedAction
	if err := json.Unmarshal(data, &action); err != nil {
		return fmt.Errorf("types: decode action: %w", err)
	}
	*r = Resolution{Action: &action}
	return nil
}
