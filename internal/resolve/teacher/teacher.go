// Package teacher wraps an LLM provider as the high-accuracy escalation
// resolver. The router consults it when the fast deterministic path is not
// confident enough; its output is authoritative and is compared against the
// fast-path result in the gold log.
package teacher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kkarklins/balss/pkg/provider/llm"
	"github.com/kkarklins/balss/pkg/types"
)

// Sentinel errors, both non-fatal to the caller: the router degrades to the
// fast-path result and records the failure.
var (
	// ErrTimeout means the provider did not answer within the bounded
	// timeout.
	ErrTimeout = errors.New("teacher: timed out")

	// ErrUnavailable means the provider failed or returned output that does
	// not parse as an action.
	ErrUnavailable = errors.New("teacher: unavailable")
)

const defaultTimeout = 8 * time.Second

// systemPrompt instructs the model to answer with nothing but the action
// JSON. Kept deliberately strict: any prose around the object fails parsing
// and degrades the request to the fast path.
const systemPrompt = `You resolve transcribed voice commands in Latvian ("lv") or Estonian ("et") into a single JSON object and output nothing else.

Output exactly one JSON object, no markdown fences, no explanations.

For a single task:
{"kind":"reminder"|"calendar"|"shopping"|"call_contact","description":"short display text","notes":"","start":"2026-03-05T14:00:00+02:00","end":"...","has_time":true,"items":["..."],"contact_name":"...","contact_normalized":"...","language":"lv"}

For several reminders in one utterance:
{"kind":"multiple","actions":[{...},{...}]}

Rules:
- All timestamps are absolute, in the user's time zone, with a numeric UTC offset (never "Z"). Resolve relative expressions against the reference instant given in the request.
- "has_time" is true only when a clock time was stated or derivable, not for a bare date.
- "end" is set for calendar events, one hour after "start" unless an interval was stated.
- Omit fields that do not apply. "description" must never be empty.
- Be conservative: when the utterance is ambiguous, prefer a plain reminder over guessing.`

// Option is a functional option for configuring a [Resolver].
type Option func(*Resolver)

// WithTimeout bounds each escalation call. Default: 8s.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// Resolver asks an LLM provider to resolve an utterance. Safe for concurrent
// use.
type Resolver struct {
	provider llm.Provider
	timeout  time.Duration
}

// New returns a Resolver over provider.
func New(provider llm.Provider, opts ...Option) *Resolver {
	r := &Resolver{
		provider: provider,
		timeout:  defaultTimeout,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve asks the provider to resolve text and parses the reply. The call
// is bounded by the configured timeout; on expiry the error wraps
// [ErrTimeout], on any other provider or parse failure [ErrUnavailable].
func (r *Resolver) Resolve(ctx context.Context, text string, now time.Time, lang types.Language) (*types.Resolution, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: buildRequest(text, now, lang)},
		},
		Temperature: 0,
		MaxTokens:   1024,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	res, err := parseResolution(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return res, nil
}

func buildRequest(text string, now time.Time, lang types.Language) string {
	return fmt.Sprintf("language: %s\nreference instant: %s\nutterance: %s",
		lang, now.Format("2006-01-02T15:04:05-07:00"), text)
}

// parseResolution decodes the model reply into a single or multi action. The
// kind field decides the variant.
func parseResolution(content string) (*types.Resolution, error) {
	raw := stripMarkdown(content)

	var probe struct {
		Kind types.ActionKind `json:"kind"`
	}
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}

	if probe.Kind == types.KindMultiple {
		var multi types.MultiAction
		if err := json.Unmarshal([]byte(raw), &multi); err != nil {
			return nil, fmt.Errorf("decode multi action: %w", err)
		}
		if len(multi.Actions) == 0 {
			return nil, errors.New("multi action with no actions")
		}
		return &types.Resolution{Multi: &multi}, nil
	}

	var action types.ParsedAction
	if err := json.Unmarshal([]byte(raw), &action); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}
	if action.Description == "" {
		return nil, errors.New("action with empty description")
	}
	return &types.Resolution{Action: &action}, nil
}

// stripMarkdown removes a ```json fence when the model wrapped its reply in
// one despite the instructions.
func stripMarkdown(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
