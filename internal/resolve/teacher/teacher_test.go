package teacher_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kkarklins/balss/internal/resolve/teacher"
	"github.com/kkarklins/balss/pkg/provider/llm"
	"github.com/kkarklins/balss/pkg/provider/llm/mock"
	"github.com/kkarklins/balss/pkg/types"
)

func TestResolve_SingleAction(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{
		Response: llm.CompletionResponse{
			Content: `{"kind":"calendar","description":"Tikšanās ar Jāni","start":"2026-03-05T14:00:00+02:00","end":"2026-03-05T15:00:00+02:00","has_time":true,"language":"lv"}`,
		},
	}
	r := teacher.New(p)

	res, err := r.Resolve(context.Background(), "rīt divos tikšanās ar Jāni", time.Now(), types.LanguageLatvian)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Kind() != types.KindCalendar {
		t.Errorf("Kind = %q, want calendar", res.Kind())
	}
	if res.Action.Description != "Tikšanās ar Jāni" {
		t.Errorf("Description = %q", res.Action.Description)
	}
	if !res.Action.HasTime {
		t.Error("HasTime = false, want true")
	}

	reqs := p.Requests()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d, want 1", len(reqs))
	}
	if !strings.Contains(reqs[0].Messages[0].Content, "rīt divos") {
		t.Errorf("request does not carry the utterance: %q", reqs[0].Messages[0].Content)
	}
	if reqs[0].Temperature != 0 {
		t.Errorf("Temperature = %v, want 0", reqs[0].Temperature)
	}
}

func TestResolve_MultiAction(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{
		Response: llm.CompletionResponse{
			Content: `{"kind":"multiple","actions":[
				{"kind":"reminder","description":"Izņemt veļu","has_time":true,"language":"lv"},
				{"kind":"reminder","description":"Piezvanīt Jānim","has_time":true,"language":"lv"}
			]}`,
		},
	}
	r := teacher.New(p)

	res, err := r.Resolve(context.Background(), "x", time.Now(), types.LanguageLatvian)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Kind() != types.KindMultiple {
		t.Fatalf("Kind = %q, want multiple", res.Kind())
	}
	if len(res.Multi.Actions) != 2 {
		t.Errorf("actions = %d, want 2", len(res.Multi.Actions))
	}
}

func TestResolve_MarkdownFence(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{
		Response: llm.CompletionResponse{
			Content: "```json\n{\"kind\":\"reminder\",\"description\":\"Nopirkt pienu\",\"language\":\"lv\"}\n```",
		},
	}
	r := teacher.New(p)

	res, err := r.Resolve(context.Background(), "x", time.Now(), types.LanguageLatvian)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Action.Description != "Nopirkt pienu" {
		t.Errorf("Description = %q", res.Action.Description)
	}
}

func TestResolve_Timeout(t *testing.T) {
	t.Parallel()

	never := make(chan struct{})
	p := &mock.Provider{Delay: never}
	r := teacher.New(p, teacher.WithTimeout(10*time.Millisecond))

	_, err := r.Resolve(context.Background(), "x", time.Now(), types.LanguageLatvian)
	if !errors.Is(err, teacher.ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestResolve_ProviderError(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{Err: errors.New("boom")}
	r := teacher.New(p)

	_, err := r.Resolve(context.Background(), "x", time.Now(), types.LanguageLatvian)
	if !errors.Is(err, teacher.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestResolve_UnparseableReply(t *testing.T) {
	t.Parallel()

	p := &mock.Provider{
		Response: llm.CompletionResponse{Content: "sorry, I cannot help with that"},
	}
	r := teacher.New(p)

	_, err := r.Resolve(context.Background(), "x", time.Now(), types.LanguageLatvian)
	if !errors.Is(err, teacher.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}
