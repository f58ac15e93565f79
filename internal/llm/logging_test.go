package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/abhisek/mistakecoach/internal/store"
)

// recordingRepo captures appended LLM events in memory.
type recordingRepo struct {
	store.EventRepo

	mu     sync.Mutex
	events []store.LLMRequestEventData
	fail   error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.events = append(r.events, data)
	return nil
}

func (r *recordingRepo) recorded() []store.LLMRequestEventData {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]store.LLMRequestEventData(nil), r.events...)
}

func TestWithLogging_NilRepoPassesThrough(t *testing.T) {
	mock := NewMockProvider()
	if got := WithLogging(mock, nil); got != Provider(mock) {
		t.Fatalf("expected the inner provider back, got %T", got)
	}
}

func TestWithLogging_RecordsGenerate(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"diagnosis":"carried the one"}`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 7},
	})
	p := WithLogging(mock, repo)

	ctx := WithPurpose(context.Background(), "mistake-analysis")
	_, err := p.Generate(ctx, Request{
		System: "coach",
		Messages: []Message{{
			Role:    RoleUser,
			Content: "Problem: 19+4",
			Images:  []Image{{MIMEType: "image/jpeg", Data: []byte("jpeg")}},
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := repo.recorded()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Purpose != "mistake-analysis" {
		t.Fatalf("purpose = %q", ev.Purpose)
	}
	if !ev.Success {
		t.Fatal("expected success")
	}
	if ev.InputTokens != 12 || ev.OutputTokens != 7 {
		t.Fatalf("tokens = %d/%d", ev.InputTokens, ev.OutputTokens)
	}
	if !strings.Contains(ev.RequestBody, "[image image/jpeg, 4 bytes]") {
		t.Fatalf("request body missing image note:\n%s", ev.RequestBody)
	}
	if ev.ResponseBody != `{"diagnosis":"carried the one"}` {
		t.Fatalf("response body = %q", ev.ResponseBody)
	}
}

func TestWithLogging_RecordsFailure(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	p := WithLogging(mock, repo)

	_, err := p.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}

	events := repo.recorded()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Success {
		t.Fatal("expected failure to be recorded")
	}
	if events[0].ErrorMessage == "" {
		t.Fatal("expected error message")
	}
	if events[0].Purpose != "unknown" {
		t.Fatalf("purpose = %q", events[0].Purpose)
	}
}

func TestWithLogging_RepoErrorDoesNotFailRequest(t *testing.T) {
	repo := &recordingRepo{fail: errors.New("disk full")}
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`"ok"`)})
	p := WithLogging(mock, repo)

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWithLogging_StreamRecordsOnCompletion(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(MockResponse{Chunks: []string{"Think of ", "pizza slices."}})
	p := WithLogging(mock, repo)

	ctx := WithPurpose(context.Background(), "chat")
	ch, err := StreamText(ctx, p, Request{Messages: []Message{{Role: RoleUser, Content: "fractions?"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got strings.Builder
	for c := range ch {
		got.WriteString(c.Text)
	}
	if got.String() != "Think of pizza slices." {
		t.Fatalf("streamed = %q", got.String())
	}

	// The event is recorded before the output channel closes.
	events := repo.recorded()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ResponseBody != "Think of pizza slices." {
		t.Fatalf("response body = %q", events[0].ResponseBody)
	}
	if events[0].Purpose != "chat" {
		t.Fatalf("purpose = %q", events[0].Purpose)
	}
}
