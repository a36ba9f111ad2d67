package review

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/justishika/clausecheck/internal/llm"
	"github.com/justishika/clausecheck/internal/model"
)

// stubProvider replies with canned texts in order. A non-nil err makes
// every call fail.
type stubProvider struct {
	replies []string
	chunks  []string
	err     error
	calls   int
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	if len(p.replies) == 0 {
		return nil, &llm.FatalError{Provider: "stub", Model: req.Model, Err: errors.New("no scripted reply")}
	}
	reply := p.replies[0]
	p.replies = p.replies[1:]
	return &llm.Completion{Text: reply, Model: req.Model}, nil
}

func (p *stubProvider) CompleteStream(ctx context.Context, req llm.CompletionRequest) (llm.Stream, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &stubStream{chunks: append([]string(nil), p.chunks...)}, nil
}

func (p *stubProvider) IsAvailable(ctx context.Context) bool { return p.err == nil }

type stubStream struct {
	chunks []string
}

func (s *stubStream) Recv() (string, error) {
	if len(s.chunks) == 0 {
		return "", io.EOF
	}
	chunk := s.chunks[0]
	s.chunks = s.chunks[1:]
	return chunk, nil
}

func (s *stubStream) Close() error { return nil }

// newStubCaller wraps a stub provider in a single-variant, single-attempt
// caller so tests never sleep.
func newStubCaller(t *testing.T, provider llm.Provider) *llm.Caller {
	t.Helper()
	caller, err := llm.NewCaller(provider, llm.CallerOptions{
		Variants:    []string{"test-model"},
		MaxAttempts: 1,
	})
	if err != nil {
		t.Fatalf("NewCaller failed: %v", err)
	}
	return caller
}

// brokenCaller always exhausts: every call fails fatally.
func brokenCaller(t *testing.T) *llm.Caller {
	t.Helper()
	return newStubCaller(t, &stubProvider{
		err: &llm.FatalError{Provider: "stub", Model: "test-model", Err: errors.New("unreachable")},
	})
}

func mustChecklist(t *testing.T, items ...model.ChecklistItem) *model.Checklist {
	t.Helper()
	checklist, err := model.NewChecklist(items)
	if err != nil {
		t.Fatalf("NewChecklist failed: %v", err)
	}
	return checklist
}

// standardChecklist mirrors the documented demo checklist.
func standardChecklist(t *testing.T) *model.Checklist {
	t.Helper()
	return mustChecklist(t,
		model.ChecklistItem{Key: "Liability", Rule: "Liability must be capped."},
		model.ChecklistItem{Key: "Termination", Rule: "Termination requires 30 days notice."},
		model.ChecklistItem{Key: "Payment Terms", Rule: "Payment due within 30 days of invoice."},
		model.ChecklistItem{Key: "Confidentiality", Rule: "Confidentiality survives termination."},
	)
}
