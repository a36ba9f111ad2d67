package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status    int
		transient bool
	}{
		{429, true},
		{408, true},
		{500, true},
		{502, true},
		{503, true},
		{400, false},
		{401, false},
		{403, false},
		{404, false},
	}

	for _, tt := range tests {
		err := classifyStatus("openai", "gpt-4o-mini", tt.status, fmt.Errorf("status %d", tt.status))
		if IsTransient(err) != tt.transient {
			t.Errorf("Status %d: expected transient=%v, got %v", tt.status, tt.transient, IsTransient(err))
		}
	}
}

func TestClassifyNetwork(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"timeout message", errors.New("request timeout"), true},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"connection reset", errors.New("connection reset by peer"), true},
		{"rate limit", errors.New("Rate limit exceeded, try again later"), true},
		{"rate_limit code", errors.New("error code rate_limit_exceeded"), true},
		{"quota", errors.New("you have exceeded your quota"), true},
		{"overloaded", errors.New("the model is overloaded"), true},
		{"bad credentials", errors.New("invalid api key"), false},
		{"unknown model", errors.New("model does not exist"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyNetwork("openai", "gpt-4o-mini", tt.err)
			if IsTransient(err) != tt.transient {
				t.Errorf("Expected transient=%v for %v", tt.transient, tt.err)
			}
		})
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("upstream broke")

	te := &TransientError{Provider: "openai", Model: "gpt-4o-mini", Err: cause}
	if !errors.Is(te, cause) {
		t.Error("Expected TransientError to unwrap to its cause")
	}

	fe := &FatalError{Provider: "openai", Model: "gpt-4o-mini", Err: cause}
	if !errors.Is(fe, cause) {
		t.Error("Expected FatalError to unwrap to its cause")
	}

	ee := &ExhaustedError{Variants: []string{"m1", "m2"}, LastErr: te}
	if !errors.Is(ee, cause) {
		t.Error("Expected ExhaustedError to unwrap through the last cause")
	}
	if !IsTransient(ee) {
		t.Error("Expected IsTransient to see through ExhaustedError")
	}
}

func TestIsExhausted(t *testing.T) {
	if IsExhausted(errors.New("plain")) {
		t.Error("Expected plain error not to be exhausted")
	}
	if !IsExhausted(&ExhaustedError{Variants: []string{"m"}}) {
		t.Error("Expected ExhaustedError to be exhausted")
	}
	wrapped := fmt.Errorf("review failed: %w", &ExhaustedError{Variants: []string{"m"}})
	if !IsExhausted(wrapped) {
		t.Error("Expected wrapped ExhaustedError to be detected")
	}
}

func TestErrorMessages_NameProviderAndModel(t *testing.T) {
	te := &TransientError{Provider: "anthropic", Model: "claude-3-5-haiku", Err: errors.New("overloaded")}
	msg := te.Error()
	for _, want := range []string{"anthropic", "claude-3-5-haiku", "overloaded"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected %q in message %q", want, msg)
		}
	}
}
