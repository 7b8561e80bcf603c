package agenterr

import (
	"errors"
	"strings"
	"testing"
)

func TestRetryable(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindTimeout, true},
		{KindMalformedOutput, true},
		{KindProviderRejected, false},
	}
	for _, tt := range tests {
		if got := tt.kind.Retryable(); got != tt.want {
			t.Errorf("%s.Retryable() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	e := New(StageCodeGeneration, KindTimeout, 2, cause)

	if !errors.Is(e, cause) {
		t.Fatal("expected errors.Is to reach the cause")
	}
	if e.Message != "connection reset" {
		t.Fatalf("expected message from cause, got %q", e.Message)
	}
}

func TestErrorString(t *testing.T) {
	e := New(StageDocGeneration, KindMalformedOutput, 3, errors.New("no marker"))
	s := e.Error()
	for _, want := range []string{"doc_generation", "attempt 3", "malformed_output", "no marker"} {
		if !strings.Contains(s, want) {
			t.Fatalf("error string missing %q: %s", want, s)
		}
	}
}

func TestErrorWithoutCause(t *testing.T) {
	e := New(StageCodeGeneration, KindProviderRejected, 1, nil)
	if e.Message != "" {
		t.Fatalf("expected empty message, got %q", e.Message)
	}
	if e.Unwrap() != nil {
		t.Fatal("expected nil unwrap")
	}
}
