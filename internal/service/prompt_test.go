package service

import (
	"strings"
	"testing"

	"github.com/codeweaver-dev/codeweaver/internal/domain/bundle"
	"github.com/codeweaver-dev/codeweaver/internal/domain/task"
)

func TestBuildCodePrompt(t *testing.T) {
	var b PromptBuilder
	req := task.Request{
		ID:           "t1",
		Description:  "parse CSV files",
		LanguageHint: "Go",
		Constraints:  []string{"no external deps", "streaming"},
		Context:      "col1,col2",
	}

	p, err := b.Build(RoleCode, req, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if p.System == "" {
		t.Fatal("expected system prompt")
	}
	for _, want := range []string{"parse CSV files", "Target language: Go", "- no external deps", "- streaming", "File content:\ncol1,col2"} {
		if !strings.Contains(p.User, want) {
			t.Fatalf("user prompt missing %q:\n%s", want, p.User)
		}
	}
}

func TestBuildCodePromptDeterministic(t *testing.T) {
	var b PromptBuilder
	req := task.Request{ID: "t1", Description: "same input"}

	p1, _ := b.Build(RoleCode, req, nil)
	p2, _ := b.Build(RoleCode, req, nil)
	if p1 != p2 {
		t.Fatal("expected identical prompts for identical inputs")
	}
}

func TestBuildCodePromptRejectsPriorArtifact(t *testing.T) {
	var b PromptBuilder
	_, err := b.Build(RoleCode, task.Request{Description: "x"}, &bundle.CodeArtifact{ID: "a"})
	if err == nil {
		t.Fatal("expected error for code role with prior artifact")
	}
}

func TestBuildDocPromptEmbedsCodeAndMarker(t *testing.T) {
	var b PromptBuilder
	code := &bundle.CodeArtifact{
		ID:               "art-42",
		Content:          "def run():\n    pass",
		DeclaredLanguage: "python",
	}

	p, err := b.Build(RoleDoc, task.Request{Description: "a runner"}, code)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(p.User, ArtifactMarker("art-42")) {
		t.Fatalf("doc prompt missing artifact marker:\n%s", p.User)
	}
	if !strings.Contains(p.User, code.Content) {
		t.Fatal("doc prompt must embed the code verbatim")
	}
}

func TestBuildDocPromptRequiresArtifact(t *testing.T) {
	var b PromptBuilder
	_, err := b.Build(RoleDoc, task.Request{Description: "x"}, nil)
	if err == nil {
		t.Fatal("expected error for doc role without artifact")
	}
}

func TestBuildUnknownRole(t *testing.T) {
	var b PromptBuilder
	_, err := b.Build(Role("review"), task.Request{Description: "x"}, nil)
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestArtifactMarkerRoundTrip(t *testing.T) {
	m := markerRe.FindStringSubmatch(ArtifactMarker("abc-123"))
	if m == nil || m[1] != "abc-123" {
		t.Fatalf("marker did not round-trip: %v", m)
	}
}
