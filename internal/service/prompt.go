// Package service implements the orchestration layer: prompt construction,
// the generation agents, and the state machine that pairs their outputs.
package service

import (
	"fmt"
	"strings"

	"github.com/codeweaver-dev/codeweaver/internal/domain/bundle"
	"github.com/codeweaver-dev/codeweaver/internal/domain/task"
	"github.com/codeweaver-dev/codeweaver/internal/port/modelgateway"
)

// Role selects which agent a prompt is built for.
type Role string

const (
	RoleCode Role = "code"
	RoleDoc  Role = "doc"
)

const codeSystemPrompt = `You are an expert software developer. Generate clean, well-structured,
production-ready code based on the user's requirements. Include:
- Proper imports
- Docstrings or comments where the language calls for them
- Error handling
- A main entry point where applicable

Respond with a single fenced code block tagged with the language name. No explanations outside the block.`

const docSystemPrompt = `You are a technical documentation expert. Create comprehensive,
well-structured documentation in Markdown format for the provided source code. Include:
- Project overview
- Features
- Installation instructions
- Usage examples
- API reference (if applicable)
- Architecture overview

Describe only what the code actually does. Use proper Markdown formatting with headers, code blocks, lists, and emphasis.`

// ArtifactMarker returns the comment line a documentation response must echo
// so the document can be tied back to the code artifact it describes.
func ArtifactMarker(artifactID string) string {
	return fmt.Sprintf("<!-- codeweaver:artifact %s -->", artifactID)
}

// PromptBuilder turns a task request into provider-ready prompts.
// Build is deterministic and has no side effects.
type PromptBuilder struct{}

// Build constructs the prompt for the given role. The doc role requires the
// code artifact it documents; the code role must not carry one.
func (PromptBuilder) Build(role Role, req task.Request, prior *bundle.CodeArtifact) (modelgateway.Prompt, error) {
	switch role {
	case RoleCode:
		if prior != nil {
			return modelgateway.Prompt{}, fmt.Errorf("code prompt must not carry a prior artifact")
		}
		return modelgateway.Prompt{System: codeSystemPrompt, User: buildCodeUser(req)}, nil
	case RoleDoc:
		if prior == nil {
			return modelgateway.Prompt{}, fmt.Errorf("doc prompt requires a code artifact")
		}
		return modelgateway.Prompt{System: docSystemPrompt, User: buildDocUser(req, prior)}, nil
	default:
		return modelgateway.Prompt{}, fmt.Errorf("unknown prompt role %q", role)
	}
}

func buildCodeUser(req task.Request) string {
	var sb strings.Builder
	sb.WriteString("Task:\n")
	sb.WriteString(req.Description)
	if req.LanguageHint != "" {
		fmt.Fprintf(&sb, "\n\nTarget language: %s", req.LanguageHint)
	}
	if len(req.Constraints) > 0 {
		sb.WriteString("\n\nConstraints:")
		for _, c := range req.Constraints {
			fmt.Fprintf(&sb, "\n- %s", c)
		}
	}
	if req.Context != "" {
		fmt.Fprintf(&sb, "\n\nFile content:\n%s", req.Context)
	}
	return sb.String()
}

func buildDocUser(req task.Request, code *bundle.CodeArtifact) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Begin your response with this exact line:\n%s\n\n", ArtifactMarker(code.ID))
	sb.WriteString("Document the following code.\n\nTask:\n")
	sb.WriteString(req.Description)
	fmt.Fprintf(&sb, "\n\nCode (%s):\n%s", code.DeclaredLanguage, code.Content)
	if req.Context != "" {
		fmt.Fprintf(&sb, "\n\nProject details from file:\n%s", req.Context)
	}
	return sb.String()
}
