package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/codeweaver-dev/codeweaver/internal/domain/agenterr"
	"github.com/codeweaver-dev/codeweaver/internal/domain/bundle"
	"github.com/codeweaver-dev/codeweaver/internal/domain/task"
	"github.com/codeweaver-dev/codeweaver/internal/port/modelgateway"
)

var (
	codeBlockRe = regexp.MustCompile("(?s)```([A-Za-z0-9+#._-]*)[ \t]*\r?\n(.*?)```")
	markerRe    = regexp.MustCompile(`<!--\s*codeweaver:artifact\s+(\S+)\s*-->`)
)

// CodeAgent produces a candidate source artifact for a task.
// Each Generate call is independent; nothing is carried between attempts.
type CodeAgent struct {
	gateway modelgateway.Gateway
	builder PromptBuilder
	timeout time.Duration
}

// NewCodeAgent creates a code agent backed by the given gateway.
func NewCodeAgent(gw modelgateway.Gateway, timeout time.Duration) *CodeAgent {
	return &CodeAgent{gateway: gw, timeout: timeout}
}

// Generate runs one code generation attempt.
func (a *CodeAgent) Generate(ctx context.Context, req task.Request, attempt int) (*bundle.CodeArtifact, *agenterr.Error) {
	prompt, err := a.builder.Build(RoleCode, req, nil)
	if err != nil {
		return nil, agenterr.New(agenterr.StageCodeGeneration, agenterr.KindMalformedOutput, attempt, err)
	}

	raw, err := a.gateway.Complete(ctx, prompt, modelgateway.Options{Timeout: a.timeout})
	if err != nil {
		return nil, gatewayError(agenterr.StageCodeGeneration, attempt, err)
	}

	lang, content, ok := parseCodeBlock(raw)
	if !ok || strings.TrimSpace(content) == "" {
		return nil, agenterr.New(agenterr.StageCodeGeneration, agenterr.KindMalformedOutput, attempt,
			errors.New("no code block in model output"))
	}
	if lang == "" {
		lang = strings.ToLower(req.LanguageHint)
	}

	return &bundle.CodeArtifact{
		ID:               uuid.NewString(),
		Content:          content,
		DeclaredLanguage: lang,
		Attempt:          attempt,
	}, nil
}

// DocAgent produces documentation grounded on a concrete code artifact.
type DocAgent struct {
	gateway modelgateway.Gateway
	builder PromptBuilder
	timeout time.Duration
}

// NewDocAgent creates a doc agent backed by the given gateway.
func NewDocAgent(gw modelgateway.Gateway, timeout time.Duration) *DocAgent {
	return &DocAgent{gateway: gw, timeout: timeout}
}

// Generate runs one documentation attempt against the given code artifact.
// The response must echo the artifact marker so the pairing can be verified.
func (a *DocAgent) Generate(ctx context.Context, req task.Request, code *bundle.CodeArtifact, attempt int) (*bundle.DocArtifact, *agenterr.Error) {
	prompt, err := a.builder.Build(RoleDoc, req, code)
	if err != nil {
		return nil, agenterr.New(agenterr.StageDocGeneration, agenterr.KindMalformedOutput, attempt, err)
	}

	raw, err := a.gateway.Complete(ctx, prompt, modelgateway.Options{Timeout: a.timeout})
	if err != nil {
		return nil, gatewayError(agenterr.StageDocGeneration, attempt, err)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, agenterr.New(agenterr.StageDocGeneration, agenterr.KindMalformedOutput, attempt,
			errors.New("empty documentation output"))
	}

	m := markerRe.FindStringSubmatch(raw)
	if m == nil {
		return nil, agenterr.New(agenterr.StageDocGeneration, agenterr.KindMalformedOutput, attempt,
			errors.New("missing artifact marker in documentation output"))
	}

	content := strings.TrimSpace(strings.Replace(raw, m[0], "", 1))
	if content == "" {
		return nil, agenterr.New(agenterr.StageDocGeneration, agenterr.KindMalformedOutput, attempt,
			errors.New("empty documentation output"))
	}

	return &bundle.DocArtifact{
		Content:              content,
		ReferencesArtifactID: m[1],
		Attempt:              attempt,
	}, nil
}

// gatewayError maps gateway sentinels onto the agent error taxonomy.
func gatewayError(stage agenterr.Stage, attempt int, err error) *agenterr.Error {
	switch {
	case errors.Is(err, modelgateway.ErrRejected):
		return agenterr.New(stage, agenterr.KindProviderRejected, attempt, err)
	case errors.Is(err, modelgateway.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return agenterr.New(stage, agenterr.KindTimeout, attempt, err)
	default:
		return agenterr.New(stage, agenterr.KindMalformedOutput, attempt, err)
	}
}

// parseCodeBlock extracts the first fenced code block from raw model output.
func parseCodeBlock(raw string) (lang, content string, ok bool) {
	m := codeBlockRe.FindStringSubmatch(raw)
	if m == nil {
		return "", "", false
	}
	return strings.ToLower(m[1]), m[2], true
}
