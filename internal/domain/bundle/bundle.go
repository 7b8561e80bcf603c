// Package bundle defines the generated artifact pair returned for one task request.
package bundle

import (
	"github.com/codeweaver-dev/codeweaver/internal/domain/agenterr"
	"github.com/codeweaver-dev/codeweaver/internal/domain/task"
)

// Status represents the terminal outcome of an orchestration run.
type Status string

const (
	// StatusComplete means both artifacts were produced and paired.
	StatusComplete Status = "complete"
	// StatusPartialCodeOnly means code succeeded but documentation could not
	// be produced within the retry bound. The code artifact is kept.
	StatusPartialCodeOnly Status = "partial_code_only"
	// StatusFailed means no trustworthy code artifact exists.
	StatusFailed Status = "failed"
)

// CodeArtifact is the generated source produced by the code agent.
// ID is the artifact identity a DocArtifact must reference.
type CodeArtifact struct {
	ID               string `json:"id"`
	Content          string `json:"content"`
	DeclaredLanguage string `json:"declared_language"`
	Attempt          int    `json:"attempt"`
}

// DocArtifact is the generated documentation produced by the doc agent.
type DocArtifact struct {
	Content              string `json:"content"`
	ReferencesArtifactID string `json:"references_artifact_id"`
	Attempt              int    `json:"attempt"`
}

// Bundle pairs the request with its generated artifacts. It is terminal:
// returned once and never mutated afterward.
type Bundle struct {
	Request  task.Request      `json:"request"`
	Code     *CodeArtifact     `json:"code,omitempty"`
	Docs     *DocArtifact      `json:"docs,omitempty"`
	Status   Status            `json:"status"`
	Warnings []string          `json:"warnings,omitempty"`
	Errors   []*agenterr.Error `json:"errors,omitempty"`
}

// Paired reports whether the documentation references the bundle's code artifact.
func (b *Bundle) Paired() bool {
	return b.Code != nil && b.Docs != nil && b.Docs.ReferencesArtifactID == b.Code.ID
}
