// Package task defines the TaskRequest domain entity.
package task

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrEmptyDescription is returned when a request carries no task description.
var ErrEmptyDescription = errors.New("task description is required")

// Request is one natural-language task submitted for generation.
// It is immutable once submitted and lives for a single orchestration run.
type Request struct {
	ID           string   `json:"id"`
	Description  string   `json:"description"`
	LanguageHint string   `json:"language_hint,omitempty"`
	Constraints  []string `json:"constraints,omitempty"`
	// Context carries supplementary text supplied by the caller, typically
	// extracted from an uploaded file. The core treats it as opaque prose.
	Context string `json:"context,omitempty"`
}

// Normalize assigns an ID when the caller did not provide one and returns
// a copy so the submitted request stays immutable.
func Normalize(r Request) Request {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.Constraints = append([]string(nil), r.Constraints...)
	return r
}

// Validate checks that the request can drive a run.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}
