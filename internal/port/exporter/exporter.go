// Package exporter defines the port for the export collaborator that turns
// a bundle into downloadable files.
package exporter

import (
	"context"

	"github.com/codeweaver-dev/codeweaver/internal/domain/bundle"
)

// Result describes what an export produced.
type Result struct {
	Files []string `json:"files"`
}

// Formatter serializes a completed or partial bundle into files.
// Format and transport of the exported files belong to the implementation.
type Formatter interface {
	Export(ctx context.Context, b *bundle.Bundle) (Result, error)
}
