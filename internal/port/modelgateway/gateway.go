// Package modelgateway defines the port for the third-party text-generation
// provider. The core consumes a single capability: complete a prompt.
package modelgateway

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout indicates a transient failure: the call timed out, was
// cancelled, or the provider was temporarily unavailable. Retryable.
var ErrTimeout = errors.New("model gateway: timeout")

// ErrRejected indicates the provider refused the request (invalid request,
// bad credentials, unknown model). Not retryable.
var ErrRejected = errors.New("model gateway: provider rejected request")

// Prompt is a provider-ready prompt pair.
type Prompt struct {
	System string
	User   string
}

// Options controls a single completion call. Retry counts are NOT handled
// here; stage-level retries belong to the orchestrator.
type Options struct {
	// Timeout bounds the call. Zero means the gateway's own default.
	Timeout time.Duration
}

// Gateway is the boundary abstraction over a text-generation provider.
// Implementations own their transport policy (connection pooling,
// transport-level retry, circuit breaking); the orchestrator sees only
// ErrTimeout or ErrRejected.
type Gateway interface {
	// Name returns the provider identifier (e.g. "deepseek", "groq").
	Name() string

	// Complete generates raw text from the prompt. The call must honor ctx
	// cancellation and the Options timeout.
	Complete(ctx context.Context, p Prompt, opts Options) (string, error)

	// Configured reports whether the gateway has credentials to operate.
	Configured() bool
}
