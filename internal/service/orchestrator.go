package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/semaphore"

	cwotel "github.com/codeweaver-dev/codeweaver/internal/adapter/otel"
	"github.com/codeweaver-dev/codeweaver/internal/adapter/ws"
	"github.com/codeweaver-dev/codeweaver/internal/domain/agenterr"
	"github.com/codeweaver-dev/codeweaver/internal/domain/bundle"
	"github.com/codeweaver-dev/codeweaver/internal/domain/task"
	"github.com/codeweaver-dev/codeweaver/internal/port/broadcast"
)

// State identifies a position in the orchestration state machine.
type State string

const (
	StateIdle           State = "idle"
	StateGeneratingCode State = "generating_code"
	StateValidatingCode State = "validating_code"
	StateGeneratingDocs State = "generating_docs"
	StateValidatingPair State = "validating_pair"
	StateComplete       State = "complete"
	StateFailed         State = "failed"
)

// Orchestrator drives one task request through code generation, documentation
// generation and pair validation. Runs are fully isolated from each other;
// the orchestrator keeps no per-run state between Submit calls.
type Orchestrator struct {
	codeAgent  *CodeAgent
	docAgent   *DocAgent
	maxRetries int
	sem        *semaphore.Weighted
	hub        broadcast.Broadcaster
	metrics    *cwotel.Metrics
}

// NewOrchestrator wires the two agents into a run pipeline. maxRetries bounds
// additional attempts per stage, so each stage runs at most 1+maxRetries
// times. maxConcurrent bounds the number of in-flight runs.
func NewOrchestrator(codeAgent *CodeAgent, docAgent *DocAgent, maxRetries int, maxConcurrent int64, hub broadcast.Broadcaster, metrics *cwotel.Metrics) *Orchestrator {
	if hub == nil {
		hub = broadcast.Noop{}
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Orchestrator{
		codeAgent:  codeAgent,
		docAgent:   docAgent,
		maxRetries: maxRetries,
		sem:        semaphore.NewWeighted(maxConcurrent),
		hub:        hub,
		metrics:    metrics,
	}
}

// run tracks the state of one in-flight orchestration.
type run struct {
	req          task.Request
	state        State
	code         *bundle.CodeArtifact
	docs         *bundle.DocArtifact
	codeAttempts int
	docAttempts  int
	warnings     []string
	errors       []*agenterr.Error
}

// Submit drives a single request to a terminal bundle. The returned bundle
// always carries one of the three terminal statuses; generation failures are
// reported in the bundle, not as a Go error. A Go error is returned only when
// the request itself is invalid or the context is cancelled before the run
// acquires a slot.
func (o *Orchestrator) Submit(ctx context.Context, req task.Request) (*bundle.Bundle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req = task.Normalize(req)

	if err := o.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire run slot: %w", err)
	}
	defer o.sem.Release(1)

	start := time.Now()
	if o.metrics != nil {
		o.metrics.RunsStarted.Add(ctx, 1)
	}
	o.hub.BroadcastEvent(ctx, ws.EventRunAccepted, ws.RunAcceptedEvent{
		TaskID:       req.ID,
		LanguageHint: req.LanguageHint,
	})
	slog.Info("run accepted", "task_id", req.ID, "language_hint", req.LanguageHint)

	r := &run{req: req, state: StateIdle}
	o.transition(ctx, r, StateGeneratingCode)

	for {
		switch r.state {
		case StateGeneratingCode:
			o.generateCode(ctx, r)
		case StateValidatingCode:
			o.validateCode(ctx, r)
		case StateGeneratingDocs:
			o.generateDocs(ctx, r)
		case StateValidatingPair:
			o.validatePair(ctx, r)
		case StateComplete, StateFailed:
			return o.finish(ctx, r, start), nil
		default:
			return nil, fmt.Errorf("orchestrator in unknown state %q", r.state)
		}
	}
}

func (o *Orchestrator) generateCode(ctx context.Context, r *run) {
	r.codeAttempts++
	art, aerr := o.codeAgent.Generate(ctx, r.req, r.codeAttempts)
	if aerr == nil {
		r.code = art
		o.transition(ctx, r, StateValidatingCode)
		return
	}
	r.errors = append(r.errors, aerr)
	o.retryOrFailCode(ctx, r, aerr)
}

// retryOrFailCode re-enters code generation while the failure is retryable
// and the retry bound permits; otherwise the run is fatal. Non-retryable
// failures short-circuit without consuming the remaining budget.
func (o *Orchestrator) retryOrFailCode(ctx context.Context, r *run, aerr *agenterr.Error) {
	if !aerr.Kind.Retryable() || r.codeAttempts > o.maxRetries {
		o.transition(ctx, r, StateFailed)
		return
	}
	o.noteRetry(ctx, r, aerr)
	o.transition(ctx, r, StateGeneratingCode)
}

func (o *Orchestrator) validateCode(ctx context.Context, r *run) {
	if strings.TrimSpace(r.code.Content) == "" {
		aerr := agenterr.New(agenterr.StageCodeGeneration, agenterr.KindMalformedOutput, r.codeAttempts,
			errors.New("empty code artifact"))
		r.errors = append(r.errors, aerr)
		r.code = nil
		o.retryOrFailCode(ctx, r, aerr)
		return
	}

	// Declared language is trusted once code is syntactically present;
	// a hint mismatch is surfaced as a warning, never a failure.
	if hint := r.req.LanguageHint; hint != "" && r.code.DeclaredLanguage != "" &&
		!strings.EqualFold(hint, r.code.DeclaredLanguage) {
		r.warnings = append(r.warnings,
			fmt.Sprintf("declared language %q does not match requested %q", r.code.DeclaredLanguage, hint))
	}

	o.transition(ctx, r, StateGeneratingDocs)
}

func (o *Orchestrator) generateDocs(ctx context.Context, r *run) {
	r.docAttempts++
	docs, aerr := o.docAgent.Generate(ctx, r.req, r.code, r.docAttempts)
	if aerr == nil {
		r.docs = docs
		o.transition(ctx, r, StateValidatingPair)
		return
	}
	r.errors = append(r.errors, aerr)
	o.retryOrDegradeDocs(ctx, r, aerr)
}

// retryOrDegradeDocs re-enters doc generation while the budget permits.
// Exhaustion keeps the already valid code artifact and completes the run as
// a partial success rather than discarding it.
func (o *Orchestrator) retryOrDegradeDocs(ctx context.Context, r *run, aerr *agenterr.Error) {
	if !aerr.Kind.Retryable() || r.docAttempts > o.maxRetries {
		r.docs = nil
		r.warnings = append(r.warnings, "documentation could not be generated; returning code only")
		o.transition(ctx, r, StateComplete)
		return
	}
	o.noteRetry(ctx, r, aerr)
	o.transition(ctx, r, StateGeneratingDocs)
}

func (o *Orchestrator) validatePair(ctx context.Context, r *run) {
	if r.docs.ReferencesArtifactID == r.code.ID && strings.TrimSpace(r.docs.Content) != "" {
		o.transition(ctx, r, StateComplete)
		return
	}

	aerr := agenterr.New(agenterr.StageDocGeneration, agenterr.KindMalformedOutput, r.docAttempts,
		fmt.Errorf("documentation references artifact %q, expected %q", r.docs.ReferencesArtifactID, r.code.ID))
	r.errors = append(r.errors, aerr)
	r.docs = nil
	o.retryOrDegradeDocs(ctx, r, aerr)
}

func (o *Orchestrator) finish(ctx context.Context, r *run, start time.Time) *bundle.Bundle {
	b := &bundle.Bundle{
		Request:  r.req,
		Warnings: r.warnings,
		Errors:   r.errors,
	}
	switch {
	case r.state == StateFailed:
		b.Status = bundle.StatusFailed
	case r.docs != nil:
		b.Code = r.code
		b.Docs = r.docs
		b.Status = bundle.StatusComplete
	default:
		b.Code = r.code
		b.Status = bundle.StatusPartialCodeOnly
	}

	elapsed := time.Since(start)
	if o.metrics != nil {
		o.metrics.RunDuration.Record(ctx, elapsed.Seconds())
		switch b.Status {
		case bundle.StatusComplete:
			o.metrics.RunsCompleted.Add(ctx, 1)
		case bundle.StatusPartialCodeOnly:
			o.metrics.RunsPartial.Add(ctx, 1)
		case bundle.StatusFailed:
			o.metrics.RunsFailed.Add(ctx, 1)
		}
	}

	o.hub.BroadcastEvent(ctx, ws.EventRunCompleted, ws.RunCompletedEvent{
		TaskID:    r.req.ID,
		Status:    string(b.Status),
		Warnings:  r.warnings,
		ElapsedMS: elapsed.Milliseconds(),
	})
	slog.Info("run finished",
		"task_id", r.req.ID,
		"status", b.Status,
		"code_attempts", r.codeAttempts,
		"doc_attempts", r.docAttempts,
		"elapsed", elapsed,
	)
	return b
}

func (o *Orchestrator) noteRetry(ctx context.Context, r *run, aerr *agenterr.Error) {
	if o.metrics != nil {
		o.metrics.StageRetries.Add(ctx, 1, metric.WithAttributes(
			attribute.String("stage", string(aerr.Stage)),
			attribute.String("kind", string(aerr.Kind)),
		))
	}
	o.hub.BroadcastEvent(ctx, ws.EventRunRetry, ws.RunRetryEvent{
		TaskID:  r.req.ID,
		Stage:   string(aerr.Stage),
		Attempt: aerr.Attempt,
		Reason:  string(aerr.Kind),
	})
	slog.Warn("stage retry",
		"task_id", r.req.ID,
		"stage", aerr.Stage,
		"kind", aerr.Kind,
		"attempt", aerr.Attempt,
	)
}

func (o *Orchestrator) transition(ctx context.Context, r *run, next State) {
	if r.state == next {
		return
	}
	slog.Debug("state transition", "task_id", r.req.ID, "from", r.state, "to", next)
	r.state = next
	o.hub.BroadcastEvent(ctx, ws.EventRunStage, ws.RunStageEvent{
		TaskID: r.req.ID,
		State:  string(next),
	})
}
