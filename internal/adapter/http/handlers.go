package http

import (
	"errors"
	"net/http"

	"github.com/codeweaver-dev/codeweaver/internal/domain/bundle"
	"github.com/codeweaver-dev/codeweaver/internal/domain/task"
	"github.com/codeweaver-dev/codeweaver/internal/port/exporter"
	"github.com/codeweaver-dev/codeweaver/internal/port/modelgateway"
	"github.com/codeweaver-dev/codeweaver/internal/service"
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	Orchestrator *service.Orchestrator
	Exporter     exporter.Formatter
	CodeGateway  modelgateway.Gateway
	DocGateway   modelgateway.Gateway
}

// generateRequest is the inbound payload for generation endpoints.
// FileContent carries optional uploaded file text used as task context.
type generateRequest struct {
	ID           string   `json:"id,omitempty"`
	Description  string   `json:"description"`
	LanguageHint string   `json:"language_hint,omitempty"`
	Constraints  []string `json:"constraints,omitempty"`
	FileContent  string   `json:"file_content,omitempty"`
}

func (req generateRequest) toTask() task.Request {
	return task.Request{
		ID:           req.ID,
		Description:  req.Description,
		LanguageHint: req.LanguageHint,
		Constraints:  req.Constraints,
		Context:      req.FileContent,
	}
}

// HandleGenerate runs one orchestration and returns the resulting bundle.
// A failed run is a valid outcome and is reported through the bundle status,
// with 502 signalling that no usable artifact was produced.
func (h *Handlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[generateRequest](w, r)
	if !ok {
		return
	}

	b, err := h.submit(w, r, req)
	if b == nil || err != nil {
		return
	}

	writeJSON(w, bundleStatusCode(b), b)
}

type exportResponse struct {
	Bundle *bundle.Bundle `json:"bundle"`
	Files  []string       `json:"files,omitempty"`
}

// HandleGenerateExport runs one orchestration and writes the artifacts to
// the export target before responding. Failed runs are not exported.
func (h *Handlers) HandleGenerateExport(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[generateRequest](w, r)
	if !ok {
		return
	}

	b, err := h.submit(w, r, req)
	if b == nil || err != nil {
		return
	}

	resp := exportResponse{Bundle: b}
	if b.Code != nil {
		res, err := h.Exporter.Export(r.Context(), b)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		resp.Files = res.Files
	}

	writeJSON(w, bundleStatusCode(b), resp)
}

// submit validates and runs the request, writing the error response itself
// when the run cannot start. Returns nil when a response was already written.
func (h *Handlers) submit(w http.ResponseWriter, r *http.Request, req generateRequest) (*bundle.Bundle, error) {
	b, err := h.Orchestrator.Submit(r.Context(), req.toTask())
	if err != nil {
		switch {
		case errors.Is(err, task.ErrEmptyDescription):
			writeError(w, http.StatusBadRequest, err.Error())
		case r.Context().Err() != nil:
			writeError(w, http.StatusServiceUnavailable, "request cancelled before a run slot was available")
		default:
			writeInternalError(w, err)
		}
		return nil, err
	}
	return b, nil
}

func bundleStatusCode(b *bundle.Bundle) int {
	if b.Status == bundle.StatusFailed {
		return http.StatusBadGateway
	}
	return http.StatusOK
}

type providerHealth struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
}

type healthStatus struct {
	Status       string         `json:"status"`
	CodeProvider providerHealth `json:"code_provider"`
	DocProvider  providerHealth `json:"doc_provider"`
}

// HandleHealth reports service health and whether each provider has credentials.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthStatus{
		Status: "ok",
		CodeProvider: providerHealth{
			Name:       h.CodeGateway.Name(),
			Configured: h.CodeGateway.Configured(),
		},
		DocProvider: providerHealth{
			Name:       h.DocGateway.Name(),
			Configured: h.DocGateway.Configured(),
		},
	})
}
