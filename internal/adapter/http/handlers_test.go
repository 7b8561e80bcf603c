package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/codeweaver-dev/codeweaver/internal/adapter/export"
	"github.com/codeweaver-dev/codeweaver/internal/domain/bundle"
	"github.com/codeweaver-dev/codeweaver/internal/port/modelgateway"
	"github.com/codeweaver-dev/codeweaver/internal/service"
)

// scriptedGateway returns a fixed response or error on every call.
type scriptedGateway struct {
	name       string
	configured bool
	fn         func(prompt modelgateway.Prompt) (string, error)
}

func (g *scriptedGateway) Name() string     { return g.name }
func (g *scriptedGateway) Configured() bool { return g.configured }

func (g *scriptedGateway) Complete(_ context.Context, p modelgateway.Prompt, _ modelgateway.Options) (string, error) {
	return g.fn(p)
}

func goodCodeGateway() *scriptedGateway {
	return &scriptedGateway{name: "deepseek", configured: true, fn: func(modelgateway.Prompt) (string, error) {
		return "```python\nprint('hi')\n```", nil
	}}
}

func goodDocGateway() *scriptedGateway {
	return &scriptedGateway{name: "groq", configured: true, fn: func(p modelgateway.Prompt) (string, error) {
		// Echo the artifact marker embedded in the prompt.
		start := strings.Index(p.User, "<!--")
		end := strings.Index(p.User, "-->")
		if start < 0 || end < 0 {
			return "", fmt.Errorf("no marker in prompt")
		}
		return p.User[start:end+3] + "\n# Overview\nDocs.\n", nil
	}}
}

func newTestHandlers(t *testing.T, code, doc *scriptedGateway) *Handlers {
	t.Helper()
	orch := service.NewOrchestrator(
		service.NewCodeAgent(code, time.Second),
		service.NewDocAgent(doc, time.Second),
		2, 4, nil, nil,
	)
	return &Handlers{
		Orchestrator: orch,
		Exporter:     export.NewDisk(t.TempDir()),
		CodeGateway:  code,
		DocGateway:   doc,
	}
}

func newTestRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", h.HandleHealth)
	MountRoutes(r, h)
	return r
}

func TestHandleGenerateComplete(t *testing.T) {
	h := newTestHandlers(t, goodCodeGateway(), goodDocGateway())
	router := newTestRouter(h)

	body := `{"description":"print hi","language_hint":"python"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var b bundle.Bundle
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if b.Status != bundle.StatusComplete {
		t.Fatalf("expected complete, got %s", b.Status)
	}
	if b.Code == nil || b.Docs == nil {
		t.Fatal("expected both artifacts")
	}
	if b.Docs.ReferencesArtifactID != b.Code.ID {
		t.Fatal("expected paired artifacts")
	}
}

func TestHandleGenerateEmptyDescription(t *testing.T) {
	h := newTestHandlers(t, goodCodeGateway(), goodDocGateway())
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader(`{"description":""}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleGenerateInvalidBody(t *testing.T) {
	h := newTestHandlers(t, goodCodeGateway(), goodDocGateway())
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleGenerateFailedRunReturns502(t *testing.T) {
	code := &scriptedGateway{name: "deepseek", configured: true, fn: func(modelgateway.Prompt) (string, error) {
		return "", modelgateway.ErrRejected
	}}
	h := newTestHandlers(t, code, goodDocGateway())
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader(`{"description":"x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}

	var b bundle.Bundle
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if b.Status != bundle.StatusFailed {
		t.Fatalf("expected failed, got %s", b.Status)
	}
	if len(b.Errors) == 0 {
		t.Fatal("expected attached errors for diagnostics")
	}
}

func TestHandleGenerateExportWritesFiles(t *testing.T) {
	h := newTestHandlers(t, goodCodeGateway(), goodDocGateway())
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate/export", strings.NewReader(`{"description":"print hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp exportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Files) != 2 {
		t.Fatalf("expected 2 exported files, got %v", resp.Files)
	}
}

func TestHandleHealth(t *testing.T) {
	code := goodCodeGateway()
	doc := goodDocGateway()
	doc.configured = false
	h := newTestHandlers(t, code, doc)
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var hs healthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &hs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if hs.Status != "ok" {
		t.Fatalf("expected ok, got %s", hs.Status)
	}
	if hs.CodeProvider.Name != "deepseek" || !hs.CodeProvider.Configured {
		t.Fatalf("unexpected code provider health %+v", hs.CodeProvider)
	}
	if hs.DocProvider.Configured {
		t.Fatal("expected doc provider unconfigured")
	}
}
