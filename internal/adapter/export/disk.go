// Package export writes generated bundles to the local filesystem.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codeweaver-dev/codeweaver/internal/domain/bundle"
	"github.com/codeweaver-dev/codeweaver/internal/port/exporter"
)

// extensions maps declared languages to source file extensions.
var extensions = map[string]string{
	"python":     ".py",
	"go":         ".go",
	"javascript": ".js",
	"typescript": ".ts",
	"rust":       ".rs",
	"java":       ".java",
	"c":          ".c",
	"cpp":        ".cpp",
	"c++":        ".cpp",
	"ruby":       ".rb",
	"shell":      ".sh",
	"bash":       ".sh",
	"sql":        ".sql",
	"html":       ".html",
	"css":        ".css",
}

// Disk writes each bundle into its own directory under a base path.
type Disk struct {
	baseDir string
}

var _ exporter.Formatter = (*Disk)(nil)

// NewDisk creates a disk exporter rooted at baseDir.
func NewDisk(baseDir string) *Disk {
	return &Disk{baseDir: baseDir}
}

// Export writes the bundle's code artifact and documentation to disk.
// A bundle without a code artifact cannot be exported.
func (d *Disk) Export(_ context.Context, b *bundle.Bundle) (exporter.Result, error) {
	if b.Code == nil {
		return exporter.Result{}, fmt.Errorf("bundle %s has no code artifact", b.Request.ID)
	}

	if !safeDirName(b.Request.ID) {
		return exporter.Result{}, fmt.Errorf("request ID %q is not a valid export directory name", b.Request.ID)
	}

	dir := filepath.Join(d.baseDir, b.Request.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return exporter.Result{}, fmt.Errorf("create export dir: %w", err)
	}

	var files []string

	codePath := filepath.Join(dir, "main"+extensionFor(b.Code.DeclaredLanguage))
	if err := os.WriteFile(codePath, []byte(b.Code.Content), 0o644); err != nil {
		return exporter.Result{}, fmt.Errorf("write code artifact: %w", err)
	}
	files = append(files, codePath)

	if b.Docs != nil {
		docPath := filepath.Join(dir, "README.md")
		if err := os.WriteFile(docPath, []byte(b.Docs.Content), 0o644); err != nil {
			return exporter.Result{}, fmt.Errorf("write doc artifact: %w", err)
		}
		files = append(files, docPath)
	}

	return exporter.Result{Files: files}, nil
}

// safeDirName reports whether id can be used as a single directory name
// under the export base. Request IDs are caller-supplied, so anything that
// is not one clean path element would escape the base directory.
func safeDirName(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	if strings.ContainsAny(id, `/\`) {
		return false
	}
	return filepath.Base(id) == id
}

func extensionFor(language string) string {
	if ext, ok := extensions[strings.ToLower(strings.TrimSpace(language))]; ok {
		return ext
	}
	return ".txt"
}
