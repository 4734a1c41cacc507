package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
)

// PageRenderer renders the HTML pages returned by the confirmation endpoint.
type PageRenderer struct {
	templates *template.Template
	logger    *slog.Logger
}

// NewPageRenderer parses all *.html page templates under dir.
func NewPageRenderer(dir string, logger *slog.Logger) (*PageRenderer, error) {
	templates, err := template.ParseGlob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, err
	}
	return &PageRenderer{templates: templates, logger: logger}, nil
}

// Render writes the named page with the given status. A render failure falls
// back to a plain-text 500 so the client always gets a response.
func (pr *PageRenderer) Render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pr.templates.ExecuteTemplate(w, name, data); err != nil {
		pr.logger.Error("page rendering failed", "template", name, "error", err)
		// Headers are already sent; best effort fallback body.
		_, _ = w.Write([]byte("An internal error occurred."))
	}
}
