package email

import (
	"bytes"
	htmltemplate "html/template"
	"path/filepath"
	texttemplate "text/template"

	"github.com/kycivic/parcelpost/internal/domain"
)

// TemplateRenderer renders email bodies from the templates directory.
//
// Plain-text request bodies (*.txt) go through text/template so payload
// values are never HTML-escaped; HTML bodies (*.html) go through
// html/template. Templates are parsed once at startup and a missing or
// broken template file fails construction.
type TemplateRenderer struct {
	text *texttemplate.Template
	html *htmltemplate.Template
}

// NewTemplateRenderer parses all *.txt and *.html templates under dir.
func NewTemplateRenderer(dir string) (*TemplateRenderer, error) {
	text, err := texttemplate.ParseGlob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, domain.Wrap(err, domain.ETEMPLATE, "email.NewTemplateRenderer", "failed to parse text email templates")
	}

	html, err := htmltemplate.ParseGlob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, domain.Wrap(err, domain.ETEMPLATE, "email.NewTemplateRenderer", "failed to parse HTML email templates")
	}

	return &TemplateRenderer{text: text, html: html}, nil
}

// Render executes the named template with data. The extension selects the
// engine. Unknown names and render failures surface as template errors,
// which abort the whole request they belong to.
func (r *TemplateRenderer) Render(name string, data any) (string, error) {
	const op = "TemplateRenderer.Render"

	var buf bytes.Buffer
	var err error
	switch filepath.Ext(name) {
	case ".txt":
		err = r.text.ExecuteTemplate(&buf, name, data)
	case ".html":
		err = r.html.ExecuteTemplate(&buf, name, data)
	default:
		return "", domain.Errorf(domain.ETEMPLATE, op, "unknown template type %q", name)
	}
	if err != nil {
		return "", domain.Wrap(err, domain.ETEMPLATE, op, "failed to render template "+name)
	}
	return buf.String(), nil
}
