package email

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kycivic/parcelpost/internal/domain"
)

func writeTemplateDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"pva_request.txt":   "Records request for {{.Address}}\n\n{{.PayloadJSON}}\n",
		"verification.html": `<a href="{{.VerifyURL}}">Verify</a>`,
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestTemplateRenderer_TextTemplateDoesNotEscape(t *testing.T) {
	renderer, err := NewTemplateRenderer(writeTemplateDir(t))
	require.NoError(t, err)

	out, err := renderer.Render("pva_request.txt", map[string]any{
		"Address":     `123 Main St "Unit B", Springfield, KY`,
		"PayloadJSON": `{"note": "<none>"}`,
	})
	require.NoError(t, err)

	// text/template leaves quotes and angle brackets alone.
	assert.Contains(t, out, `123 Main St "Unit B", Springfield, KY`)
	assert.Contains(t, out, `"<none>"`)
}

func TestTemplateRenderer_HTMLTemplateEscapesURL(t *testing.T) {
	renderer, err := NewTemplateRenderer(writeTemplateDir(t))
	require.NoError(t, err)

	out, err := renderer.Render("verification.html", map[string]any{
		"VerifyURL": "http://example.com/confirm_email?token=abc123",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "confirm_email?token=abc123")
}

func TestTemplateRenderer_UnknownName(t *testing.T) {
	renderer, err := NewTemplateRenderer(writeTemplateDir(t))
	require.NoError(t, err)

	_, err = renderer.Render("missing.txt", nil)
	require.Error(t, err)
	assert.Equal(t, domain.ETEMPLATE, domain.ErrorCode(err))

	_, err = renderer.Render("nonsense.pdf", nil)
	require.Error(t, err)
	assert.Equal(t, domain.ETEMPLATE, domain.ErrorCode(err))
}
