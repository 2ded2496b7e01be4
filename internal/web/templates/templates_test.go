package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadPage(t *testing.T) {
	var buf bytes.Buffer
	err := UploadPage(PageData{Region: "BR", MaxFileSize: 32 * 1024 * 1024}).Render(context.Background(), &buf)
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, `action="/api/normalize?report=true"`)
	assert.Contains(t, html, "<strong>BR</strong>")
	assert.Contains(t, html, "32 MB")
	assert.NotContains(t, html, `name="persist"`)
}

func TestUploadPage_Persistence(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, UploadPage(PageData{Region: "BR", MaxFileSize: 10, Persistence: true}).Render(context.Background(), &buf))

	assert.Contains(t, buf.String(), `name="persist"`)
	assert.Contains(t, buf.String(), "10 bytes")
}

func TestErrorAlert_Escapes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ErrorAlert("<b>bad</b>", "", "ERR000").Render(context.Background(), &buf))

	out := buf.String()
	assert.Contains(t, out, "&lt;b&gt;bad&lt;/b&gt;")
	assert.Contains(t, out, "Code: ERR000")
	assert.Equal(t, 2, strings.Count(out, "<p"), "empty action adds no paragraph")
}
