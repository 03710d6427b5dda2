package extract_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"ytt/backend/internal/service/extract"
)

func TestExtract_PlainTextUTF8(t *testing.T) {
	res, err := extract.Extract("notes.TXT", []byte("\xEF\xBB\xBFGrüße aus Köln"))
	require.NoError(t, err)
	require.Equal(t, "Grüße aus Köln", res.Text)
	require.Equal(t, extract.FormatText, res.Format)
}

func TestExtract_PlainTextLatin1Fallback(t *testing.T) {
	// "café" in ISO-8859-1.
	res, err := extract.Extract("readme.md", []byte{'c', 'a', 'f', 0xE9})
	require.NoError(t, err)
	require.Equal(t, "café", res.Text)
}

func TestExtract_Subtitle(t *testing.T) {
	srt := "1\n00:00:01,000 --> 00:00:02,000\nHello\n\n2\n00:00:02,000 --> 00:00:03,000\nHello\nWorld\n"
	res, err := extract.Extract("clip.srt", []byte(srt))
	require.NoError(t, err)
	require.Equal(t, "Hello\nWorld", res.Text)
	require.Equal(t, extract.FormatSubtitle, res.Format)
}

func TestExtract_JSONKeepsKeyOrder(t *testing.T) {
	res, err := extract.Extract("data.json", []byte(`{"zeta":1,"alpha":{"text":"Grüße <b>"}}`))
	require.NoError(t, err)
	require.Equal(t, "{\n  \"zeta\": 1,\n  \"alpha\": {\n    \"text\": \"Grüße <b>\"\n  }\n}", res.Text)
	require.Equal(t, extract.FormatJSON, res.Format)
}

func TestExtract_InvalidJSON(t *testing.T) {
	_, err := extract.Extract("data.json", []byte(`{"a":`))
	require.Error(t, err)
}

func TestExtract_YAMLBlockStyle(t *testing.T) {
	res, err := extract.Extract("conf.yml", []byte("zeta: 1\nalpha: {greeting: hallo, list: [a, b]}\n"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(res.Text, "zeta: 1\nalpha:\n  greeting: hallo\n"), res.Text)
	require.Contains(t, res.Text, "- a\n")
	require.NotContains(t, res.Text, "{")
	require.NotContains(t, res.Text, "[")
	require.Equal(t, extract.FormatYAML, res.Format)
}

func TestExtract_HTML(t *testing.T) {
	page := `<html><head><title>T</title><script>var secret = 1;</script></head>
<body><article><h1>Heading</h1>
<p>First paragraph with enough words to look like an article body for the parser.</p>
<p>Second paragraph &amp; more text that continues the article for a little while.</p>
</article></body></html>`

	res, err := extract.Extract("page.html", []byte(page))
	require.NoError(t, err)
	require.Equal(t, extract.FormatHTML, res.Format)
	require.Contains(t, res.Text, "First paragraph with enough words")
	require.Contains(t, res.Text, "Second paragraph & more text")
	require.NotContains(t, res.Text, "<p>")
	require.NotContains(t, res.Text, "secret")
	require.Contains(t, res.Text, "parser.\n\nSecond")
}

func TestExtract_Unsupported(t *testing.T) {
	for _, name := range []string{"doc.pdf", "doc.docx", "noext"} {
		_, err := extract.Extract(name, []byte("x"))
		require.ErrorIs(t, err, extract.ErrUnsupportedFormat, name)
	}
}

func TestSupportedExtensions(t *testing.T) {
	for _, ext := range extract.SupportedExtensions {
		require.True(t, strings.HasPrefix(ext, "."))
	}
}
