package extract

import (
	"bytes"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	readability "codeberg.org/readeck/go-readability/v2"
	"github.com/microcosm-cc/bluemonday"
)

// blockEndRe marks the end of block elements so paragraph breaks survive
// tag stripping.
var blockEndRe = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|blockquote|pre|section|article|tr|table|ul|ol)>`)

var (
	lineBreakRe = regexp.MustCompile(`(?i)<br\s*/?>`)
	blankRunRe  = regexp.MustCompile(`\n{3,}`)
	textPolicy  = bluemonday.StrictPolicy()

	uploadBaseURL = &url.URL{Scheme: "file", Path: "/upload.html"}
)

// extractHTML keeps the main article of an HTML page as plain text. Pages
// readability cannot parse fall back to the whole document.
func extractHTML(data []byte) (Result, error) {
	content := string(data)

	parser := readability.NewParser()
	if article, err := parser.Parse(bytes.NewReader(data), uploadBaseURL); err == nil {
		var buf bytes.Buffer
		if err := article.RenderHTML(&buf); err == nil && buf.Len() > 0 {
			content = buf.String()
		}
	}

	text := htmlToText(content)
	if text == "" {
		return Result{}, fmt.Errorf("html: no text content")
	}
	return Result{Text: text, Format: FormatHTML}, nil
}

func htmlToText(s string) string {
	s = lineBreakRe.ReplaceAllString(s, "\n")
	s = blockEndRe.ReplaceAllString(s, "$0\n\n")
	s = html.UnescapeString(textPolicy.Sanitize(s))

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	return strings.TrimSpace(blankRunRe.ReplaceAllString(s, "\n\n"))
}
