// Package extract turns uploaded documents into plain text for translation.
package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"gopkg.in/yaml.v3"

	"ytt/backend/internal/service/textnorm"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// Formats reported in Result.Format.
const (
	FormatText     = "text"
	FormatSubtitle = "subtitle"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatHTML     = "html"
)

// Result is the extracted text of one document.
type Result struct {
	Text   string
	Format string
}

// SupportedExtensions lists accepted file extensions, lowercase with dot.
var SupportedExtensions = []string{".txt", ".md", ".srt", ".vtt", ".json", ".yaml", ".yml", ".html", ".htm"}

// Extract picks an extractor by the extension of name.
func Extract(name string, data []byte) (Result, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".txt", ".md":
		return Result{Text: decodeText(data), Format: FormatText}, nil
	case ".srt", ".vtt":
		return Result{Text: textnorm.CleanSubtitle(strings.ToValidUTF8(string(data), "")), Format: FormatSubtitle}, nil
	case ".json":
		return extractJSON(data)
	case ".yaml", ".yml":
		return extractYAML(data)
	case ".html", ".htm":
		return extractHTML(data)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText reads UTF-8, falling back to Latin-1 for anything else.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "")
	}
	return string(decoded)
}

// extractJSON re-indents the document, keeping key order.
func extractJSON(data []byte) (Result, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimPrefix(data, utf8BOM), "", "  "); err != nil {
		return Result{}, fmt.Errorf("parse json: %w", err)
	}
	return Result{Text: buf.String(), Format: FormatJSON}, nil
}

// extractYAML re-dumps the document in block style, keeping key order.
func extractYAML(data []byte) (Result, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Result{}, fmt.Errorf("parse yaml: %w", err)
	}
	if doc.Kind == 0 {
		return Result{Text: "", Format: FormatYAML}, nil
	}
	resetStyle(&doc)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return Result{}, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return Result{}, fmt.Errorf("encode yaml: %w", err)
	}
	return Result{Text: buf.String(), Format: FormatYAML}, nil
}

// resetStyle drops flow style so collections come out in block form.
func resetStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle
	for _, c := range n.Content {
		resetStyle(c)
	}
}
