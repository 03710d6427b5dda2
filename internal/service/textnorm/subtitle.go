package textnorm

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	cueIndexRe  = regexp.MustCompile(`^\d+$`)
	timestampRe = regexp.MustCompile(`^\d{2}:\d{2}`)
	markupRe    = regexp.MustCompile(`<[^>]+>`)

	markupPolicy = bluemonday.StrictPolicy()
)

// CleanSubtitle converts a VTT or SRT track into plain text lines. It drops
// headers, cue indices and timing lines, strips inline markup, and removes
// repeated lines (rolling auto-captions) keeping the first occurrence.
func CleanSubtitle(raw string) string {
	var lines []string
	seen := make(map[string]struct{})

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "WEBVTT" {
			continue
		}
		if strings.HasPrefix(line, "Kind:") || strings.HasPrefix(line, "Language:") {
			continue
		}
		if strings.Contains(line, "-->") || cueIndexRe.MatchString(line) || timestampRe.MatchString(line) {
			continue
		}

		line = StripMarkup(line)
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// StripMarkup removes inline tags such as <c>, <i> or <00:00:01.000>.
func StripMarkup(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	s = html.UnescapeString(markupPolicy.Sanitize(s))
	// Cue timestamp tags are not valid HTML and survive the sanitizer as text.
	s = markupRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
