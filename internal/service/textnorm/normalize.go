// Package textnorm reflows line-oriented text into paragraphs for
// translation and canonicalizes text for duplicate detection.
package textnorm

import (
	"strings"
)

// ParagraphSeparator joins paragraphs and is the boundary chunking splits on.
const ParagraphSeparator = "\n\n"

// maxParagraphLines bounds how many lines accumulate before a forced flush.
const maxParagraphLines = 3

// MergeIntoParagraphs joins consecutive lines into paragraphs. A paragraph
// ends at a blank line, at a line ending in sentence punctuation, or once
// it holds more than three lines.
func MergeIntoParagraphs(text string) string {
	var paragraphs []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = current[:0]
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}

		current = append(current, line)
		if endsSentence(line) || len(current) > maxParagraphLines {
			flush()
		}
	}
	flush()

	return strings.Join(paragraphs, ParagraphSeparator)
}

func endsSentence(line string) bool {
	switch line[len(line)-1] {
	case '.', '!', '?', ':', ';':
		return true
	}
	return false
}

// NormalizeForComparison turns line breaks into spaces and trims the
// result. Only used to compare texts, never stored.
func NormalizeForComparison(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.TrimSpace(text)
}

// Matches reports whether newText is the same content as candidate: equal
// after normalization, or sharing more than 80% of newText's word count in
// distinct words. The ratio is strict, so exactly 80% does not match.
func Matches(candidate, newText string) bool {
	a := NormalizeForComparison(candidate)
	b := NormalizeForComparison(newText)
	if a == b {
		return true
	}

	newWords := strings.Fields(b)
	if len(newWords) == 0 {
		return false
	}

	candidateSet := make(map[string]struct{})
	for _, w := range strings.Fields(a) {
		candidateSet[w] = struct{}{}
	}

	overlap := 0
	seen := make(map[string]struct{}, len(newWords))
	for _, w := range newWords {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if _, ok := candidateSet[w]; ok {
			overlap++
		}
	}

	// overlap > 0.8 * count, kept in integers to avoid float rounding.
	return overlap*5 > len(newWords)*4
}
