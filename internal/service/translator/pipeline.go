package translator

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"ytt/backend/internal/logger"
	"ytt/backend/internal/service/textnorm"
)

// DefaultChunkSize is the largest text, in characters, sent in one call.
const DefaultChunkSize = 5000

// Pipeline translates texts of any length by splitting them into
// paragraph-aligned chunks.
type Pipeline struct {
	chunkSize int
	limiter   *RateLimiter
}

func NewPipeline(chunkSize int, limiter *RateLimiter) *Pipeline {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if limiter == nil {
		limiter = NewRateLimiter(DefaultRateLimit)
	}
	return &Pipeline{chunkSize: chunkSize, limiter: limiter}
}

// Translate sends text through provider. Chunks are translated in order and
// rejoined with a blank line. A failed chunk fails the whole call.
func (p *Pipeline) Translate(ctx context.Context, provider Provider, text, source, target string) (Translation, error) {
	if utf8.RuneCountInString(text) <= p.chunkSize {
		if err := p.limiter.Wait(ctx); err != nil {
			return Translation{}, fmt.Errorf("wait for rate limiter: %w", err)
		}
		return provider.Translate(ctx, text, source, target)
	}

	chunks := SplitChunks(text, p.chunkSize)
	logger.Info("translate chunked", "module", "translator", "action", "translate", "resource", provider.Name(), "result", "ok", "chunks", len(chunks), "chars", len(text))

	translated := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		if err := p.limiter.Wait(ctx); err != nil {
			return Translation{}, fmt.Errorf("wait for rate limiter: %w", err)
		}
		res, err := provider.Translate(ctx, chunk, source, target)
		if err != nil {
			return Translation{}, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		translated = append(translated, res.Text)
	}

	out := Translation{Text: strings.Join(translated, textnorm.ParagraphSeparator)}
	if source != AutoLanguage {
		out.DetectedLanguage = source
	}
	return out, nil
}

// SplitChunks groups paragraphs greedily into chunks while the joined
// length stays under size. A paragraph longer than size becomes a chunk of
// its own, unsplit.
func SplitChunks(text string, size int) []string {
	var chunks []string
	var current strings.Builder
	currentLen := 0

	for _, paragraph := range strings.Split(text, textnorm.ParagraphSeparator) {
		n := utf8.RuneCountInString(paragraph)
		if currentLen+n+2 < size {
			if current.Len() > 0 {
				current.WriteString(textnorm.ParagraphSeparator)
				currentLen += 2
			}
			current.WriteString(paragraph)
			currentLen += n
			continue
		}

		if current.Len() > 0 {
			chunks = append(chunks, current.String())
		}
		current.Reset()
		current.WriteString(paragraph)
		currentLen = n
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
