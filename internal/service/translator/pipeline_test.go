package translator_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"ytt/backend/internal/service/translator"
)

// echoProvider upper-cases its input and records every call.
type echoProvider struct {
	mu      sync.Mutex
	calls   []string
	failOn  int // 1-based call index to fail, 0 = never
	detects string
}

func (p *echoProvider) Name() string { return "echo" }

func (p *echoProvider) Translate(_ context.Context, text, _, _ string) (translator.Translation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, text)
	if p.failOn == len(p.calls) {
		return translator.Translation{}, &translator.ProviderError{Provider: "echo", Status: 503, Err: errors.New("unavailable")}
	}
	return translator.Translation{Text: strings.ToUpper(text), DetectedLanguage: p.detects}, nil
}

func TestSplitChunks_UnderLimitIsOneChunk(t *testing.T) {
	text := "first paragraph\n\nsecond paragraph"
	require.Equal(t, []string{text}, translator.SplitChunks(text, 100))
}

func TestSplitChunks_GreedyGrouping(t *testing.T) {
	// Each paragraph is 4 chars; "aaaa\n\nbbbb" is 10 chars.
	text := "aaaa\n\nbbbb\n\ncccc\n\ndddd"
	chunks := translator.SplitChunks(text, 11)
	require.Equal(t, []string{"aaaa\n\nbbbb", "cccc\n\ndddd"}, chunks)
}

func TestSplitChunks_StrictLessThan(t *testing.T) {
	// 4 + 4 + 2 == 10 is not < 10, so the second paragraph starts a new chunk.
	chunks := translator.SplitChunks("aaaa\n\nbbbb", 10)
	require.Equal(t, []string{"aaaa", "bbbb"}, chunks)
}

func TestSplitChunks_OversizedParagraphKeptWhole(t *testing.T) {
	long := strings.Repeat("x", 50)
	chunks := translator.SplitChunks("short\n\n"+long+"\n\ntail", 20)
	require.Equal(t, []string{"short", long, "tail"}, chunks)
}

func TestSplitChunks_PreservesParagraphOrder(t *testing.T) {
	var paragraphs []string
	for i := 0; i < 40; i++ {
		paragraphs = append(paragraphs, strings.Repeat(string(rune('a'+i%26)), 10+i))
	}
	text := strings.Join(paragraphs, "\n\n")

	chunks := translator.SplitChunks(text, 120)
	require.Greater(t, len(chunks), 1)
	require.Equal(t, text, strings.Join(chunks, "\n\n"))
}

func TestPipeline_SingleCall(t *testing.T) {
	p := translator.NewPipeline(100, translator.NewRateLimiter(1000))
	provider := &echoProvider{detects: "fr"}

	res, err := p.Translate(context.Background(), provider, "Bonjour le monde", translator.AutoLanguage, "en")
	require.NoError(t, err)
	require.Equal(t, "BONJOUR LE MONDE", res.Text)
	require.Equal(t, "fr", res.DetectedLanguage)
	require.Len(t, provider.calls, 1)
}

func TestPipeline_ChunkedRoundTrip(t *testing.T) {
	p := translator.NewPipeline(30, translator.NewRateLimiter(1000))
	provider := &echoProvider{}

	text := "one two three four\n\nfive six seven eight\n\nnine ten eleven twelve"
	res, err := p.Translate(context.Background(), provider, text, "en", "de")
	require.NoError(t, err)
	require.Len(t, provider.calls, 3)
	require.Equal(t, strings.ToUpper(text), res.Text)
	require.Equal(t, "en", res.DetectedLanguage)
	require.Len(t, strings.Split(res.Text, "\n\n"), 3)
}

func TestPipeline_ChunkedAutoSourceHasNoDetectedLanguage(t *testing.T) {
	p := translator.NewPipeline(10, translator.NewRateLimiter(1000))
	res, err := p.Translate(context.Background(), &echoProvider{detects: "fr"}, "aaaaaa\n\nbbbbbb", translator.AutoLanguage, "de")
	require.NoError(t, err)
	require.Empty(t, res.DetectedLanguage)
}

func TestPipeline_ChunkFailureAbortsWholeCall(t *testing.T) {
	p := translator.NewPipeline(10, translator.NewRateLimiter(1000))
	provider := &echoProvider{failOn: 2}

	res, err := p.Translate(context.Background(), provider, "aaaaaa\n\nbbbbbb\n\ncccccc", "en", "de")
	require.Error(t, err)
	require.Empty(t, res.Text)
	require.Len(t, provider.calls, 2)

	var perr *translator.ProviderError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, 503, perr.Status)
}

func TestPipeline_CancelledContext(t *testing.T) {
	limiter := translator.NewRateLimiter(1)
	p := translator.NewPipeline(100, limiter)
	provider := &echoProvider{}

	// Drain the single burst token.
	_, err := p.Translate(context.Background(), provider, "warm up", "en", "de")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Translate(ctx, provider, "blocked", "en", "de")
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, provider.calls, 1)
}
