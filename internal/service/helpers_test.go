package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"ytt/backend/internal/model"
	"ytt/backend/internal/repository"
	"ytt/backend/internal/service/translator"
)

func newEntryRepo(t *testing.T) repository.EntryRepository {
	t.Helper()
	repo, err := repository.NewEntryRepository(filepath.Join(t.TempDir(), "history.json"))
	require.NoError(t, err)
	return repo
}

func newArtifactRepo(t *testing.T) (repository.ArtifactRepository, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "transcripts")
	repo, err := repository.NewArtifactRepository(root)
	require.NoError(t, err)
	return repo, root
}

// stubProvider prefixes its input with the target language.
type stubProvider struct {
	mu       sync.Mutex
	calls    int
	detected string
	err      error
}

func (p *stubProvider) Name() string { return translator.ProviderLibreTranslate }

func (p *stubProvider) Translate(_ context.Context, text, _, target string) (translator.Translation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return translator.Translation{}, p.err
	}
	return translator.Translation{Text: "[" + target + "] " + text, DetectedLanguage: p.detected}, nil
}

func (p *stubProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// stubBackend adds detection and language listing to stubProvider.
type stubBackend struct {
	stubProvider
	detections []translator.Detection
}

func (b *stubBackend) Detect(context.Context, string) ([]translator.Detection, error) {
	return b.detections, nil
}

func (b *stubBackend) Languages(context.Context) ([]translator.Language, error) {
	return []translator.Language{{Code: "en", Name: "English"}, {Code: "fr", Name: "French"}}, nil
}

func (b *stubBackend) URL() string { return "http://libretranslate.test" }

// fakeSource serves canned subtitles and counts calls.
type fakeSource struct {
	mu        sync.Mutex
	tracks    map[string]string
	info      model.VideoInfo
	infoCalls int
	listCalls int
	subCalls  int
}

func (f *fakeSource) VideoInfo(context.Context, string, string) model.VideoInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infoCalls++
	return f.info
}

func (f *fakeSource) ListSubtitles(context.Context, string, string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	langs := make([]string, 0, len(f.tracks))
	for lang := range f.tracks {
		langs = append(langs, lang)
	}
	return langs
}

func (f *fakeSource) FetchSubtitle(_ context.Context, _ string, lang, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subCalls++
	track, ok := f.tracks[lang]
	if !ok {
		return "", nil
	}
	if track == "ERROR" {
		return "", errors.New("yt-dlp exited with status 1")
	}
	return track, nil
}

func (f *fakeSource) counts() (info, list, sub int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.infoCalls, f.listCalls, f.subCalls
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func countVideoEntries(t *testing.T, repo repository.EntryRepository, videoID, source, target string) int {
	t.Helper()
	all, err := repo.All(context.Background())
	require.NoError(t, err)
	n := 0
	for _, e := range all {
		if e.Video() == videoID && e.SourceLang == source && e.TargetLang == target {
			n++
		}
	}
	return n
}
