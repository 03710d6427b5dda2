package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ytt/backend/internal/model"
	"ytt/backend/internal/repository"
	"ytt/backend/internal/service"
	"ytt/backend/internal/service/translator"
)

const testVideoURL = "https://www.youtube.com/watch?v=abc123XYZ89"

type transcriptFixture struct {
	svc       service.TranscriptService
	source    *fakeSource
	provider  *stubProvider
	entries   repository.EntryRepository
	artifacts string
}

func newTranscriptFixture(t *testing.T) *transcriptFixture {
	t.Helper()
	entries := newEntryRepo(t)
	artifacts, root := newArtifactRepo(t)
	source := &fakeSource{
		tracks: map[string]string{"en": "Hello everyone\nwelcome back."},
		info:   model.VideoInfo{Title: "Test Video", Duration: 61},
	}
	provider := &stubProvider{}
	svc := service.NewTranscriptService(
		source,
		entries,
		artifacts,
		service.NewReconcileService(entries),
		translator.NewPipeline(translator.DefaultChunkSize, nil),
		provider,
	)
	return &transcriptFixture{svc: svc, source: source, provider: provider, entries: entries, artifacts: root}
}

func TestTranscriptService_CachedFetch(t *testing.T) {
	ctx := context.Background()
	f := newTranscriptFixture(t)
	req := service.TranscriptRequest{URL: testVideoURL, SourceLang: "en", TargetLang: "de"}

	first, err := f.svc.Fetch(ctx, req)
	require.NoError(t, err)
	require.False(t, first.Cached)
	require.Equal(t, "abc123XYZ89", first.VideoID)
	require.Equal(t, "Test Video", first.Title)
	require.NotNil(t, first.TargetRaw)
	require.Nil(t, first.TranslationError)

	second, err := f.svc.Fetch(ctx, req)
	require.NoError(t, err)
	require.True(t, second.Cached)
	require.Equal(t, first.SourceRaw, second.SourceRaw)
	require.Equal(t, *first.TargetRaw, *second.TargetRaw)
	require.Equal(t, first.EntryID, second.EntryID)

	info, list, sub := f.source.counts()
	require.Equal(t, 1, info)
	require.Equal(t, 1, list)
	require.Equal(t, 1, sub)
	require.Equal(t, 1, f.provider.Calls())
	require.Equal(t, 1, countVideoEntries(t, f.entries, "abc123XYZ89", "en", "de"))
}

func TestTranscriptService_WritesArtifacts(t *testing.T) {
	f := newTranscriptFixture(t)
	res, err := f.svc.Fetch(context.Background(), service.TranscriptRequest{URL: testVideoURL, SourceLang: "en", TargetLang: "de", MergeLines: true})
	require.NoError(t, err)
	require.NotNil(t, res.SourceProcessed)
	require.Equal(t, "Hello everyone welcome back.", *res.SourceProcessed)

	dir := filepath.Join(f.artifacts, "abc123XYZ89")
	require.Equal(t, "Hello everyone\nwelcome back.", readFile(t, filepath.Join(dir, "transcript_en.txt")))
	require.Equal(t, "[de] Hello everyone welcome back.", readFile(t, filepath.Join(dir, "translation_de.txt")))
	require.Contains(t, readFile(t, filepath.Join(dir, "meta.json")), `"video_id": "abc123XYZ89"`)
}

func TestTranscriptService_CachedHitWithoutTargetReportsEntryTarget(t *testing.T) {
	ctx := context.Background()
	f := newTranscriptFixture(t)

	_, err := f.svc.Fetch(ctx, service.TranscriptRequest{URL: testVideoURL, SourceLang: "en", TargetLang: "de"})
	require.NoError(t, err)

	res, err := f.svc.Fetch(ctx, service.TranscriptRequest{URL: testVideoURL, SourceLang: "en"})
	require.NoError(t, err)
	require.True(t, res.Cached)
	require.NotNil(t, res.TargetRaw)
	require.NotNil(t, res.TargetLang)
	require.Equal(t, "de", *res.TargetLang)
}

func TestTranscriptService_CacheKeyIsLanguagePair(t *testing.T) {
	ctx := context.Background()
	f := newTranscriptFixture(t)

	_, err := f.svc.Fetch(ctx, service.TranscriptRequest{URL: testVideoURL, SourceLang: "en"})
	require.NoError(t, err)
	_, err = f.svc.Fetch(ctx, service.TranscriptRequest{URL: testVideoURL, SourceLang: "en", TargetLang: "de"})
	require.NoError(t, err)
	_, err = f.svc.Fetch(ctx, service.TranscriptRequest{URL: testVideoURL, SourceLang: "en", TargetLang: "fr"})
	require.NoError(t, err)
	again, err := f.svc.Fetch(ctx, service.TranscriptRequest{URL: testVideoURL, SourceLang: "en", TargetLang: "fr"})
	require.NoError(t, err)
	require.True(t, again.Cached)

	require.Equal(t, 1, countVideoEntries(t, f.entries, "abc123XYZ89", "en", "de"))
	require.Equal(t, 1, countVideoEntries(t, f.entries, "abc123XYZ89", "en", "fr"))
	all, err := f.entries.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestTranscriptService_SameTargetAsSourceIsUntranslated(t *testing.T) {
	f := newTranscriptFixture(t)
	res, err := f.svc.Fetch(context.Background(), service.TranscriptRequest{URL: testVideoURL, SourceLang: "en", TargetLang: "en"})
	require.NoError(t, err)
	require.Nil(t, res.TargetLang)
	require.Zero(t, f.provider.Calls())
}

func TestTranscriptService_TranslationFailureIsSoft(t *testing.T) {
	ctx := context.Background()
	f := newTranscriptFixture(t)
	f.provider.err = &translator.ProviderError{Provider: "libretranslate", Status: 503, Err: errors.New("busy")}

	res, err := f.svc.Fetch(ctx, service.TranscriptRequest{URL: testVideoURL, SourceLang: "en", TargetLang: "de"})
	require.NoError(t, err)
	require.NotNil(t, res.TranslationError)
	require.Contains(t, *res.TranslationError, "Translation failed")
	require.Nil(t, res.TargetRaw)
	require.Equal(t, "de", *res.TargetLang)

	entry, err := f.entries.GetByID(ctx, res.EntryID)
	require.NoError(t, err)
	require.False(t, entry.IsTranslated())
	require.Empty(t, entry.TargetLang)
}

func TestTranscriptService_Errors(t *testing.T) {
	ctx := context.Background()
	f := newTranscriptFixture(t)

	_, err := f.svc.Fetch(ctx, service.TranscriptRequest{URL: "https://example.com/watch?v=nope"})
	require.ErrorIs(t, err, service.ErrInvalidURL)

	_, err = f.svc.Fetch(ctx, service.TranscriptRequest{URL: testVideoURL, SourceLang: "../etc"})
	require.ErrorIs(t, err, service.ErrInvalid)

	_, err = f.svc.Fetch(ctx, service.TranscriptRequest{URL: testVideoURL, SourceLang: "ja"})
	require.ErrorIs(t, err, service.ErrFetchFailure)

	f.source.tracks["es"] = "ERROR"
	_, err = f.svc.Fetch(ctx, service.TranscriptRequest{URL: testVideoURL, SourceLang: "es"})
	require.ErrorIs(t, err, service.ErrFetchFailure)

	all, err := f.entries.All(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestTranscriptService_Info(t *testing.T) {
	f := newTranscriptFixture(t)
	details, err := f.svc.Info(context.Background(), "https://youtu.be/abc123XYZ89", "")
	require.NoError(t, err)
	require.Equal(t, "abc123XYZ89", details.VideoID)
	require.Equal(t, "Test Video", details.VideoInfo.Title)
	require.Equal(t, []string{"en"}, details.AvailableSubtitles)

	_, err = f.svc.Info(context.Background(), "not a url", "")
	require.ErrorIs(t, err, service.ErrInvalidURL)
}
