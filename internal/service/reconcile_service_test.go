package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"ytt/backend/internal/model"
	"ytt/backend/internal/repository/testutil"
	"ytt/backend/internal/service"
)

func TestReconcile_NewTextTranslation(t *testing.T) {
	ctx := context.Background()
	repo := newEntryRepo(t)
	svc := service.NewReconcileService(repo)

	out, err := svc.Reconcile(ctx, service.TranslationResult{
		OriginalText:   "Bonjour le monde",
		TranslatedText: "Hello world",
		SourceLang:     "fr",
		TargetLang:     "en",
		Provider:       "libretranslate",
	}, "")
	require.NoError(t, err)
	require.Equal(t, service.ActionCreated, out.Action)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, model.EntryTypeText, all[0].Type)
	require.Equal(t, "Bonjour le monde", all[0].Title)
	require.Equal(t, "Hello world", all[0].TranslatedText)
	require.Equal(t, out.Entry.ID, all[0].ID)
}

func TestReconcile_MergesIntoUntranslatedTranscript(t *testing.T) {
	ctx := context.Background()
	repo := newEntryRepo(t)
	video := testutil.VideoEntry("abc123XYZ89", "one two three\nfour five six", "en", "", "")
	require.NoError(t, repo.InsertAtFront(ctx, video))

	svc := service.NewReconcileService(repo)
	out, err := svc.Reconcile(ctx, service.TranslationResult{
		OriginalText:   "one two three four five six",
		TranslatedText: "eins zwei drei vier fünf sechs",
		SourceLang:     "en",
		TargetLang:     "de",
		Provider:       "libretranslate",
	}, "")
	require.NoError(t, err)
	require.Equal(t, service.ActionMerged, out.Action)
	require.Equal(t, video.ID, out.Entry.ID)
	require.Equal(t, "de", out.Entry.TargetLang)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].UpdatedAt)
}

func TestReconcile_EightyPercentOverlapCreatesEntry(t *testing.T) {
	ctx := context.Background()
	repo := newEntryRepo(t)
	require.NoError(t, repo.InsertAtFront(ctx, testutil.VideoEntry("abc123XYZ89", "a b c d", "en", "", "")))

	out, err := service.NewReconcileService(repo).Reconcile(ctx, service.TranslationResult{
		OriginalText:   "a b c d e",
		TranslatedText: "A B C D E",
		SourceLang:     "en",
		TargetLang:     "de",
	}, "")
	require.NoError(t, err)
	require.Equal(t, service.ActionCreated, out.Action)
	require.Equal(t, model.EntryTypeText, out.Entry.Type)
}

func TestReconcile_SkipsTranslatedAndOtherLanguageTranscripts(t *testing.T) {
	ctx := context.Background()
	repo := newEntryRepo(t)
	require.NoError(t, repo.InsertAtFront(ctx, testutil.VideoEntry("aaaaaaaaaaa", "same words here", "en", "gleiche", "de")))
	require.NoError(t, repo.InsertAtFront(ctx, testutil.VideoEntry("bbbbbbbbbbb", "same words here", "fr", "", "")))

	out, err := service.NewReconcileService(repo).Reconcile(ctx, service.TranslationResult{
		OriginalText:   "same words here",
		TranslatedText: "mismas palabras",
		SourceLang:     "en",
		TargetLang:     "es",
	}, "")
	require.NoError(t, err)
	require.Equal(t, service.ActionCreated, out.Action)
}

func TestReconcile_FileNeverMerges(t *testing.T) {
	ctx := context.Background()
	repo := newEntryRepo(t)
	require.NoError(t, repo.InsertAtFront(ctx, testutil.VideoEntry("abc123XYZ89", "hello there", "en", "", "")))

	out, err := service.NewReconcileService(repo).Reconcile(ctx, service.TranslationResult{
		OriginalText:   "hello there",
		TranslatedText: "hallo",
		SourceLang:     "en",
		TargetLang:     "de",
		File:           &model.FileSource{FileName: "notes.txt", FileType: "text"},
	}, "")
	require.NoError(t, err)
	require.Equal(t, service.ActionCreated, out.Action)
	require.Equal(t, model.EntryTypeFile, out.Entry.Type)
	require.Equal(t, "File: notes.txt", out.Entry.Title)
}

func TestReconcile_ExplicitLinkage(t *testing.T) {
	ctx := context.Background()
	repo := newEntryRepo(t)
	video := testutil.VideoEntry("abc123XYZ89", "completely different text", "en", "", "")
	require.NoError(t, repo.InsertAtFront(ctx, video))

	out, err := service.NewReconcileService(repo).Reconcile(ctx, service.TranslationResult{
		OriginalText:   "unrelated words",
		TranslatedText: "Hallo Welt",
		SourceLang:     "en",
		TargetLang:     "de",
		Provider:       "openai",
	}, video.ID)
	require.NoError(t, err)
	require.Equal(t, service.ActionUpdated, out.Action)
	require.Equal(t, video.ID, out.Entry.ID)
	require.Equal(t, "Hallo Welt", out.Entry.TranslatedText)
	require.NotNil(t, out.Entry.UpdatedAt)
	require.Equal(t, 1, countVideoEntries(t, repo, "abc123XYZ89", "en", "de"))
}

func TestReconcile_ExplicitLinkageUnknownID(t *testing.T) {
	_, err := service.NewReconcileService(newEntryRepo(t)).Reconcile(context.Background(), service.TranslationResult{
		OriginalText:   "x",
		TranslatedText: "y",
		SourceLang:     "en",
		TargetLang:     "de",
	}, "missing")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestReconcile_BlankTranslationLeavesLinkedEntry(t *testing.T) {
	ctx := context.Background()
	repo := newEntryRepo(t)
	entry := testutil.TextEntry("hello", "hallo", "en", "de")
	require.NoError(t, repo.InsertAtFront(ctx, entry))

	out, err := service.NewReconcileService(repo).Reconcile(ctx, service.TranslationResult{
		OriginalText:   "hello",
		TranslatedText: "   ",
		SourceLang:     "en",
		TargetLang:     "de",
	}, entry.ID)
	require.NoError(t, err)
	require.Equal(t, service.ActionUnchanged, out.Action)

	got, err := repo.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	require.Equal(t, "hallo", got.TranslatedText)
}

func TestRecordTranscript_TranslationFillsUntranslatedSlot(t *testing.T) {
	ctx := context.Background()
	repo := newEntryRepo(t)
	svc := service.NewReconcileService(repo)

	first, err := svc.RecordTranscript(ctx, service.TranscriptRecord{
		VideoID:      "abc123XYZ89",
		URL:          "https://youtu.be/abc123XYZ89",
		OriginalText: "hello world",
		SourceLang:   "en",
	})
	require.NoError(t, err)
	require.Equal(t, service.ActionCreated, first.Action)
	require.Equal(t, "abc123XYZ89", first.Entry.Title)
	require.NotNil(t, first.Entry.AvailableLanguages)

	second, err := svc.RecordTranscript(ctx, service.TranscriptRecord{
		VideoID:        "abc123XYZ89",
		OriginalText:   "hello world",
		SourceLang:     "en",
		TranslatedText: "Hallo Welt",
		TargetLang:     "de",
		Provider:       "libretranslate",
	})
	require.NoError(t, err)
	require.Equal(t, service.ActionUpdated, second.Action)
	require.Equal(t, first.Entry.ID, second.Entry.ID)

	third, err := svc.RecordTranscript(ctx, service.TranscriptRecord{
		VideoID:        "abc123XYZ89",
		OriginalText:   "hello world",
		SourceLang:     "en",
		TranslatedText: "Bonjour le monde",
		TargetLang:     "fr",
	})
	require.NoError(t, err)
	require.Equal(t, service.ActionCreated, third.Action)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}
