package repository_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ytt/backend/internal/model"
	"ytt/backend/internal/repository"
)

func strPtr(s string) *string { return &s }

func TestArtifactRepository_SaveFetch(t *testing.T) {
	root := t.TempDir()
	repo, err := repository.NewArtifactRepository(root)
	require.NoError(t, err)
	ctx := context.Background()

	result := model.TranscriptResult{
		VideoID:    "abc123XYZ89",
		SourceLang: "en",
		SourceRaw:  "hello",
		TargetLang: strPtr("de"),
		TargetRaw:  strPtr("hallo"),
		FolderPath: "abc123XYZ89",
	}
	require.NoError(t, repo.SaveFetch(ctx, result))

	dir := repo.Dir("abc123XYZ89")
	source, err := os.ReadFile(filepath.Join(dir, "transcript_en.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(source))

	translation, err := os.ReadFile(filepath.Join(dir, "translation_de.txt"))
	require.NoError(t, err)
	require.Equal(t, "hallo", string(translation))

	var meta model.TranscriptResult
	data, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &meta))
	require.Equal(t, "abc123XYZ89", meta.VideoID)
}

func TestArtifactRepository_SaveFetchKeepsExistingSource(t *testing.T) {
	repo, err := repository.NewArtifactRepository(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, repo.SaveFetch(ctx, model.TranscriptResult{VideoID: "abc123XYZ89", SourceLang: "en", SourceRaw: "first"}))
	require.NoError(t, repo.SaveFetch(ctx, model.TranscriptResult{VideoID: "abc123XYZ89", SourceLang: "en", SourceRaw: "second"}))

	source, err := os.ReadFile(filepath.Join(repo.Dir("abc123XYZ89"), "transcript_en.txt"))
	require.NoError(t, err)
	require.Equal(t, "first", string(source))

	_, err = os.Stat(filepath.Join(repo.Dir("abc123XYZ89"), "translation_de.txt"))
	require.True(t, os.IsNotExist(err))
}

func TestArtifactRepository_SaveTranslationPatchesMeta(t *testing.T) {
	repo, err := repository.NewArtifactRepository(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, repo.SaveFetch(ctx, model.TranscriptResult{
		VideoID:          "abc123XYZ89",
		SourceLang:       "en",
		SourceRaw:        "hello",
		TranslationError: strPtr("Translation failed"),
	}))
	require.NoError(t, repo.SaveTranslation(ctx, "abc123XYZ89", "de", "hallo"))

	data, err := os.ReadFile(filepath.Join(repo.Dir("abc123XYZ89"), "meta.json"))
	require.NoError(t, err)
	var meta map[string]any
	require.NoError(t, json.Unmarshal(data, &meta))
	require.Equal(t, "hallo", meta["target_transcript_raw"])
	require.Equal(t, "de", meta["target_lang"])
	require.Nil(t, meta["translation_error"])
	require.Equal(t, "hello", meta["source_transcript_raw"])
}

func TestArtifactRepository_SaveTranslationWithoutMeta(t *testing.T) {
	repo, err := repository.NewArtifactRepository(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, repo.SaveTranslation(context.Background(), "abc123XYZ89", "de", "hallo"))
	_, err = os.Stat(filepath.Join(repo.Dir("abc123XYZ89"), "meta.json"))
	require.True(t, os.IsNotExist(err))
}

func TestArtifactRepository_RejectsPathNames(t *testing.T) {
	repo, err := repository.NewArtifactRepository(t.TempDir())
	require.NoError(t, err)

	err = repo.SaveTranslation(context.Background(), "../escape", "de", "x")
	require.ErrorIs(t, err, repository.ErrInvalidArtifactName)

	err = repo.SaveFetch(context.Background(), model.TranscriptResult{VideoID: "abc123XYZ89", SourceLang: "en/../x"})
	require.ErrorIs(t, err, repository.ErrInvalidArtifactName)
}
