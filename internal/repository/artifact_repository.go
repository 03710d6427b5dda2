package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"ytt/backend/internal/logger"
	"ytt/backend/internal/model"
)

const metaFileName = "meta.json"

var ErrInvalidArtifactName = errors.New("invalid artifact name")

// artifactNameRe limits video ids and language codes used in paths.
var artifactNameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ArtifactRepository stores per-video transcript files:
//
//	<root>/<video_id>/transcript_<src>.txt
//	<root>/<video_id>/translation_<tgt>.txt
//	<root>/<video_id>/meta.json
type ArtifactRepository interface {
	// SaveFetch writes the artifacts of a fresh fetch. An existing source
	// transcript is left untouched.
	SaveFetch(ctx context.Context, result model.TranscriptResult) error
	// SaveTranslation writes a translation file and patches meta.json when present.
	SaveTranslation(ctx context.Context, videoID, targetLang, translated string) error
	Dir(videoID string) string
}

type artifactRepository struct {
	root string
}

func NewArtifactRepository(root string) (ArtifactRepository, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}
	return &artifactRepository{root: root}, nil
}

func (r *artifactRepository) Dir(videoID string) string {
	return filepath.Join(r.root, videoID)
}

func (r *artifactRepository) SaveFetch(ctx context.Context, result model.TranscriptResult) error {
	if err := checkArtifactName(result.VideoID, result.SourceLang); err != nil {
		return err
	}
	dir, err := r.ensureDir(result.VideoID)
	if err != nil {
		return err
	}

	sourcePath := filepath.Join(dir, "transcript_"+result.SourceLang+".txt")
	if _, err := os.Stat(sourcePath); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(sourcePath, []byte(result.SourceRaw), 0o644); err != nil {
			return fmt.Errorf("write source transcript: %w", err)
		}
	}

	if result.TargetLang != nil && result.TargetRaw != nil {
		if err := checkArtifactName(*result.TargetLang); err != nil {
			return err
		}
		translationPath := filepath.Join(dir, "translation_"+*result.TargetLang+".txt")
		if err := os.WriteFile(translationPath, []byte(*result.TargetRaw), 0o644); err != nil {
			return fmt.Errorf("write translation: %w", err)
		}
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metaFileName), data, 0o644); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}

	logger.Debug("transcript artifacts saved", "module", "repository", "action", "save", "resource", "artifact", "result", "ok", "video_id", result.VideoID)
	return nil
}

func (r *artifactRepository) SaveTranslation(ctx context.Context, videoID, targetLang, translated string) error {
	if err := checkArtifactName(videoID, targetLang); err != nil {
		return err
	}
	dir, err := r.ensureDir(videoID)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(dir, "translation_"+targetLang+".txt"), []byte(translated), 0o644); err != nil {
		return fmt.Errorf("write translation: %w", err)
	}

	metaPath := filepath.Join(dir, metaFileName)
	data, err := os.ReadFile(metaPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read meta: %w", err)
	}

	// Patch as a generic document so fields written by other versions survive.
	var meta map[string]any
	if err := json.Unmarshal(data, &meta); err != nil {
		logger.Warn("meta.json unreadable, not patched", "module", "repository", "action", "update", "resource", "artifact", "result", "failed", "video_id", videoID, "error", err)
		return nil
	}
	meta["target_transcript_raw"] = translated
	meta["target_transcript_processed"] = translated
	meta["target_lang"] = targetLang
	meta["translation_error"] = nil

	out, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	if err := os.WriteFile(metaPath, out, 0o644); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return nil
}

func (r *artifactRepository) ensureDir(videoID string) (string, error) {
	dir := r.Dir(videoID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create video dir: %w", err)
	}
	return dir, nil
}

func checkArtifactName(names ...string) error {
	for _, n := range names {
		if !artifactNameRe.MatchString(n) {
			return fmt.Errorf("%w: %q", ErrInvalidArtifactName, n)
		}
	}
	return nil
}
