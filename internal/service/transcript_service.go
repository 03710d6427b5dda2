package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/sync/errgroup"

	"ytt/backend/internal/logger"
	"ytt/backend/internal/model"
	"ytt/backend/internal/repository"
	"ytt/backend/internal/service/textnorm"
	"ytt/backend/internal/service/translator"
	"ytt/backend/internal/service/youtube"
)

var langCodeRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,20}$`)

// TranscriptSource provides video metadata and subtitle tracks.
type TranscriptSource interface {
	VideoInfo(ctx context.Context, videoID, cookies string) model.VideoInfo
	ListSubtitles(ctx context.Context, videoID, cookies string) []string
	FetchSubtitle(ctx context.Context, videoID, lang, cookies string) (string, error)
}

type TranscriptRequest struct {
	URL        string
	SourceLang string
	TargetLang string
	UseCookies string
	MergeLines bool
}

// VideoDetails is the metadata returned by Info.
type VideoDetails struct {
	VideoID            string          `json:"video_id"`
	VideoInfo          model.VideoInfo `json:"video_info"`
	AvailableSubtitles []string        `json:"available_subtitles"`
}

// TranscriptService fetches transcripts, caching them in the history by
// video and language pair.
type TranscriptService interface {
	Fetch(ctx context.Context, req TranscriptRequest) (model.TranscriptResult, error)
	Info(ctx context.Context, url, cookies string) (VideoDetails, error)
}

type transcriptService struct {
	source    TranscriptSource
	entries   repository.EntryRepository
	artifacts repository.ArtifactRepository
	reconcile ReconcileService
	pipeline  *translator.Pipeline
	provider  translator.Provider
}

// NewTranscriptService wires the fetch path. provider translates fetched
// transcripts when a target language is requested.
func NewTranscriptService(
	source TranscriptSource,
	entries repository.EntryRepository,
	artifacts repository.ArtifactRepository,
	reconcile ReconcileService,
	pipeline *translator.Pipeline,
	provider translator.Provider,
) TranscriptService {
	return &transcriptService{
		source:    source,
		entries:   entries,
		artifacts: artifacts,
		reconcile: reconcile,
		pipeline:  pipeline,
		provider:  provider,
	}
}

func (s *transcriptService) Fetch(ctx context.Context, req TranscriptRequest) (model.TranscriptResult, error) {
	videoID, ok := youtube.ExtractVideoID(req.URL)
	if !ok {
		return model.TranscriptResult{}, ErrInvalidURL
	}
	if !youtube.ValidCookies(req.UseCookies) {
		return model.TranscriptResult{}, fmt.Errorf("%w: cookies %q", ErrInvalid, req.UseCookies)
	}
	if req.SourceLang == "" {
		req.SourceLang = "en"
	}
	if !langCodeRe.MatchString(req.SourceLang) {
		return model.TranscriptResult{}, fmt.Errorf("%w: source language %q", ErrInvalid, req.SourceLang)
	}
	if req.TargetLang == req.SourceLang {
		req.TargetLang = ""
	}
	if req.TargetLang != "" && !langCodeRe.MatchString(req.TargetLang) {
		return model.TranscriptResult{}, fmt.Errorf("%w: target language %q", ErrInvalid, req.TargetLang)
	}

	cached, err := s.entries.FindYouTubeEntry(ctx, videoID, req.SourceLang, req.TargetLang)
	if err != nil {
		return model.TranscriptResult{}, fmt.Errorf("cache lookup: %w", err)
	}
	if cached != nil && (req.TargetLang == "" || cached.IsTranslated()) {
		logger.Info("transcript cache hit", "module", "service", "action", "fetch", "resource", "transcript", "result", "ok", "video_id", videoID, "source", req.SourceLang, "target", req.TargetLang)
		return cachedResult(*cached, req, videoID), nil
	}

	start := time.Now()
	var (
		info      model.VideoInfo
		available []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		info = s.source.VideoInfo(gctx, videoID, req.UseCookies)
		return nil
	})
	g.Go(func() error {
		available = s.source.ListSubtitles(gctx, videoID, req.UseCookies)
		return nil
	})
	_ = g.Wait()

	raw, err := s.source.FetchSubtitle(ctx, videoID, req.SourceLang, req.UseCookies)
	if err != nil {
		return model.TranscriptResult{}, fmt.Errorf("%w: %v", ErrFetchFailure, err)
	}
	if raw == "" {
		return model.TranscriptResult{}, fmt.Errorf("%w: could not fetch transcript for language %q", ErrFetchFailure, req.SourceLang)
	}

	title := info.Title
	if title == "" {
		title = videoID
	}

	result := model.TranscriptResult{
		VideoID:            videoID,
		Title:              title,
		URL:                req.URL,
		VideoInfo:          info,
		AvailableLanguages: available,
		SourceLang:         req.SourceLang,
		SourceRaw:          raw,
		FolderPath:         videoID,
	}
	if req.MergeLines {
		processed := textnorm.MergeIntoParagraphs(raw)
		result.SourceProcessed = &processed
	}

	rec := TranscriptRecord{
		VideoID:            videoID,
		URL:                req.URL,
		Title:              title,
		OriginalText:       raw,
		SourceLang:         req.SourceLang,
		AvailableLanguages: available,
		VideoInfo:          info,
	}

	if req.TargetLang != "" {
		target := req.TargetLang
		result.TargetLang = &target

		text := raw
		if result.SourceProcessed != nil {
			text = *result.SourceProcessed
		}
		translated, err := s.pipeline.Translate(ctx, s.provider, text, req.SourceLang, target)
		if err != nil {
			msg := "Translation failed: " + err.Error()
			result.TranslationError = &msg
			logger.Warn("transcript translation failed", "module", "service", "action", "translate", "resource", "transcript", "result", "failed", "video_id", videoID, "target", target, "error", err)
		} else {
			result.TargetRaw = &translated.Text
			result.TargetProcessed = &translated.Text
			rec.TranslatedText = translated.Text
			rec.TargetLang = target
			rec.Provider = s.provider.Name()
		}
	}

	outcome, err := s.reconcile.RecordTranscript(ctx, rec)
	if err != nil {
		return model.TranscriptResult{}, fmt.Errorf("record transcript: %w", err)
	}
	result.EntryID = outcome.Entry.ID

	if err := s.artifacts.SaveFetch(ctx, result); err != nil {
		logger.Error("save transcript artifacts failed", "module", "service", "action", "save", "resource", "artifact", "result", "failed", "video_id", videoID, "error", err)
	}

	logger.Info("transcript fetched", "module", "service", "action", "fetch", "resource", "transcript", "result", "ok", "video_id", videoID, "source", req.SourceLang, "target", req.TargetLang, "chars", len(raw), "entry_action", outcome.Action, "duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

func cachedResult(entry model.Entry, req TranscriptRequest, videoID string) model.TranscriptResult {
	result := model.TranscriptResult{
		VideoID:    videoID,
		Title:      entry.Title,
		URL:        req.URL,
		SourceLang: req.SourceLang,
		SourceRaw:  entry.OriginalText,
		Cached:     true,
		EntryID:    entry.ID,
		FolderPath: videoID,
	}
	if entry.VideoSource != nil {
		result.VideoInfo = entry.VideoInfo
		result.AvailableLanguages = entry.AvailableLanguages
	}
	if result.AvailableLanguages == nil {
		result.AvailableLanguages = []string{}
	}
	if req.MergeLines {
		processed := textnorm.MergeIntoParagraphs(entry.OriginalText)
		result.SourceProcessed = &processed
	}
	if entry.IsTranslated() {
		target := entry.TargetLang
		result.TargetLang = &target
		translated := entry.TranslatedText
		result.TargetRaw = &translated
		if req.MergeLines {
			processed := textnorm.MergeIntoParagraphs(translated)
			result.TargetProcessed = &processed
		}
	}
	return result
}

func (s *transcriptService) Info(ctx context.Context, url, cookies string) (VideoDetails, error) {
	videoID, ok := youtube.ExtractVideoID(url)
	if !ok {
		return VideoDetails{}, ErrInvalidURL
	}
	if !youtube.ValidCookies(cookies) {
		return VideoDetails{}, fmt.Errorf("%w: cookies %q", ErrInvalid, cookies)
	}

	details := VideoDetails{VideoID: videoID}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		details.VideoInfo = s.source.VideoInfo(gctx, videoID, cookies)
		return nil
	})
	g.Go(func() error {
		details.AvailableSubtitles = s.source.ListSubtitles(gctx, videoID, cookies)
		return nil
	})
	_ = g.Wait()

	if details.AvailableSubtitles == nil {
		details.AvailableSubtitles = []string{}
	}
	return details, nil
}
