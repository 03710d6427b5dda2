package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ytt/backend/internal/logger"
	"ytt/backend/internal/model"
	"ytt/backend/internal/repository"
	"ytt/backend/internal/service/textnorm"
)

// ReconcileAction tells what Reconcile did with a translation.
type ReconcileAction string

const (
	ActionCreated   ReconcileAction = "created"
	ActionUpdated   ReconcileAction = "updated"
	ActionMerged    ReconcileAction = "merged"
	ActionUnchanged ReconcileAction = "unchanged"
)

// TranslationResult is a finished standalone translation.
type TranslationResult struct {
	OriginalText   string
	TranslatedText string
	SourceLang     string
	TargetLang     string
	Provider       string
	// Title overrides the derived title when set.
	Title string
	// File is set when the text came from an uploaded document.
	File *model.FileSource
}

// TranscriptRecord is a fetched transcript, optionally translated.
type TranscriptRecord struct {
	VideoID            string
	URL                string
	Title              string
	OriginalText       string
	SourceLang         string
	AvailableLanguages []string
	VideoInfo          model.VideoInfo
	TranslatedText     string
	TargetLang         string
	Provider           string
}

type ReconcileOutcome struct {
	Entry  model.Entry
	Action ReconcileAction
}

// ReconcileService decides whether a translation creates a new history
// entry or completes an existing transcript entry.
type ReconcileService interface {
	// Reconcile stores a standalone translation. A non-empty entryID links
	// it to that entry; otherwise an untranslated transcript with matching
	// text absorbs it, or a new entry is created.
	Reconcile(ctx context.Context, result TranslationResult, entryID string) (ReconcileOutcome, error)
	// RecordTranscript stores a transcript keyed by video, source and target
	// language.
	RecordTranscript(ctx context.Context, rec TranscriptRecord) (ReconcileOutcome, error)
}

type reconcileService struct {
	entries repository.EntryRepository
}

func NewReconcileService(entries repository.EntryRepository) ReconcileService {
	return &reconcileService{entries: entries}
}

func (s *reconcileService) Reconcile(ctx context.Context, result TranslationResult, entryID string) (ReconcileOutcome, error) {
	hasTranslation := strings.TrimSpace(result.TranslatedText) != ""

	if entryID != "" {
		return s.link(ctx, result, entryID, hasTranslation)
	}

	if result.File == nil && hasTranslation {
		candidate, err := s.findMergeCandidate(ctx, result)
		if err != nil {
			return ReconcileOutcome{}, err
		}
		if candidate != nil {
			updated, err := s.entries.UpdateTranslation(ctx, candidate.ID, result.TranslatedText, result.TargetLang, result.Provider)
			if err != nil {
				return ReconcileOutcome{}, fmt.Errorf("merge into transcript: %w", err)
			}
			logger.Info("translation merged into transcript", "module", "service", "action", "update", "resource", "entry", "result", "ok", "entry_id", updated.ID, "video_id", updated.Video())
			return ReconcileOutcome{Entry: *updated, Action: ActionMerged}, nil
		}
	}

	entry := newStandaloneEntry(result)
	if err := s.entries.InsertAtFront(ctx, entry); err != nil {
		return ReconcileOutcome{}, fmt.Errorf("insert entry: %w", err)
	}
	logger.Info("translation entry created", "module", "service", "action", "create", "resource", "entry", "result", "ok", "entry_id", entry.ID, "type", entry.Type)
	return ReconcileOutcome{Entry: entry, Action: ActionCreated}, nil
}

func (s *reconcileService) link(ctx context.Context, result TranslationResult, entryID string, hasTranslation bool) (ReconcileOutcome, error) {
	if !hasTranslation {
		existing, err := s.entries.GetByID(ctx, entryID)
		if err != nil {
			return ReconcileOutcome{}, err
		}
		if existing == nil {
			return ReconcileOutcome{}, ErrNotFound
		}
		return ReconcileOutcome{Entry: *existing, Action: ActionUnchanged}, nil
	}

	updated, err := s.entries.UpdateTranslation(ctx, entryID, result.TranslatedText, result.TargetLang, result.Provider)
	if errors.Is(err, repository.ErrEntryNotFound) {
		return ReconcileOutcome{}, ErrNotFound
	}
	if err != nil {
		return ReconcileOutcome{}, fmt.Errorf("update entry: %w", err)
	}
	logger.Info("translation linked to entry", "module", "service", "action", "update", "resource", "entry", "result", "ok", "entry_id", entryID)
	return ReconcileOutcome{Entry: *updated, Action: ActionUpdated}, nil
}

// findMergeCandidate returns the first untranslated transcript in the same
// source language whose text matches the translated original.
func (s *reconcileService) findMergeCandidate(ctx context.Context, result TranslationResult) (*model.Entry, error) {
	all, err := s.entries.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	for i := range all {
		e := &all[i]
		if e.Type != model.EntryTypeYouTube || e.SourceLang != result.SourceLang {
			continue
		}
		if e.OriginalText == "" || e.IsTranslated() {
			continue
		}
		if textnorm.Matches(e.OriginalText, result.OriginalText) {
			return e, nil
		}
	}
	return nil, nil
}

func newStandaloneEntry(result TranslationResult) model.Entry {
	entry := model.Entry{
		ID:             uuid.NewString(),
		Type:           model.EntryTypeText,
		Title:          result.Title,
		OriginalText:   result.OriginalText,
		TranslatedText: result.TranslatedText,
		SourceLang:     result.SourceLang,
		TargetLang:     result.TargetLang,
		Provider:       result.Provider,
		CreatedAt:      model.Now(),
	}
	if result.File != nil {
		entry.Type = model.EntryTypeFile
		entry.FileSource = result.File
		if entry.Title == "" {
			entry.Title = "File: " + result.File.FileName
		}
	}
	if entry.Title == "" {
		entry.Title = model.GenerateTitle(result.OriginalText)
	}
	return entry
}

func (s *reconcileService) RecordTranscript(ctx context.Context, rec TranscriptRecord) (ReconcileOutcome, error) {
	hasTranslation := strings.TrimSpace(rec.TranslatedText) != ""
	targetLang := rec.TargetLang
	if !hasTranslation {
		targetLang = ""
	}

	existing, err := s.entries.FindYouTubeEntry(ctx, rec.VideoID, rec.SourceLang, targetLang)
	if err != nil {
		return ReconcileOutcome{}, fmt.Errorf("find transcript: %w", err)
	}
	if existing == nil && hasTranslation {
		// The untranslated fetch of this video is the slot a translation fills.
		existing, err = s.entries.FindUntranslatedYouTubeEntry(ctx, rec.VideoID, rec.SourceLang)
		if err != nil {
			return ReconcileOutcome{}, fmt.Errorf("find transcript: %w", err)
		}
	}

	if existing != nil {
		if hasTranslation && !existing.IsTranslated() {
			updated, err := s.entries.UpdateTranslation(ctx, existing.ID, rec.TranslatedText, targetLang, rec.Provider)
			if err != nil {
				return ReconcileOutcome{}, fmt.Errorf("update transcript: %w", err)
			}
			return ReconcileOutcome{Entry: *updated, Action: ActionUpdated}, nil
		}
		return ReconcileOutcome{Entry: *existing, Action: ActionUnchanged}, nil
	}

	entry := model.Entry{
		ID:           uuid.NewString(),
		Type:         model.EntryTypeYouTube,
		Title:        rec.Title,
		OriginalText: rec.OriginalText,
		SourceLang:   rec.SourceLang,
		CreatedAt:    model.Now(),
		VideoSource: &model.VideoSource{
			VideoID:            rec.VideoID,
			YouTubeURL:         rec.URL,
			AvailableLanguages: rec.AvailableLanguages,
			VideoInfo:          rec.VideoInfo,
		},
	}
	if entry.VideoSource.AvailableLanguages == nil {
		entry.VideoSource.AvailableLanguages = []string{}
	}
	if hasTranslation {
		entry.TranslatedText = rec.TranslatedText
		entry.TargetLang = targetLang
		entry.Provider = rec.Provider
	}
	if entry.Title == "" {
		entry.Title = rec.VideoID
	}

	if err := s.entries.InsertAtFront(ctx, entry); err != nil {
		return ReconcileOutcome{}, fmt.Errorf("insert transcript: %w", err)
	}
	logger.Info("transcript entry created", "module", "service", "action", "create", "resource", "entry", "result", "ok", "entry_id", entry.ID, "video_id", rec.VideoID, "translated", hasTranslation)
	return ReconcileOutcome{Entry: entry, Action: ActionCreated}, nil
}
