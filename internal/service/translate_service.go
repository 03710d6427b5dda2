package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"ytt/backend/internal/logger"
	"ytt/backend/internal/model"
	"ytt/backend/internal/repository"
	"ytt/backend/internal/service/extract"
	"ytt/backend/internal/service/textnorm"
	"ytt/backend/internal/service/translator"
	"ytt/backend/internal/snowflake"
)

// LanguageBackend is the default translation backend, which can also
// detect languages and list the ones it supports.
type LanguageBackend interface {
	translator.Provider
	Detect(ctx context.Context, text string) ([]translator.Detection, error)
	Languages(ctx context.Context) ([]translator.Language, error)
	URL() string
}

// UploadedFile is a document submitted for translation.
type UploadedFile struct {
	Name string
	Size int64
	Data []byte
}

type TranslateRequest struct {
	Text       string
	File       *UploadedFile
	SourceLang string
	TargetLang string
	Provider   string
	EntryID    string
}

type TranslateResponse struct {
	ID             string          `json:"id"`
	OriginalText   string          `json:"original_text"`
	TranslatedText string          `json:"translated_text"`
	SourceLang     string          `json:"source_lang"`
	TargetLang     string          `json:"target_lang"`
	Provider       string          `json:"provider"`
	ProcessingTime float64         `json:"processing_time"`
	Action         ReconcileAction `json:"action"`
}

type DetectionResult struct {
	DetectedLanguage string                 `json:"detected_language"`
	Confidence       float64                `json:"confidence"`
	Alternatives     []translator.Detection `json:"alternatives,omitempty"`
}

type ProviderInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Available bool   `json:"available"`
	URL       string `json:"url,omitempty"`
}

// TranslateLimits bounds what a single request may submit.
type TranslateLimits struct {
	MaxTextLength int
	MaxFileSize   int64
	UploadDir     string
}

type TranslateService interface {
	Translate(ctx context.Context, req TranslateRequest) (TranslateResponse, error)
	Detect(ctx context.Context, text string) (DetectionResult, error)
	Languages(ctx context.Context) ([]translator.Language, error)
	Providers(ctx context.Context) []ProviderInfo
}

type translateService struct {
	backend   LanguageBackend
	pipeline  *translator.Pipeline
	settings  SettingsService
	reconcile ReconcileService
	entries   repository.EntryRepository
	artifacts repository.ArtifactRepository
	limits    TranslateLimits
}

func NewTranslateService(
	backend LanguageBackend,
	pipeline *translator.Pipeline,
	settings SettingsService,
	reconcile ReconcileService,
	entries repository.EntryRepository,
	artifacts repository.ArtifactRepository,
	limits TranslateLimits,
) TranslateService {
	return &translateService{
		backend:   backend,
		pipeline:  pipeline,
		settings:  settings,
		reconcile: reconcile,
		entries:   entries,
		artifacts: artifacts,
		limits:    limits,
	}
}

func (s *translateService) Translate(ctx context.Context, req TranslateRequest) (TranslateResponse, error) {
	start := time.Now()

	if req.SourceLang == "" {
		req.SourceLang = translator.AutoLanguage
	}
	if req.TargetLang == "" {
		req.TargetLang = "en"
	}
	if req.Provider == "" {
		req.Provider = translator.ProviderLibreTranslate
	}
	if !langCodeRe.MatchString(req.SourceLang) || !langCodeRe.MatchString(req.TargetLang) {
		return TranslateResponse{}, fmt.Errorf("%w: language code", ErrInvalid)
	}

	text := req.Text
	var file *model.FileSource
	if req.File != nil {
		var err error
		text, file, err = s.readUpload(req.File)
		if err != nil {
			return TranslateResponse{}, err
		}
	}
	if strings.TrimSpace(text) == "" {
		return TranslateResponse{}, fmt.Errorf("%w: either text or file must be provided", ErrInvalid)
	}
	if utf8.RuneCountInString(text) > s.limits.MaxTextLength {
		return TranslateResponse{}, fmt.Errorf("%w: text length exceeds %d characters", ErrTooLarge, s.limits.MaxTextLength)
	}

	if req.EntryID != "" {
		entry, err := s.entries.GetByID(ctx, req.EntryID)
		if err != nil {
			return TranslateResponse{}, err
		}
		if entry == nil {
			return TranslateResponse{}, fmt.Errorf("%w: entry %s", ErrNotFound, req.EntryID)
		}
	}

	provider, err := s.resolveProvider(ctx, req.Provider)
	if err != nil {
		return TranslateResponse{}, err
	}

	translated, err := s.pipeline.Translate(ctx, provider, textnorm.MergeIntoParagraphs(text), req.SourceLang, req.TargetLang)
	if err != nil {
		logger.Error("translate failed", "module", "service", "action", "translate", "resource", "text", "result", "failed", "provider", provider.Name(), "error", err)
		return TranslateResponse{}, err
	}

	source := req.SourceLang
	if translated.DetectedLanguage != "" {
		source = translated.DetectedLanguage
	}

	outcome, err := s.reconcile.Reconcile(ctx, TranslationResult{
		OriginalText:   text,
		TranslatedText: translated.Text,
		SourceLang:     source,
		TargetLang:     req.TargetLang,
		Provider:       provider.Name(),
		File:           file,
	}, req.EntryID)
	if err != nil {
		return TranslateResponse{}, err
	}

	if outcome.Entry.IsYouTube() && (outcome.Action == ActionUpdated || outcome.Action == ActionMerged) {
		if err := s.artifacts.SaveTranslation(ctx, outcome.Entry.Video(), req.TargetLang, translated.Text); err != nil {
			logger.Error("save translation artifact failed", "module", "service", "action", "save", "resource", "artifact", "result", "failed", "video_id", outcome.Entry.Video(), "error", err)
		}
	}

	elapsed := time.Since(start)
	logger.Info("text translated", "module", "service", "action", "translate", "resource", "text", "result", "ok", "provider", provider.Name(), "source", source, "target", req.TargetLang, "entry_action", outcome.Action, "duration_ms", elapsed.Milliseconds())

	return TranslateResponse{
		ID:             outcome.Entry.ID,
		OriginalText:   text,
		TranslatedText: translated.Text,
		SourceLang:     source,
		TargetLang:     req.TargetLang,
		Provider:       provider.Name(),
		ProcessingTime: elapsed.Seconds(),
		Action:         outcome.Action,
	}, nil
}

// readUpload extracts the text of an uploaded document and keeps a copy of
// the bytes in the upload directory.
func (s *translateService) readUpload(f *UploadedFile) (string, *model.FileSource, error) {
	size := f.Size
	if size < int64(len(f.Data)) {
		size = int64(len(f.Data))
	}
	if size > s.limits.MaxFileSize {
		return "", nil, fmt.Errorf("%w: file size exceeds %dMB limit", ErrTooLarge, s.limits.MaxFileSize>>20)
	}

	name := filepath.Base(filepath.Clean("/" + f.Name))
	if name == "/" || name == "." {
		return "", nil, fmt.Errorf("%w: file name", ErrInvalid)
	}

	res, err := extract.Extract(name, f.Data)
	if err != nil {
		return "", nil, err
	}

	storedName := snowflake.NextName() + "_" + name
	if s.limits.UploadDir != "" {
		if err := os.MkdirAll(s.limits.UploadDir, 0o755); err != nil {
			return "", nil, fmt.Errorf("create upload dir: %w", err)
		}
		if err := os.WriteFile(filepath.Join(s.limits.UploadDir, storedName), f.Data, 0o644); err != nil {
			return "", nil, fmt.Errorf("store upload: %w", err)
		}
	}

	return res.Text, &model.FileSource{
		FileName:   name,
		FileType:   res.Format,
		StoredName: storedName,
	}, nil
}

func (s *translateService) resolveProvider(ctx context.Context, name string) (translator.Provider, error) {
	switch {
	case name == translator.ProviderLibreTranslate:
		return s.backend, nil
	case translator.IsLLMProvider(name):
		cfg, err := s.settings.LLMConfig(ctx, name)
		if err != nil {
			return nil, err
		}
		return translator.NewLLMProvider(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", translator.ErrUnsupportedProvider, name)
	}
}

func (s *translateService) Detect(ctx context.Context, text string) (DetectionResult, error) {
	if strings.TrimSpace(text) == "" {
		return DetectionResult{}, fmt.Errorf("%w: text is required", ErrInvalid)
	}
	detections, err := s.backend.Detect(ctx, text)
	if err != nil {
		return DetectionResult{}, err
	}
	if len(detections) == 0 {
		return DetectionResult{}, &translator.ProviderError{
			Provider: s.backend.Name(),
			Err:      errors.New("empty detection result"),
		}
	}

	result := DetectionResult{
		DetectedLanguage: detections[0].Language,
		Confidence:       detections[0].Confidence,
	}
	if len(detections) > 1 {
		result.Alternatives = detections[1:]
	}
	return result, nil
}

func (s *translateService) Languages(ctx context.Context) ([]translator.Language, error) {
	return s.backend.Languages(ctx)
}

var providerNames = map[string]string{
	translator.ProviderOpenAI:     "OpenAI",
	translator.ProviderAnthropic:  "Anthropic",
	translator.ProviderCompatible: "OpenAI Compatible",
}

// Providers lists LibreTranslate and, when an API key is stored, the
// configured AI provider.
func (s *translateService) Providers(ctx context.Context) []ProviderInfo {
	providers := []ProviderInfo{{
		ID:        translator.ProviderLibreTranslate,
		Name:      "LibreTranslate",
		Available: true,
		URL:       s.backend.URL(),
	}}

	ai, err := s.settings.GetAISettings(ctx)
	if err != nil {
		logger.Warn("load ai settings failed", "module", "service", "action", "list", "resource", "provider", "result", "failed", "error", err)
		return providers
	}
	if ai.APIKey != "" {
		providers = append(providers, ProviderInfo{
			ID:        ai.Provider,
			Name:      providerNames[ai.Provider],
			Available: true,
		})
	}
	return providers
}
