package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"ytt/backend/internal/logger"
	"ytt/backend/internal/model"
	"ytt/backend/internal/repository"
	"ytt/backend/internal/service/textnorm"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

type HistoryQuery struct {
	Limit      int
	Offset     int
	SourceLang string
	TargetLang string
}

// DedupeReport summarizes a Dedupe run.
type DedupeReport struct {
	Before int `json:"before"`
	After  int `json:"after"`
}

type HistoryService interface {
	List(ctx context.Context, q HistoryQuery) ([]model.Entry, error)
	Get(ctx context.Context, id string) (*model.Entry, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	// Dedupe collapses transcript entries of the same video and source
	// language into one, keeping other translation targets as separate
	// entries, and folds pasted-text translations into the transcripts they
	// match.
	Dedupe(ctx context.Context) (DedupeReport, error)
	// PruneOlderThan deletes entries created more than days ago.
	PruneOlderThan(ctx context.Context, days int) (int, error)
}

type historyService struct {
	entries repository.EntryRepository
	now     func() time.Time
}

func NewHistoryService(entries repository.EntryRepository) HistoryService {
	return &historyService{entries: entries, now: time.Now}
}

func (s *historyService) List(ctx context.Context, q HistoryQuery) ([]model.Entry, error) {
	if q.Limit < 1 || q.Limit > MaxHistoryLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalid, MaxHistoryLimit)
	}
	if q.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", ErrInvalid)
	}
	return s.entries.List(ctx, repository.EntryListFilter{
		SourceLang: q.SourceLang,
		TargetLang: q.TargetLang,
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
}

func (s *historyService) Get(ctx context.Context, id string) (*model.Entry, error) {
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrNotFound
	}
	return entry, nil
}

func (s *historyService) Delete(ctx context.Context, id string) error {
	deleted, err := s.entries.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	logger.Info("history entry deleted", "module", "service", "action", "delete", "resource", "entry", "result", "ok", "entry_id", id)
	return nil
}

func (s *historyService) Clear(ctx context.Context) error {
	if err := s.entries.Clear(ctx); err != nil {
		return err
	}
	logger.Info("history cleared", "module", "service", "action", "delete", "resource", "entry", "result", "ok")
	return nil
}

func (s *historyService) PruneOlderThan(ctx context.Context, days int) (int, error) {
	if days < 1 {
		return 0, fmt.Errorf("%w: retention days must be at least 1", ErrInvalid)
	}
	cutoff := s.now().AddDate(0, 0, -days)
	n, err := s.entries.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Info("history pruned", "module", "service", "action", "delete", "resource", "entry", "result", "ok", "count", n, "days", days)
	}
	return n, nil
}

type transcriptKey struct {
	videoID    string
	sourceLang string
}

func (s *historyService) Dedupe(ctx context.Context) (DedupeReport, error) {
	all, err := s.entries.All(ctx)
	if err != nil {
		return DedupeReport{}, err
	}

	var (
		order  []transcriptKey
		groups = make(map[transcriptKey][]model.Entry)
		texts  []model.Entry
		others []model.Entry
	)
	for _, e := range all {
		switch {
		case e.Type == model.EntryTypeYouTube && e.Video() != "":
			key := transcriptKey{videoID: e.Video(), sourceLang: e.SourceLang}
			if _, ok := groups[key]; !ok {
				order = append(order, key)
			}
			groups[key] = append(groups[key], e)
		case e.Type == model.EntryTypeText:
			texts = append(texts, e)
		default:
			others = append(others, e)
		}
	}

	kept := make([]model.Entry, 0, len(all))
	for _, key := range order {
		kept = append(kept, collapseTranscripts(groups[key])...)
	}

	for _, t := range texts {
		if !foldIntoTranscript(kept, t) {
			others = append(others, t)
		}
	}
	kept = append(kept, others...)

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].CreatedAt.After(kept[j].CreatedAt.Time)
	})

	report := DedupeReport{Before: len(all), After: len(kept)}
	if err := s.entries.ReplaceAll(ctx, kept); err != nil {
		return report, err
	}
	logger.Info("history deduplicated", "module", "service", "action", "dedupe", "resource", "entry", "result", "ok", "before", report.Before, "after", report.After)
	return report, nil
}

// collapseTranscripts keeps the most complete entry of a group. When it is
// untranslated it takes over the first translation found in the group.
// Translations into other targets survive as one entry per target.
func collapseTranscripts(group []model.Entry) []model.Entry {
	best := 0
	for i := 1; i < len(group); i++ {
		if moreComplete(group[i], group[best]) {
			best = i
		}
	}
	keep := group[best]
	if !keep.IsTranslated() {
		for i, e := range group {
			if i == best || !e.IsTranslated() {
				continue
			}
			keep.TranslatedText = e.TranslatedText
			keep.TargetLang = e.TargetLang
			keep.Provider = e.Provider
			if keep.Provider == "" {
				keep.Provider = "youtube"
			}
			updated := e.CreatedAt
			keep.UpdatedAt = &updated
			break
		}
	}

	out := []model.Entry{keep}
	byTarget := make(map[string]int)
	if keep.IsTranslated() {
		byTarget[keep.TargetLang] = 0
	}
	for i, e := range group {
		if i == best || !e.IsTranslated() {
			continue
		}
		j, ok := byTarget[e.TargetLang]
		switch {
		case !ok:
			byTarget[e.TargetLang] = len(out)
			out = append(out, e)
		case j > 0 && moreComplete(e, out[j]):
			out[j] = e
		}
	}
	return out
}

func moreComplete(a, b model.Entry) bool {
	if la, lb := len(a.OriginalText), len(b.OriginalText); la != lb {
		return la > lb
	}
	if la, lb := len(a.TranslatedText), len(b.TranslatedText); la != lb {
		return la > lb
	}
	return len(a.AvailableLanguages) > len(b.AvailableLanguages)
}

// foldIntoTranscript gives t's translation to the first untranslated
// transcript it matches. Reports whether it did.
func foldIntoTranscript(transcripts []model.Entry, t model.Entry) bool {
	if !t.IsTranslated() {
		return false
	}
	for i := range transcripts {
		yt := &transcripts[i]
		if yt.SourceLang != t.SourceLang || yt.IsTranslated() {
			continue
		}
		if !textnorm.Matches(yt.OriginalText, t.OriginalText) {
			continue
		}
		yt.TranslatedText = t.TranslatedText
		yt.TargetLang = t.TargetLang
		yt.Provider = t.Provider
		if yt.Provider == "" {
			yt.Provider = "libretranslate"
		}
		updated := t.CreatedAt
		yt.UpdatedAt = &updated
		return true
	}
	return false
}
