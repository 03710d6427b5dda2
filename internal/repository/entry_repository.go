package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ytt/backend/internal/logger"
	"ytt/backend/internal/model"
)

var ErrEntryNotFound = errors.New("entry not found")

type EntryListFilter struct {
	SourceLang string
	TargetLang string
	Limit      int
	Offset     int
}

// EntryRepository persists translation history, newest first.
type EntryRepository interface {
	InsertAtFront(ctx context.Context, entry model.Entry) error
	GetByID(ctx context.Context, id string) (*model.Entry, error)
	FindYouTubeEntry(ctx context.Context, videoID, sourceLang, targetLang string) (*model.Entry, error)
	FindUntranslatedYouTubeEntry(ctx context.Context, videoID, sourceLang string) (*model.Entry, error)
	UpdateTranslation(ctx context.Context, id, translated, targetLang, provider string) (*model.Entry, error)
	List(ctx context.Context, filter EntryListFilter) ([]model.Entry, error)
	All(ctx context.Context) ([]model.Entry, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	Clear(ctx context.Context) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
	ReplaceAll(ctx context.Context, entries []model.Entry) error
}

// entryRepository keeps the whole history in one JSON array. Every call
// loads the file, works in memory and rewrites it. The mutex makes single
// calls atomic within this process; a find followed by an update is not.
type entryRepository struct {
	path string
	mu   sync.Mutex
}

func NewEntryRepository(path string) (EntryRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return &entryRepository{path: path}, nil
}

func (r *entryRepository) InsertAtFront(ctx context.Context, entry model.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.load()
	entries = append([]model.Entry{entry}, entries...)
	return r.save(entries)
}

func (r *entryRepository) GetByID(ctx context.Context, id string) (*model.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.load() {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, nil
}

// FindYouTubeEntry returns the first transcript entry for the video and
// source language. An empty targetLang matches any target.
func (r *entryRepository) FindYouTubeEntry(ctx context.Context, videoID, sourceLang, targetLang string) (*model.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.load() {
		if e.Type != model.EntryTypeYouTube || e.Video() != videoID || e.SourceLang != sourceLang {
			continue
		}
		if targetLang != "" && e.TargetLang != targetLang {
			continue
		}
		return &e, nil
	}
	return nil, nil
}

// FindUntranslatedYouTubeEntry returns the transcript entry for the video
// and source language that has no translation yet.
func (r *entryRepository) FindUntranslatedYouTubeEntry(ctx context.Context, videoID, sourceLang string) (*model.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.load() {
		if e.Type == model.EntryTypeYouTube && e.Video() == videoID && e.SourceLang == sourceLang && !e.IsTranslated() {
			return &e, nil
		}
	}
	return nil, nil
}

func (r *entryRepository) UpdateTranslation(ctx context.Context, id, translated, targetLang, provider string) (*model.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.load()
	for i := range entries {
		if entries[i].ID != id {
			continue
		}
		now := model.Now()
		entries[i].TranslatedText = translated
		entries[i].TargetLang = targetLang
		entries[i].Provider = provider
		entries[i].UpdatedAt = &now
		if err := r.save(entries); err != nil {
			return nil, err
		}
		updated := entries[i]
		return &updated, nil
	}
	return nil, ErrEntryNotFound
}

// List filters by language, then paginates. Order is newest first.
func (r *entryRepository) List(ctx context.Context, filter EntryListFilter) ([]model.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []model.Entry
	for _, e := range r.load() {
		if filter.SourceLang != "" && e.SourceLang != filter.SourceLang {
			continue
		}
		if filter.TargetLang != "" && e.TargetLang != filter.TargetLang {
			continue
		}
		matched = append(matched, e)
	}

	if filter.Offset >= len(matched) {
		return []model.Entry{}, nil
	}
	matched = matched[max(filter.Offset, 0):]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (r *entryRepository) All(ctx context.Context) ([]model.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(), nil
}

func (r *entryRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.load()
	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return false, nil
	}
	return true, r.save(kept)
}

func (r *entryRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save([]model.Entry{})
}

// DeleteOlderThan removes entries created before cutoff and returns how
// many were removed.
func (r *entryRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.load()
	kept := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if e.CreatedAt.Before(cutoff) {
			continue
		}
		kept = append(kept, e)
	}
	removed := len(entries) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	return removed, r.save(kept)
}

// ReplaceAll rewrites the collection, keeping the previous file as
// <path>.backup.
func (r *entryRepository) ReplaceAll(ctx context.Context, entries []model.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if data, err := os.ReadFile(r.path); err == nil {
		if err := os.WriteFile(r.path+".backup", data, 0o644); err != nil {
			return fmt.Errorf("write history backup: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read history for backup: %w", err)
	}

	if entries == nil {
		entries = []model.Entry{}
	}
	return r.save(entries)
}

// load returns the stored collection. A missing or unreadable file is an
// empty history.
func (r *entryRepository) load() []model.Entry {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("history read failed", "module", "repository", "action", "load", "resource", "history", "result", "failed", "path", r.path, "error", err)
		}
		return []model.Entry{}
	}

	var entries []model.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.Warn("history file corrupt, treating as empty", "module", "repository", "action", "load", "resource", "history", "result", "failed", "path", r.path, "error", err)
		return []model.Entry{}
	}
	if entries == nil {
		entries = []model.Entry{}
	}
	return entries
}

// save writes to a temp file in the same directory and renames it over
// the history file.
func (r *entryRepository) save(entries []model.Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".history-*.json")
	if err != nil {
		return fmt.Errorf("create history temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close history temp file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}
