package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"ytt/backend/internal/db"
	"ytt/backend/internal/model"
)

// NewTestDB opens a migrated SQLite database in a temp dir.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// TextEntry builds a translated text entry.
func TextEntry(original, translated, source, target string) model.Entry {
	return model.Entry{
		ID:             uuid.NewString(),
		Type:           model.EntryTypeText,
		Title:          model.GenerateTitle(original),
		OriginalText:   original,
		TranslatedText: translated,
		SourceLang:     source,
		TargetLang:     target,
		Provider:       "libretranslate",
		CreatedAt:      model.Now(),
	}
}

// VideoEntry builds a transcript entry. translated and target may be empty.
func VideoEntry(videoID, original, source, translated, target string) model.Entry {
	e := model.Entry{
		ID:             uuid.NewString(),
		Type:           model.EntryTypeYouTube,
		Title:          "Video " + videoID,
		OriginalText:   original,
		TranslatedText: translated,
		SourceLang:     source,
		TargetLang:     target,
		CreatedAt:      model.Now(),
		VideoSource: &model.VideoSource{
			VideoID:            videoID,
			YouTubeURL:         "https://www.youtube.com/watch?v=" + videoID,
			AvailableLanguages: []string{source},
		},
	}
	if translated != "" {
		e.Provider = "libretranslate"
	}
	return e
}

// Aged returns e with CreatedAt moved into the past.
func Aged(e model.Entry, age time.Duration) model.Entry {
	e.CreatedAt = model.NewTime(time.Now().Add(-age))
	return e
}
