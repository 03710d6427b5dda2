package model

import (
	"encoding/json"
	"strings"
)

// EntryType discriminates the Entry variants.
type EntryType string

const (
	EntryTypeText    EntryType = "text"
	EntryTypeFile    EntryType = "file"
	EntryTypeYouTube EntryType = "youtube"
)

// Entry is one persisted translation record. Variant fields are carried by
// the embedded FileSource or VideoSource, which are only set for their type.
type Entry struct {
	ID             string     `json:"id"`
	Type           EntryType  `json:"type"`
	Title          string     `json:"title"`
	OriginalText   string     `json:"original_text"`
	TranslatedText string     `json:"translated_text"`
	SourceLang     string     `json:"source_lang"`
	TargetLang     string     `json:"target_lang"`
	Provider       string     `json:"provider,omitempty"`
	CreatedAt      Time       `json:"created_at"`
	UpdatedAt      *Time      `json:"updated_at,omitempty"`

	*FileSource
	*VideoSource
}

// UnmarshalJSON drops variant payloads that do not belong to the entry's
// type. Older history files write null video and file fields on every record.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Entry(p)
	if e.Type != EntryTypeFile {
		e.FileSource = nil
	}
	if e.Type != EntryTypeYouTube {
		e.VideoSource = nil
	}
	return nil
}

// FileSource describes the uploaded document a file entry came from.
type FileSource struct {
	FileName   string `json:"file_name"`
	FileType   string `json:"file_type,omitempty"`
	StoredName string `json:"stored_name,omitempty"`
}

// VideoSource describes the YouTube video a transcript entry came from.
type VideoSource struct {
	VideoID            string    `json:"video_id"`
	YouTubeURL         string    `json:"youtube_url"`
	AvailableLanguages []string  `json:"available_languages"`
	VideoInfo          VideoInfo `json:"video_info"`
}

// VideoInfo is the metadata snapshot reported by yt-dlp.
type VideoInfo struct {
	Title       string  `json:"title,omitempty"`
	Duration    float64 `json:"duration,omitempty"`
	Uploader    string  `json:"uploader,omitempty"`
	UploadDate  string  `json:"upload_date,omitempty"`
	Description string  `json:"description,omitempty"`
}

// IsTranslated reports whether the entry carries a non-blank translation.
func (e Entry) IsTranslated() bool {
	return strings.TrimSpace(e.TranslatedText) != ""
}

// IsYouTube reports whether e is a transcript entry with video metadata.
func (e Entry) IsYouTube() bool {
	return e.Type == EntryTypeYouTube && e.VideoSource != nil
}

// Video returns the video id, or "" for non-transcript entries.
func (e Entry) Video() string {
	if e.VideoSource == nil {
		return ""
	}
	return e.VideoSource.VideoID
}

const maxTitleLength = 50

// GenerateTitle derives a title from content: the first sentence when it
// is short enough, else the first 50 characters followed by "...".
func GenerateTitle(text string) string {
	if text == "" {
		return "Untitled"
	}

	firstSentence := strings.TrimSpace(strings.SplitN(text, ".", 2)[0])
	if len([]rune(firstSentence)) <= maxTitleLength {
		return firstSentence
	}

	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maxTitleLength])) + "..."
}
