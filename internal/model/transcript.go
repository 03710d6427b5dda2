package model

// TranscriptResult is what a transcript fetch returns to the caller and
// what gets snapshotted to meta.json.
type TranscriptResult struct {
	VideoID            string    `json:"video_id"`
	Title              string    `json:"title"`
	URL                string    `json:"url"`
	VideoInfo          VideoInfo `json:"video_info"`
	AvailableLanguages []string  `json:"available_languages"`
	SourceLang         string    `json:"source_lang"`
	SourceRaw          string    `json:"source_transcript_raw"`
	SourceProcessed    *string   `json:"source_transcript_processed"`
	TargetLang         *string   `json:"target_lang"`
	TargetRaw          *string   `json:"target_transcript_raw"`
	TargetProcessed    *string   `json:"target_transcript_processed"`
	Cached             bool      `json:"cached"`
	EntryID            string    `json:"entry_id"`
	TranslationError   *string   `json:"translation_error"`
	FolderPath         string    `json:"folder_path"`
}
