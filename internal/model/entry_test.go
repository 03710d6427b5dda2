package model_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ytt/backend/internal/model"
)

func TestGenerateTitle(t *testing.T) {
	require.Equal(t, "Untitled", model.GenerateTitle(""))
	require.Equal(t, "Bonjour le monde", model.GenerateTitle("Bonjour le monde. Comment ça va?"))

	long := strings.Repeat("word ", 20)
	title := model.GenerateTitle(long)
	require.True(t, strings.HasSuffix(title, "..."))
	require.LessOrEqual(t, len([]rune(title)), 53)
}

func TestEntry_VariantFieldsFlattenInJSON(t *testing.T) {
	e := model.Entry{
		ID:           "id-1",
		Type:         model.EntryTypeYouTube,
		OriginalText: "hello",
		SourceLang:   "en",
		CreatedAt:    model.NewTime(time.Date(2024, 1, 27, 10, 0, 0, 0, time.UTC)),
		VideoSource: &model.VideoSource{
			VideoID:    "abc123XYZ89",
			YouTubeURL: "https://youtu.be/abc123XYZ89",
		},
	}

	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(raw, &flat))
	require.Equal(t, "abc123XYZ89", flat["video_id"])
	require.NotContains(t, flat, "file_name")
	require.NotContains(t, flat, "updated_at")

	var back model.Entry
	require.NoError(t, json.Unmarshal(raw, &back))
	require.True(t, back.IsYouTube())
	require.Nil(t, back.FileSource)
	require.Equal(t, "abc123XYZ89", back.Video())
}

func TestEntry_DecodesLegacyRecord(t *testing.T) {
	raw := `{"id":"x","type":"text","title":"t","original_text":"a","translated_text":"b",
		"source_lang":"fr","target_lang":"en","provider":"libretranslate",
		"created_at":"2024-01-27T10:00:00.000001","updated_at":null,
		"video_id":null,"youtube_url":null,"file_name":null}`

	var e model.Entry
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	require.Equal(t, model.EntryTypeText, e.Type)
	require.False(t, e.CreatedAt.IsZero())
	require.Nil(t, e.UpdatedAt)
	require.Nil(t, e.VideoSource)
	require.Nil(t, e.FileSource)

	out, err := json.Marshal(e)
	require.NoError(t, err)
	var flat map[string]any
	require.NoError(t, json.Unmarshal(out, &flat))
	for _, key := range []string{"video_id", "youtube_url", "available_languages", "video_info", "file_name"} {
		require.NotContains(t, flat, key)
	}
}

func TestEntry_DecodesLegacyFileRecord(t *testing.T) {
	raw := `{"id":"f","type":"file","original_text":"a","translated_text":"b",
		"source_lang":"de","target_lang":"en","created_at":"2024-01-27T10:00:00",
		"file_name":"notes.txt","video_id":null,"youtube_url":null}`

	var e model.Entry
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	require.NotNil(t, e.FileSource)
	require.Equal(t, "notes.txt", e.FileName)
	require.Nil(t, e.VideoSource)
}

func TestEntry_IsTranslated_TreatsWhitespaceAsEmpty(t *testing.T) {
	require.False(t, model.Entry{TranslatedText: "  \n"}.IsTranslated())
	require.True(t, model.Entry{TranslatedText: "Hello"}.IsTranslated())
}
