package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"

	"ytt/backend/internal/logger"
	"ytt/backend/internal/repository"
	"ytt/backend/internal/service/translator"
)

// AppSettings are the user-facing application preferences.
type AppSettings struct {
	DefaultTargetLanguage string  `json:"default_target_language"`
	AutoTranslate         bool    `json:"auto_translate"`
	LibreTranslateURL     string  `json:"libretranslate_url"`
	DefaultViewMode       string  `json:"default_view_mode"`
	FontSize              string  `json:"font_size"`
	Theme                 string  `json:"theme"`
	HighlightColor        string  `json:"highlight_color"`
	AutoParagraphMobile   bool    `json:"auto_paragraph_mobile"`
	AutoScrollSpeed       float64 `json:"auto_scroll_speed"`
	HighlightActive       bool    `json:"highlight_active"`
	DefaultPlaybackSpeed  float64 `json:"default_playback_speed"`
	HistoryRetentionDays  *int    `json:"history_retention_days"`
	APITimeout            int     `json:"api_timeout"`
	CacheDurationMinutes  int     `json:"cache_duration_minutes"`
	DebugMode             bool    `json:"debug_mode"`
}

// DefaultAppSettings returns the settings used before anything is saved.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		DefaultTargetLanguage: "en",
		AutoTranslate:         true,
		LibreTranslateURL:     "http://libretranslate:5000",
		DefaultViewMode:       "side-by-side",
		FontSize:              "medium",
		Theme:                 "white",
		HighlightColor:        "#0f62fe",
		AutoParagraphMobile:   true,
		AutoScrollSpeed:       1.0,
		HighlightActive:       true,
		DefaultPlaybackSpeed:  1.0,
		APITimeout:            30,
		CacheDurationMinutes:  60,
	}
}

func (a AppSettings) validate() error {
	switch a.DefaultViewMode {
	case "side-by-side", "paragraph":
	default:
		return fmt.Errorf("%w: default_view_mode %q", ErrInvalid, a.DefaultViewMode)
	}
	switch a.FontSize {
	case "small", "medium", "large":
	default:
		return fmt.Errorf("%w: font_size %q", ErrInvalid, a.FontSize)
	}
	switch a.Theme {
	case "white", "g10", "g80", "g90", "g100":
	default:
		return fmt.Errorf("%w: theme %q", ErrInvalid, a.Theme)
	}
	if a.AutoScrollSpeed < 0.5 || a.AutoScrollSpeed > 3.0 {
		return fmt.Errorf("%w: auto_scroll_speed must be between 0.5 and 3.0", ErrInvalid)
	}
	if a.DefaultPlaybackSpeed < 0.25 || a.DefaultPlaybackSpeed > 2.0 {
		return fmt.Errorf("%w: default_playback_speed must be between 0.25 and 2.0", ErrInvalid)
	}
	if a.APITimeout < 10 || a.APITimeout > 120 {
		return fmt.Errorf("%w: api_timeout must be between 10 and 120", ErrInvalid)
	}
	if a.CacheDurationMinutes < 0 {
		return fmt.Errorf("%w: cache_duration_minutes must not be negative", ErrInvalid)
	}
	if a.HistoryRetentionDays != nil && *a.HistoryRetentionDays < 1 {
		return fmt.Errorf("%w: history_retention_days must be at least 1", ErrInvalid)
	}
	return nil
}

// AISettings configures the chat-model translation backend.
type AISettings struct {
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey"`
	BaseURL  string `json:"baseUrl"`
	Model    string `json:"model"`
}

type NetworkSettings struct {
	ProxyURL string `json:"proxyUrl"`
}

// Setting keys
const (
	keyAppSettings = "app.settings"
	keyAIProvider  = "ai.provider"
	keyAIAPIKey    = "ai.api_key"
	keyAIBaseURL   = "ai.base_url"
	keyAIModel     = "ai.model"
	keyProxyURL    = "network.proxy_url"
)

type SettingsService interface {
	GetAppSettings(ctx context.Context) (AppSettings, error)
	// UpdateAppSettings applies a partial JSON document over the current
	// settings. Fields absent from patch keep their value.
	UpdateAppSettings(ctx context.Context, patch []byte) (AppSettings, error)
	ResetAppSettings(ctx context.Context) (AppSettings, error)
	// ImportAppSettings replaces the settings; absent fields take defaults.
	ImportAppSettings(ctx context.Context, data []byte) (AppSettings, error)
	// ImportLegacyFile loads a settings.json written by older releases when
	// nothing is stored yet. Reports whether it imported.
	ImportLegacyFile(ctx context.Context, path string) (bool, error)

	// GetAISettings returns the AI configuration with the API key masked.
	GetAISettings(ctx context.Context) (*AISettings, error)
	// SetAISettings keeps the stored key when APIKey is empty or masked.
	SetAISettings(ctx context.Context, settings *AISettings) error
	TestAI(ctx context.Context, settings *AISettings) (string, error)
	// LLMConfig returns the stored configuration for provider.
	LLMConfig(ctx context.Context, provider string) (translator.LLMConfig, error)

	GetNetworkSettings(ctx context.Context) (*NetworkSettings, error)
	SetNetworkSettings(ctx context.Context, settings *NetworkSettings) error
	GetProxyURL(ctx context.Context) string
}

type settingsService struct {
	repo repository.SettingsRepository
}

func NewSettingsService(repo repository.SettingsRepository) SettingsService {
	return &settingsService{repo: repo}
}

func (s *settingsService) GetAppSettings(ctx context.Context) (AppSettings, error) {
	settings := DefaultAppSettings()
	raw, err := s.getString(ctx, keyAppSettings)
	if err != nil {
		return settings, err
	}
	if raw == "" {
		return settings, nil
	}
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		logger.Warn("stored settings unreadable, using defaults", "module", "service", "action", "load", "resource", "settings", "result", "failed", "error", err)
		return DefaultAppSettings(), nil
	}
	return settings, nil
}

func (s *settingsService) UpdateAppSettings(ctx context.Context, patch []byte) (AppSettings, error) {
	settings, err := s.GetAppSettings(ctx)
	if err != nil {
		return settings, err
	}
	if err := json.Unmarshal(patch, &settings); err != nil {
		return settings, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return s.saveAppSettings(ctx, settings)
}

func (s *settingsService) ResetAppSettings(ctx context.Context) (AppSettings, error) {
	return s.saveAppSettings(ctx, DefaultAppSettings())
}

func (s *settingsService) ImportAppSettings(ctx context.Context, data []byte) (AppSettings, error) {
	settings := DefaultAppSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("%w: invalid settings data: %v", ErrInvalid, err)
	}
	return s.saveAppSettings(ctx, settings)
}

func (s *settingsService) ImportLegacyFile(ctx context.Context, path string) (bool, error) {
	existing, err := s.repo.Get(ctx, keyAppSettings)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read legacy settings: %w", err)
	}
	if _, err := s.ImportAppSettings(ctx, data); err != nil {
		logger.Warn("legacy settings rejected", "module", "service", "action", "import", "resource", "settings", "result", "failed", "path", path, "error", err)
		return false, nil
	}
	logger.Info("legacy settings imported", "module", "service", "action", "import", "resource", "settings", "result", "ok", "path", path)
	return true, nil
}

func (s *settingsService) saveAppSettings(ctx context.Context, settings AppSettings) (AppSettings, error) {
	if err := settings.validate(); err != nil {
		return settings, err
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return settings, fmt.Errorf("encode settings: %w", err)
	}
	if err := s.repo.Set(ctx, keyAppSettings, string(data)); err != nil {
		return settings, fmt.Errorf("save settings: %w", err)
	}
	return settings, nil
}

func (s *settingsService) GetAISettings(ctx context.Context) (*AISettings, error) {
	settings := &AISettings{Provider: translator.ProviderOpenAI}

	if val, err := s.getString(ctx, keyAIProvider); err == nil && val != "" {
		settings.Provider = val
	}
	if val, err := s.getString(ctx, keyAIAPIKey); err == nil && val != "" {
		settings.APIKey = maskAPIKey(val)
	}
	if val, err := s.getString(ctx, keyAIBaseURL); err == nil {
		settings.BaseURL = val
	}
	if val, err := s.getString(ctx, keyAIModel); err == nil {
		settings.Model = val
	}
	return settings, nil
}

func (s *settingsService) SetAISettings(ctx context.Context, settings *AISettings) error {
	if settings.Provider != "" {
		if !translator.IsLLMProvider(settings.Provider) {
			return fmt.Errorf("%w: %q", translator.ErrUnsupportedProvider, settings.Provider)
		}
		if err := s.repo.Set(ctx, keyAIProvider, settings.Provider); err != nil {
			return fmt.Errorf("set provider: %w", err)
		}
	}
	if err := s.setAPIKey(ctx, keyAIAPIKey, settings.APIKey); err != nil {
		return fmt.Errorf("set api key: %w", err)
	}
	if err := s.setOrDelete(ctx, keyAIBaseURL, settings.BaseURL); err != nil {
		return fmt.Errorf("set base url: %w", err)
	}
	if err := s.setOrDelete(ctx, keyAIModel, settings.Model); err != nil {
		return fmt.Errorf("set model: %w", err)
	}
	return nil
}

func (s *settingsService) TestAI(ctx context.Context, settings *AISettings) (string, error) {
	apiKey := settings.APIKey
	if apiKey == "" || isMaskedKey(apiKey) {
		storedKey, err := s.getString(ctx, keyAIAPIKey)
		if err != nil {
			return "", fmt.Errorf("get stored api key: %w", err)
		}
		apiKey = storedKey
	}

	p, err := translator.NewLLMProvider(translator.LLMConfig{
		Provider: settings.Provider,
		APIKey:   apiKey,
		BaseURL:  settings.BaseURL,
		Model:    settings.Model,
	})
	if err != nil {
		return "", err
	}
	return p.Test(ctx)
}

func (s *settingsService) LLMConfig(ctx context.Context, provider string) (translator.LLMConfig, error) {
	settings, err := s.repo.GetByPrefix(ctx, "ai.")
	if err != nil {
		return translator.LLMConfig{}, fmt.Errorf("load ai settings: %w", err)
	}
	values := make(map[string]string, len(settings))
	for _, st := range settings {
		values[st.Key] = st.Value
	}

	configured := values[keyAIProvider]
	if configured == "" {
		configured = translator.ProviderOpenAI
	}
	if provider != configured {
		return translator.LLMConfig{}, fmt.Errorf("%w: provider %q is not configured", translator.ErrMissingAPIKey, provider)
	}
	return translator.LLMConfig{
		Provider: provider,
		APIKey:   values[keyAIAPIKey],
		BaseURL:  values[keyAIBaseURL],
		Model:    values[keyAIModel],
	}, nil
}

func (s *settingsService) GetNetworkSettings(ctx context.Context) (*NetworkSettings, error) {
	proxyURL, err := s.getString(ctx, keyProxyURL)
	if err != nil {
		return nil, err
	}
	return &NetworkSettings{ProxyURL: proxyURL}, nil
}

func (s *settingsService) SetNetworkSettings(ctx context.Context, settings *NetworkSettings) error {
	if settings.ProxyURL != "" {
		parsed, err := url.Parse(settings.ProxyURL)
		if err != nil || parsed.Host == "" {
			return fmt.Errorf("%w: proxy url", ErrInvalid)
		}
		switch parsed.Scheme {
		case "http", "https", "socks5", "socks5h":
		default:
			return fmt.Errorf("%w: proxy scheme %q", ErrInvalid, parsed.Scheme)
		}
	}
	return s.setOrDelete(ctx, keyProxyURL, settings.ProxyURL)
}

// GetProxyURL returns "" when no proxy is configured or it cannot be read.
func (s *settingsService) GetProxyURL(ctx context.Context) string {
	val, err := s.getString(ctx, keyProxyURL)
	if err != nil {
		return ""
	}
	return val
}

// maskAPIKey keeps a short prefix such as "sk-" and the last three characters.
func maskAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 8 {
		return "***"
	}
	prefixEnd := 0
	for i, c := range apiKey {
		if c == '-' {
			prefixEnd = i + 1
			break
		}
		if i >= 4 {
			break
		}
	}
	return apiKey[:prefixEnd] + "***" + apiKey[len(apiKey)-3:]
}

func isMaskedKey(key string) bool {
	if len(key) == 0 || len(key) >= 20 {
		return false
	}
	for i := 0; i <= len(key)-3; i++ {
		if key[i:i+3] == "***" {
			return true
		}
	}
	return false
}

func (s *settingsService) getString(ctx context.Context, key string) (string, error) {
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if setting == nil {
		return "", nil
	}
	return setting.Value, nil
}

// setAPIKey keeps the existing key when value is empty or masked.
// setOrDelete removes key when value is empty.
func (s *settingsService) setOrDelete(ctx context.Context, key, value string) error {
	if value == "" {
		return s.repo.Delete(ctx, key)
	}
	return s.repo.Set(ctx, key, value)
}

func (s *settingsService) setAPIKey(ctx context.Context, key, value string) error {
	if value == "" || isMaskedKey(value) {
		return nil
	}
	return s.repo.Set(ctx, key, value)
}
