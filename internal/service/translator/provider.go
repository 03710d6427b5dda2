// Package translator turns text into translated text through pluggable
// backends, splitting long inputs into paragraph-aligned chunks.
package translator

import (
	"context"
	"errors"
	"fmt"
)

// Provider names accepted in translate requests.
const (
	ProviderLibreTranslate = "libretranslate"
	ProviderOpenAI         = "openai"
	ProviderAnthropic      = "anthropic"
	ProviderCompatible     = "compatible"
)

// AutoLanguage asks the backend to detect the source language.
const AutoLanguage = "auto"

var (
	ErrUnsupportedProvider = errors.New("unsupported translation provider")
	ErrMissingAPIKey       = errors.New("API key is required")
	ErrMissingBaseURL      = errors.New("base URL is required for compatible provider")
	ErrMissingModel        = errors.New("model is required")
)

// Translation is the result of one translate call.
type Translation struct {
	Text string
	// DetectedLanguage is empty when the backend did not report one.
	DetectedLanguage string
}

// Provider is a translation backend.
type Provider interface {
	Name() string
	Translate(ctx context.Context, text, source, target string) (Translation, error)
}

// ProviderError is a failed call to a translation backend. Status is the
// upstream HTTP status, or 0 when no response was received.
type ProviderError struct {
	Provider string
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error: status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsLLMProvider reports whether name is one of the chat-model backends.
func IsLLMProvider(name string) bool {
	switch name {
	case ProviderOpenAI, ProviderAnthropic, ProviderCompatible:
		return true
	}
	return false
}

// LLMConfig configures a chat-model backend.
type LLMConfig struct {
	Provider string // openai, anthropic, compatible
	APIKey   string
	BaseURL  string // optional for openai and anthropic, required for compatible
	Model    string
}

// NewLLMProvider creates a chat-model translation backend from cfg.
func NewLLMProvider(cfg LLMConfig) (*LLMProvider, error) {
	if !IsLLMProvider(cfg.Provider) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Provider)
	}
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		return nil, ErrMissingModel
	}

	var c completer
	switch cfg.Provider {
	case ProviderOpenAI:
		c = newOpenAICompleter(cfg.APIKey, cfg.BaseURL, cfg.Model, false)
	case ProviderCompatible:
		if cfg.BaseURL == "" {
			return nil, ErrMissingBaseURL
		}
		c = newOpenAICompleter(cfg.APIKey, cfg.BaseURL, cfg.Model, true)
	case ProviderAnthropic:
		c = newAnthropicCompleter(cfg.APIKey, cfg.BaseURL, cfg.Model)
	}
	return &LLMProvider{name: cfg.Provider, completer: c}, nil
}
