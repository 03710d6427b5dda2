package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ytt/backend/internal/config"
	"ytt/backend/internal/logger"
	"ytt/backend/internal/network"
)

const (
	translateTimeout = 30 * time.Second
	metaTimeout      = 10 * time.Second

	// detectMaxRunes caps how much text is sent for language detection.
	detectMaxRunes = 1000
)

// Detection is one candidate language reported by /detect.
type Detection struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

// Language is one entry of /languages.
type Language struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	Targets []string `json:"targets,omitempty"`
}

// LibreTranslate is a client for a LibreTranslate server.
type LibreTranslate struct {
	baseURL string
	apiKey  string
	clients *network.ClientFactory
}

func NewLibreTranslate(baseURL, apiKey string, clients *network.ClientFactory) *LibreTranslate {
	return &LibreTranslate{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		clients: clients,
	}
}

func (c *LibreTranslate) Name() string {
	return ProviderLibreTranslate
}

// URL returns the server base URL.
func (c *LibreTranslate) URL() string {
	return c.baseURL
}

type libreTranslateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreTranslateResponse struct {
	TranslatedText   string     `json:"translatedText"`
	DetectedLanguage *Detection `json:"detectedLanguage,omitempty"`
}

func (c *LibreTranslate) Translate(ctx context.Context, text, source, target string) (Translation, error) {
	payload := libreTranslateRequest{
		Q:      text,
		Source: source,
		Target: target,
		Format: "text",
		APIKey: c.apiKey,
	}

	var resp libreTranslateResponse
	if err := c.do(ctx, http.MethodPost, "/translate", payload, translateTimeout, &resp); err != nil {
		logger.Error("libretranslate translate failed", "module", "translator", "action", "translate", "resource", "libretranslate", "result", "failed", "source", source, "target", target, "error", err)
		return Translation{}, err
	}
	logger.Debug("libretranslate translate", "module", "translator", "action", "translate", "resource", "libretranslate", "result", "ok", "source", source, "target", target, "chars", len(text))

	out := Translation{Text: resp.TranslatedText}
	if resp.DetectedLanguage != nil {
		out.DetectedLanguage = resp.DetectedLanguage.Language
	}
	return out, nil
}

// Detect returns candidate languages for text, most likely first.
func (c *LibreTranslate) Detect(ctx context.Context, text string) ([]Detection, error) {
	if runes := []rune(text); len(runes) > detectMaxRunes {
		text = string(runes[:detectMaxRunes])
	}
	payload := struct {
		Q      string `json:"q"`
		APIKey string `json:"api_key,omitempty"`
	}{Q: text, APIKey: c.apiKey}

	var resp []Detection
	if err := c.do(ctx, http.MethodPost, "/detect", payload, metaTimeout, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Languages returns the languages the server supports.
func (c *LibreTranslate) Languages(ctx context.Context) ([]Language, error) {
	var resp []Language
	if err := c.do(ctx, http.MethodGet, "/languages", nil, metaTimeout, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *LibreTranslate) do(ctx context.Context, method, path string, payload any, timeout time.Duration, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &ProviderError{Provider: ProviderLibreTranslate, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", config.UserAgent)

	resp, err := c.clients.NewHTTPClient(ctx, timeout).Do(req)
	if err != nil {
		return &ProviderError{Provider: ProviderLibreTranslate, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &ProviderError{
			Provider: ProviderLibreTranslate,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("%s %s: %s", method, path, strings.TrimSpace(string(msg))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ProviderError{Provider: ProviderLibreTranslate, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
