package translator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	system, content string
	reply           string
	err             error
}

func (s *stubCompleter) Complete(_ context.Context, systemPrompt, content string) (string, error) {
	s.system, s.content = systemPrompt, content
	return s.reply, s.err
}

func TestLLMProvider_Translate(t *testing.T) {
	stub := &stubCompleter{reply: "  Hallo Welt\n"}
	p := &LLMProvider{name: ProviderOpenAI, completer: stub}

	res, err := p.Translate(context.Background(), "Hello world", "en", "de")
	require.NoError(t, err)
	require.Equal(t, "Hallo Welt", res.Text)
	require.Equal(t, "en", res.DetectedLanguage)
	require.Contains(t, stub.system, "<target_language>de</target_language>")
	require.Contains(t, stub.system, "<source_language>en</source_language>")
	require.Equal(t, "<input>\nHello world\n</input>", stub.content)
}

func TestLLMProvider_TranslateAutoSource(t *testing.T) {
	stub := &stubCompleter{reply: "x"}
	p := &LLMProvider{name: ProviderAnthropic, completer: stub}

	res, err := p.Translate(context.Background(), "y", AutoLanguage, "fr")
	require.NoError(t, err)
	require.Empty(t, res.DetectedLanguage)
	require.NotContains(t, stub.system, "<source_language>")
}

func TestLLMProvider_WrapsErrors(t *testing.T) {
	p := &LLMProvider{name: ProviderCompatible, completer: &stubCompleter{err: errors.New("boom")}}

	_, err := p.Translate(context.Background(), "y", "en", "fr")
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, ProviderCompatible, perr.Provider)
	require.Zero(t, perr.Status)
}

func TestLLMProvider_EmptyReplyIsProviderError(t *testing.T) {
	p := &LLMProvider{name: ProviderOpenAI, completer: &stubCompleter{reply: " \n"}}

	_, err := p.Translate(context.Background(), "Hello", "en", "de")
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	require.ErrorIs(t, err, errEmptyResponse)
}

func TestOpenAICompleter_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":0,"model":"m","choices":[]}`))
	}))
	defer srv.Close()

	c := newOpenAICompleter("k", srv.URL, "m", false)
	_, err := c.Complete(context.Background(), "system", "Hello")
	require.ErrorIs(t, err, errEmptyResponse)
}

func TestNewLLMProvider_Validation(t *testing.T) {
	_, err := NewLLMProvider(LLMConfig{Provider: "deepl", APIKey: "k", Model: "m"})
	require.ErrorIs(t, err, ErrUnsupportedProvider)

	_, err = NewLLMProvider(LLMConfig{Provider: ProviderOpenAI, Model: "m"})
	require.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewLLMProvider(LLMConfig{Provider: ProviderOpenAI, APIKey: "k"})
	require.ErrorIs(t, err, ErrMissingModel)

	_, err = NewLLMProvider(LLMConfig{Provider: ProviderCompatible, APIKey: "k", Model: "m"})
	require.ErrorIs(t, err, ErrMissingBaseURL)

	p, err := NewLLMProvider(LLMConfig{Provider: ProviderAnthropic, APIKey: "k", Model: "claude"})
	require.NoError(t, err)
	require.Equal(t, ProviderAnthropic, p.Name())
}
