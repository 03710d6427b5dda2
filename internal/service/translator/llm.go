package translator

import (
	"context"
	"errors"
	"strings"
)

var errEmptyResponse = errors.New("model returned no text")

// completer sends one system+user exchange to a chat model.
type completer interface {
	Complete(ctx context.Context, systemPrompt, content string) (string, error)
}

// LLMProvider translates with a chat model.
type LLMProvider struct {
	name      string
	completer completer
}

func (p *LLMProvider) Name() string {
	return p.name
}

func (p *LLMProvider) Translate(ctx context.Context, text, source, target string) (Translation, error) {
	out, err := p.completer.Complete(ctx, TranslatePrompt(source, target), WrapInput(text))
	if err != nil {
		return Translation{}, &ProviderError{Provider: p.name, Err: err}
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return Translation{}, &ProviderError{Provider: p.name, Err: errEmptyResponse}
	}

	var detected string
	if source != AutoLanguage {
		detected = source
	}
	return Translation{Text: out, DetectedLanguage: detected}, nil
}

// Test sends a short greeting and returns the model's reply.
func (p *LLMProvider) Test(ctx context.Context) (string, error) {
	out, err := p.completer.Complete(ctx, "", "Hello world")
	if err != nil {
		return "", &ProviderError{Provider: p.name, Err: err}
	}
	return out, nil
}
