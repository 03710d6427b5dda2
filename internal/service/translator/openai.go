package translator

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openAICompleter talks to OpenAI or an OpenAI-compatible API such as
// OpenRouter or Ollama.
type openAICompleter struct {
	client     openai.Client
	model      string
	compatible bool
}

func newOpenAICompleter(apiKey, baseURL, model string, compatible bool) *openAICompleter {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &openAICompleter{
		client:     openai.NewClient(opts...),
		model:      model,
		compatible: compatible,
	}
}

func (c *openAICompleter) Complete(ctx context.Context, systemPrompt, content string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(content))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	}

	var opts []option.RequestOption
	if c.compatible {
		// Some routers enable reasoning by default; translation does not need it.
		opts = append(opts, option.WithJSONSet("reasoning", map[string]interface{}{
			"enabled": false,
		}))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params, opts...)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
