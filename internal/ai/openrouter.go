package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// Generation parameters match what worked well against Gemini via OpenRouter:
// low temperature keeps the JSON structure stable, and the schema fits in well
// under 650 tokens.
const (
	openRouterTemperature = 0.25
	openRouterMaxTokens   = 650
)

// OpenRouterProvider implements Provider against OpenRouter's
// OpenAI-compatible chat-completions endpoint.
type OpenRouterProvider struct {
	client openai.Client
	model  string
}

// NewOpenRouterProvider initializes a client for OpenRouter.
// apiKey should be provided from environment variables.
func NewOpenRouterProvider(apiKey, model string) (*OpenRouterProvider, error) {
	if apiKey == "" {
		return nil, errors.New("openrouter: missing API key")
	}
	if model == "" {
		return nil, errors.New("openrouter: missing model name")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(openRouterBaseURL),
	)

	return &OpenRouterProvider{client: client, model: model}, nil
}

func (p *OpenRouterProvider) Name() string { return "openrouter" }

// Generate sends the prompt and returns the raw completion text.
func (p *OpenRouterProvider) Generate(ctx context.Context, prompt string) (string, error) {
	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(openRouterTemperature),
		MaxTokens:   openai.Int(openRouterMaxTokens),
	})
	if err != nil {
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			return "", classifyStatus(apierr.StatusCode)
		}
		return "", classifyTransport(err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices in completion", ErrUnavailable)
	}
	return completion.Choices[0].Message.Content, nil
}
