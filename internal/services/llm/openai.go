package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

const defaultOpenAIModel = "gpt-4o-mini"

type OpenAIGenerator struct {
	client openai.Client
	model  string
}

// NewOpenAIGenerator builds a chat-completions adapter. baseURL is optional and
// allows OpenAI-compatible gateways.
func NewOpenAIGenerator(apiKey, model, baseURL string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrNoAPIKey)
	}
	if model == "" {
		model = defaultOpenAIModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(60 * time.Second),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIGenerator{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (g *OpenAIGenerator) Name() string { return "openai" }

func (g *OpenAIGenerator) Generate(ctx context.Context, req GenerateRequest) (GeneratedText, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.User))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(g.model),
		Messages: messages,
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return GeneratedText{}, &StatusError{Provider: g.Name(), StatusCode: apiErr.StatusCode, Err: err}
		}
		return GeneratedText{}, fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return GeneratedText{}, fmt.Errorf("openai: %w", ErrEmptyResponse)
	}

	return GeneratedText{
		Text:     resp.Choices[0].Message.Content,
		Provider: g.Name(),
		Model:    g.model,
	}, nil
}
