package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicMaxTokens = 1024

type AnthropicGenerator struct {
	client anthropic.Client
	model  string
}

func NewAnthropicGenerator(apiKey, model string) (*AnthropicGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic: %w", ErrNoAPIKey)
	}
	if model == "" {
		model = string(anthropic.ModelClaudeHaiku4_5)
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(60*time.Second),
	)
	return &AnthropicGenerator{client: client, model: model}, nil
}

func (g *AnthropicGenerator) Name() string { return "anthropic" }

func (g *AnthropicGenerator) Generate(ctx context.Context, req GenerateRequest) (GeneratedText, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return GeneratedText{}, &StatusError{Provider: g.Name(), StatusCode: apiErr.StatusCode, Err: err}
		}
		return GeneratedText{}, fmt.Errorf("anthropic API error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return GeneratedText{}, fmt.Errorf("anthropic: %w", ErrEmptyResponse)
	}

	return GeneratedText{
		Text:     sb.String(),
		Provider: g.Name(),
		Model:    g.model,
	}, nil
}
