package llm

import (
	"context"
	"fmt"

	"github.com/saint0x/repoexplain/pkg/log"
	"github.com/saint0x/repoexplain/pkg/openai"
)

type openAIProvider struct {
	apiKey string
	model  string
	client *openai.Client
	logger *log.Logger
}

func newOpenAI(apiKey, baseURL, model string, logger *log.Logger) *openAIProvider {
	return &openAIProvider{
		apiKey: apiKey,
		model:  model,
		client: openai.NewClientWithBaseURL(apiKey, baseURL),
		logger: logger,
	}
}

func (p *openAIProvider) Name() string { return OpenAI }

func (p *openAIProvider) Generate(ctx context.Context, system, user string, maxTokens int) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("%w: OPENAI_API_KEY is not set but openai provider is selected", ErrNotConfigured)
	}

	p.logger.Debug("Calling OpenAI API with model %s", p.model)
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from AI")
	}
	return resp.Choices[0].Message.Content, nil
}
