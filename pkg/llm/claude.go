package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/saint0x/repoexplain/pkg/log"
)

type claudeProvider struct {
	apiKey string
	model  string
	client anthropic.Client
	logger *log.Logger
}

func newClaude(apiKey, model string, logger *log.Logger) *claudeProvider {
	return &claudeProvider{
		apiKey: apiKey,
		model:  model,
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		logger: logger,
	}
}

func (p *claudeProvider) Name() string { return Claude }

func (p *claudeProvider) Generate(ctx context.Context, system, user string, maxTokens int) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("%w: ANTHROPIC_API_KEY is not set but claude provider is selected", ErrNotConfigured)
	}

	p.logger.Debug("Calling Anthropic API with model %s", p.model)
	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(maxTokens),
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	var out strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	return out.String(), nil
}
