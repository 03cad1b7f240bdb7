package llm

import (
	"context"
	"fmt"

	"github.com/saint0x/repoexplain/pkg/log"
	"google.golang.org/genai"
)

type geminiProvider struct {
	apiKey string
	model  string
	logger *log.Logger
}

func newGemini(apiKey, model string, logger *log.Logger) *geminiProvider {
	return &geminiProvider{apiKey: apiKey, model: model, logger: logger}
}

func (p *geminiProvider) Name() string { return Gemini }

func (p *geminiProvider) Generate(ctx context.Context, system, user string, maxTokens int) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("%w: GEMINI_API_KEY is not set but gemini provider is selected", ErrNotConfigured)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("could not create gemini client: %w", err)
	}

	p.logger.Debug("Calling Gemini API with model %s", p.model)
	resp, err := client.Models.GenerateContent(ctx, p.model, genai.Text(user), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		MaxOutputTokens:   int32(maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	return resp.Text(), nil
}
