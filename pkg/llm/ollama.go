package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"
	"github.com/saint0x/repoexplain/pkg/log"
)

type ollamaProvider struct {
	host   string
	model  string
	logger *log.Logger
}

func newOllama(host, model string, logger *log.Logger) *ollamaProvider {
	return &ollamaProvider{host: host, model: model, logger: logger}
}

func (p *ollamaProvider) Name() string { return Ollama }

func (p *ollamaProvider) client() (*ollama.Client, error) {
	if p.host == "" {
		return ollama.ClientFromEnvironment()
	}
	base, err := url.Parse(p.host)
	if err != nil {
		return nil, err
	}
	return ollama.NewClient(base, http.DefaultClient), nil
}

func (p *ollamaProvider) Generate(ctx context.Context, system, user string, maxTokens int) (string, error) {
	if p.model == "" {
		return "", fmt.Errorf("%w: no model set for ollama provider", ErrNotConfigured)
	}

	client, err := p.client()
	if err != nil {
		return "", fmt.Errorf("%w: could not create ollama client: %v", ErrNotConfigured, err)
	}

	stream := false
	req := &ollama.ChatRequest{
		Model: strings.TrimPrefix(p.model, "ollama:"),
		Messages: []ollama.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: &stream,
		Options: map[string]interface{}{
			"num_predict": maxTokens,
		},
	}

	p.logger.Debug("Calling Ollama with model %s", req.Model)
	var out strings.Builder
	err = client.Chat(ctx, req, func(res ollama.ChatResponse) error {
		out.WriteString(res.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat failed: %w", err)
	}
	return out.String(), nil
}
