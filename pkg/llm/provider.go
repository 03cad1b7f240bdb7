// Package llm hides the text generation vendors behind one interface.
package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/saint0x/repoexplain/pkg/config"
	"github.com/saint0x/repoexplain/pkg/log"
)

// ErrNotConfigured is returned by Generate when the selected backend has no
// credentials or endpoint.
var ErrNotConfigured = errors.New("provider not configured")

// Provider generates assistant text for one system+user turn.
type Provider interface {
	Name() string
	Generate(ctx context.Context, system, user string, maxTokens int) (string, error)
}

const (
	Claude = "claude"
	Gemini = "gemini"
	OpenAI = "openai"
	Ollama = "ollama"

	// DefaultProvider is used when the configured name is empty or unknown.
	DefaultProvider = Claude
)

var defaultModels = map[string]string{
	Claude: "claude-haiku-4-5-20251001",
	Gemini: "gemini-2.5-flash",
	OpenAI: "gpt-4o-mini",
	Ollama: "llama3.1",
}

// New builds the configured backend. It never fails: an unrecognized
// provider name falls back to DefaultProvider with a warning, and missing
// credentials surface as ErrNotConfigured on the first Generate call.
func New(cfg config.LLM, logger *log.Logger) Provider {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		name = DefaultProvider
	}
	if _, ok := defaultModels[name]; !ok {
		logger.Warning("Unknown AI_PROVIDER %q, defaulting to %s", cfg.Provider, DefaultProvider)
		name = DefaultProvider
	}

	model := cfg.Model
	if model == "" {
		model = defaultModels[name]
	}

	var p Provider
	switch name {
	case Gemini:
		p = newGemini(cfg.GeminiKey, model, logger)
	case OpenAI:
		p = newOpenAI(cfg.OpenAIKey, cfg.OpenAIBaseURL, model, logger)
	case Ollama:
		p = newOllama(cfg.OllamaHost, model, logger)
	default:
		p = newClaude(cfg.AnthropicKey, model, logger)
	}

	logger.Info("Using %s provider with model %s", p.Name(), model)
	if cfg.Timeout > 0 {
		p = &deadline{Provider: p, timeout: cfg.Timeout}
	}
	return p
}
