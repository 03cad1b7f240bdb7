package ai

import (
	"context"
	"fmt"

	"github.com/saint0x/repoexplain/pkg/llm"
	"github.com/saint0x/repoexplain/pkg/log"
	"github.com/saint0x/repoexplain/pkg/prompts"
	"github.com/saint0x/repoexplain/pkg/selection"
)

// Generator handles AI-powered file suggestion and repository explanation
type Generator struct {
	logger   *log.Logger
	provider llm.Provider
	prompts  prompts.Set

	exploreMaxTokens int
	explainMaxTokens int
}

// Option tunes a Generator.
type Option func(*Generator)

// WithPrompts replaces the built-in prompts.
func WithPrompts(set prompts.Set) Option {
	return func(g *Generator) { g.prompts = set }
}

// WithMaxTokens sets the output caps for suggestion and explanation calls.
// Non-positive values keep the defaults.
func WithMaxTokens(explore, explain int) Option {
	return func(g *Generator) {
		if explore > 0 {
			g.exploreMaxTokens = explore
		}
		if explain > 0 {
			g.explainMaxTokens = explain
		}
	}
}

// New creates a new Generator instance
func New(logger *log.Logger, provider llm.Provider, opts ...Option) *Generator {
	g := &Generator{
		logger:           logger,
		provider:         provider,
		prompts:          prompts.Default(),
		exploreMaxTokens: DefaultExploreMaxTokens,
		explainMaxTokens: DefaultExplainMaxTokens,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SuggestFiles asks the model which files are worth reading given the
// rendered tree. The answer is parsed, normalized against repoPrefix and
// deduplicated.
func (g *Generator) SuggestFiles(ctx context.Context, tree, repoPrefix string) ([]string, error) {
	g.logger.Step("Asking %s which files to read", g.provider.Name())

	response, err := g.provider.Generate(ctx, g.prompts.ExploreSystem, g.prompts.BuildExploreUser(tree), g.exploreMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("failed to get file suggestions: %w", err)
	}

	raw := selection.ParsePaths(response)
	cleaned := selection.CleanSuggestions(raw, repoPrefix)
	g.logger.Debug("%d raw paths -> %d cleaned paths", len(raw), len(cleaned))
	return cleaned, nil
}

// Explain sends the assembled context and returns the model's explanation.
// status, if set, receives StageGenerating before the request goes out.
func (g *Generator) Explain(ctx context.Context, repo RepoInfo, repoContext, instructions string, status func(stage string)) (string, error) {
	if status != nil {
		status(StageGenerating)
	}

	g.logger.Step("Generating explanation for %s with %s", repo.FullName(), g.provider.Name())
	prompt := g.prompts.BuildUser(repo.FullName(), repoContext, instructions)

	text, err := g.provider.Generate(ctx, g.prompts.System, prompt, g.explainMaxTokens)
	if err != nil {
		return "", fmt.Errorf("failed to generate explanation: %w", err)
	}
	return text, nil
}
