package main

import (
	"fmt"

	"github.com/saint0x/repoexplain/pkg/ai"
	"github.com/saint0x/repoexplain/pkg/config"
	"github.com/saint0x/repoexplain/pkg/github"
	"github.com/saint0x/repoexplain/pkg/llm"
	"github.com/saint0x/repoexplain/pkg/log"
	"github.com/saint0x/repoexplain/pkg/prompts"
	"github.com/saint0x/repoexplain/pkg/repocontext"
)

// app is the wiring shared by every command.
type app struct {
	cfg       *config.Config
	logger    *log.Logger
	generator *ai.Generator
}

func loadConfig() (*config.Config, *log.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	if debugFlag {
		cfg.Debug = true
	}
	return cfg, log.NewWithFile(cfg.Debug, cfg.LogFile), nil
}

func newApp() (*app, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}

	set, err := prompts.Load(cfg.PromptsFile)
	if err != nil {
		logger.Close()
		return nil, err
	}

	provider := llm.New(cfg.LLM, logger)
	generator := ai.New(logger, provider,
		ai.WithPrompts(set),
		ai.WithMaxTokens(cfg.LLM.ExploreMaxTokens, cfg.LLM.ExplainMaxTokens),
	)

	return &app{cfg: cfg, logger: logger, generator: generator}, nil
}

// source builds a GitHub client for token, falling back to the configured
// token when it is empty.
func (a *app) source(token string) (repocontext.Source, error) {
	if token == "" {
		token = a.cfg.GitHub.Token
	}
	client, err := github.New(a.logger, github.Options{
		Token:   token,
		BaseURL: a.cfg.GitHub.BaseURL,
		Timeout: a.cfg.GitHub.Timeout,
		Retries: a.cfg.GitHub.Retries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	return client, nil
}

func (a *app) assembler(token string) (*repocontext.Assembler, error) {
	src, err := a.source(token)
	if err != nil {
		return nil, err
	}
	return repocontext.New(src, a.generator, repocontext.LimitsFromConfig(a.cfg.Context), a.logger), nil
}
