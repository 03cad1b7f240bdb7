package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds validated process configuration
type Config struct {
	Port            string
	Debug           bool
	LogFile         string
	CORSOrigins     []string
	RateLimitPerDay int
	PromptsFile     string

	GitHub  GitHub
	LLM     LLM
	Context Context
	Cache   Cache
}

// GitHub configures the repository provider client.
type GitHub struct {
	Token   string
	BaseURL string
	Timeout time.Duration
	Retries int
}

// LLM configures the text generation backend.
type LLM struct {
	Provider         string
	Model            string
	AnthropicKey     string
	GeminiKey        string
	OpenAIKey        string
	OpenAIBaseURL    string
	OllamaHost       string
	Timeout          time.Duration
	ExploreMaxTokens int
	ExplainMaxTokens int
}

// Context holds the size limits for context assembly.
type Context struct {
	TreeDepth        int
	MaxTreeChars     int
	MaxFiles         int
	MaxFileChars     int
	MaxTotalChars    int
	FetchConcurrency int
}

// Cache configures the explanation cache.
type Cache struct {
	Path          string
	TTL           time.Duration
	SweepInterval time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("debug", false)
	v.SetDefault("cors_origins", "http://localhost:5173")
	v.SetDefault("rate_limit_per_day", 20)

	v.SetDefault("github_timeout", 20*time.Second)
	v.SetDefault("github_retries", 2)

	v.SetDefault("ai_provider", "claude")
	v.SetDefault("llm_timeout", 120*time.Second)
	v.SetDefault("explore_max_tokens", 4096)
	v.SetDefault("explain_max_tokens", 10000)

	v.SetDefault("tree_depth", 2)
	v.SetDefault("max_tree_chars", 10000)
	v.SetDefault("max_files", 25)
	v.SetDefault("max_file_chars", 30000)
	v.SetDefault("max_total_chars", 100000)
	v.SetDefault("fetch_concurrency", 8)

	v.SetDefault("database_path", "repoexplain.db")
	v.SetDefault("cache_ttl", 7*24*time.Hour)
	v.SetDefault("cache_sweep_interval", 6*time.Hour)
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing priority. An empty path looks for
// repoexplain.yaml in the working directory.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("repoexplain")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Port:            v.GetString("port"),
		Debug:           v.GetBool("debug"),
		LogFile:         v.GetString("log_file"),
		CORSOrigins:     splitList(v.GetString("cors_origins")),
		RateLimitPerDay: v.GetInt("rate_limit_per_day"),
		PromptsFile:     v.GetString("prompts_file"),
		GitHub: GitHub{
			Token:   v.GetString("github_token"),
			BaseURL: v.GetString("github_api_url"),
			Timeout: v.GetDuration("github_timeout"),
			Retries: v.GetInt("github_retries"),
		},
		LLM: LLM{
			Provider:         v.GetString("ai_provider"),
			Model:            v.GetString("model"),
			AnthropicKey:     v.GetString("anthropic_api_key"),
			GeminiKey:        v.GetString("gemini_api_key"),
			OpenAIKey:        v.GetString("openai_api_key"),
			OpenAIBaseURL:    v.GetString("openai_base_url"),
			OllamaHost:       v.GetString("ollama_host"),
			Timeout:          v.GetDuration("llm_timeout"),
			ExploreMaxTokens: v.GetInt("explore_max_tokens"),
			ExplainMaxTokens: v.GetInt("explain_max_tokens"),
		},
		Context: Context{
			TreeDepth:        v.GetInt("tree_depth"),
			MaxTreeChars:     v.GetInt("max_tree_chars"),
			MaxFiles:         v.GetInt("max_files"),
			MaxFileChars:     v.GetInt("max_file_chars"),
			MaxTotalChars:    v.GetInt("max_total_chars"),
			FetchConcurrency: v.GetInt("fetch_concurrency"),
		},
		Cache: Cache{
			Path:          v.GetString("database_path"),
			TTL:           v.GetDuration("cache_ttl"),
			SweepInterval: v.GetDuration("cache_sweep_interval"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that limits are usable together
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.RateLimitPerDay < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_DAY must not be negative")
	}

	ctx := c.Context
	if ctx.TreeDepth < 0 {
		return fmt.Errorf("TREE_DEPTH must not be negative")
	}
	if ctx.MaxFiles <= 0 || ctx.MaxFileChars <= 0 || ctx.MaxTreeChars <= 0 || ctx.FetchConcurrency <= 0 {
		return fmt.Errorf("context limits must be positive")
	}
	if ctx.MaxTreeChars >= ctx.MaxTotalChars {
		return fmt.Errorf("MAX_TREE_CHARS (%d) must be below MAX_TOTAL_CHARS (%d)", ctx.MaxTreeChars, ctx.MaxTotalChars)
	}

	if c.LLM.ExploreMaxTokens <= 0 || c.LLM.ExplainMaxTokens <= 0 {
		return fmt.Errorf("token caps must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
