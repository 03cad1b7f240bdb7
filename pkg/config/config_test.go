package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, 2, cfg.Context.TreeDepth)
	assert.Equal(t, 25, cfg.Context.MaxFiles)
	assert.Equal(t, 30000, cfg.Context.MaxFileChars)
	assert.Equal(t, 100000, cfg.Context.MaxTotalChars)
	assert.Equal(t, 10000, cfg.Context.MaxTreeChars)
	assert.Equal(t, 20, cfg.RateLimitPerDay)
	assert.Equal(t, 6*time.Hour, cfg.Cache.SweepInterval)
	assert.Equal(t, 20*time.Second, cfg.GitHub.Timeout)
}

func TestLoadEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("AI_PROVIDER", "gemini")
	t.Setenv("MAX_FILES", "10")
	t.Setenv("CORS_ORIGINS", "http://a.test, https://b.test,")
	t.Setenv("LLM_TIMEOUT", "45s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "ghp_test", cfg.GitHub.Token)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 10, cfg.Context.MaxFiles)
	assert.Equal(t, []string{"http://a.test", "https://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"9090\"\ntree_depth: 3\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3, cfg.Context.TreeDepth)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)

	bad := *cfg
	bad.Context.MaxTreeChars = bad.Context.MaxTotalChars
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Context.FetchConcurrency = 0
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Port = ""
	assert.Error(t, bad.Validate())
}
