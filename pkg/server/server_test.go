package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/saint0x/repoexplain/pkg/ai"
	"github.com/saint0x/repoexplain/pkg/cache"
	"github.com/saint0x/repoexplain/pkg/config"
	"github.com/saint0x/repoexplain/pkg/github"
	"github.com/saint0x/repoexplain/pkg/log"
	"github.com/saint0x/repoexplain/pkg/repocontext"
	"github.com/saint0x/repoexplain/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSource implements repocontext.Source
type mockSource struct {
	mu      sync.Mutex
	treeErr error
	files   map[string]string
	paths   []string
}

func (m *mockSource) set(paths []string, treeErr error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths, m.treeErr = paths, treeErr
}

func (m *mockSource) DefaultBranch(_ context.Context, _, _ string) (string, error) {
	return "main", nil
}

func (m *mockSource) Tree(_ context.Context, _, _, _ string) (*github.Tree, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.treeErr != nil {
		return nil, m.treeErr
	}
	t := &github.Tree{}
	for _, p := range m.paths {
		t.Entries = append(t.Entries, tree.Entry{Path: p, Kind: tree.File})
	}
	return t, nil
}

func (m *mockSource) RootFiles(_ context.Context, _, _, _ string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paths, nil
}

func (m *mockSource) FileContent(_ context.Context, _, _, path, _ string) (string, error) {
	if c, ok := m.files[path]; ok {
		return c, nil
	}
	return "", &github.APIError{StatusCode: http.StatusNotFound}
}

// mockExplainer implements Explainer
type mockExplainer struct {
	mu           sync.Mutex
	text         string
	err          error
	calls        int
	context      string
	instructions string
}

func (m *mockExplainer) SuggestFiles(_ context.Context, _, _ string) ([]string, error) {
	return nil, nil
}

func (m *mockExplainer) Explain(_ context.Context, _ ai.RepoInfo, repoContext, instructions string, status func(string)) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.context = repoContext
	m.instructions = instructions
	if status != nil {
		status(ai.StageGenerating)
	}
	return m.text, m.err
}

func (m *mockExplainer) seen() (calls int, repoContext, instructions string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls, m.context, m.instructions
}

func (m *mockExplainer) set(text string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text, m.err = text, err
}

type fixture struct {
	server    *Server
	http      *httptest.Server
	explainer *mockExplainer
	source    *mockSource

	mu     sync.Mutex
	tokens []string
}

func (f *fixture) seenTokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tokens...)
}

func newFixture(t *testing.T, withCache bool, mutate func(*config.Config)) *fixture {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.GitHub.Token = "server-token"
	cfg.CORSOrigins = []string{"http://localhost:5173"}
	if mutate != nil {
		mutate(cfg)
	}

	f := &fixture{
		explainer: &mockExplainer{text: "## What is this repo?"},
		source: &mockSource{
			paths: []string{"README.md", "go.mod"},
			files: map[string]string{"README.md": "# Widgets", "go.mod": "module widgets"},
		},
	}

	var store Cache
	if withCache {
		s, err := cache.Open(":memory:", time.Hour, log.New(false))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		store = s
	}

	sources := func(token string) (repocontext.Source, error) {
		f.mu.Lock()
		f.tokens = append(f.tokens, token)
		f.mu.Unlock()
		return f.source, nil
	}

	f.server, err = New(log.New(false), cfg, f.explainer, sources, store)
	require.NoError(t, err)
	f.http = httptest.NewServer(f.server.Handler())
	t.Cleanup(f.http.Close)
	return f
}

func (f *fixture) get(t *testing.T, path string, header map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, f.http.URL+path, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestNew(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	sources := func(string) (repocontext.Source, error) { return nil, nil }

	tests := []struct {
		name      string
		logger    *log.Logger
		cfg       *config.Config
		explainer Explainer
		sources   SourceFactory
	}{
		{"nil logger", nil, cfg, &mockExplainer{}, sources},
		{"nil config", log.New(false), nil, &mockExplainer{}, sources},
		{"nil explainer", log.New(false), cfg, nil, sources},
		{"nil sources", log.New(false), cfg, &mockExplainer{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.logger, tt.cfg, tt.explainer, tt.sources, nil)
			assert.Error(t, err)
		})
	}
}

func TestRootAndHealth(t *testing.T) {
	f := newFixture(t, false, nil)

	resp := f.get(t, "/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var msg string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
	assert.Equal(t, welcome, msg)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp = f.get(t, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, false, health["cache"])
}

func TestExplain(t *testing.T) {
	f := newFixture(t, false, nil)

	resp := f.get(t, "/acme/widgets?instructions=focus", map[string]string{"X-GitHub-Token": "user-token"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "## What is this repo?", body.Explanation)
	assert.Equal(t, "acme/widgets", body.Repo)
	assert.False(t, body.Cache)
	assert.NotEmpty(t, body.Timestamp)

	_, repoContext, instructions := f.explainer.seen()
	assert.Equal(t, []string{"user-token"}, f.seenTokens())
	assert.Equal(t, "focus", instructions)
	assert.Contains(t, repoContext, "FILE: README.md")
	assert.Contains(t, repoContext, "FILE: go.mod")
}

func TestExplainUsesConfiguredToken(t *testing.T) {
	f := newFixture(t, false, nil)
	resp := f.get(t, "/acme/widgets", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"server-token"}, f.seenTokens())
}

func TestExplainGzip(t *testing.T) {
	f := newFixture(t, false, nil)
	f.explainer.set(strings.Repeat("a long explanation ", 200), nil)

	req, err := http.NewRequest(http.MethodGet, f.http.URL+"/acme/widgets", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "gzip")
	resp, err := http.DefaultTransport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
}

func TestExplainCache(t *testing.T) {
	f := newFixture(t, true, nil)

	first := f.get(t, "/acme/widgets", nil)
	require.Equal(t, http.StatusOK, first.StatusCode)

	second := f.get(t, "/acme/widgets", nil)
	require.Equal(t, http.StatusOK, second.StatusCode)
	var body Response
	require.NoError(t, json.NewDecoder(second.Body).Decode(&body))
	assert.True(t, body.Cache)
	calls, _, _ := f.explainer.seen()
	assert.Equal(t, 1, calls)

	// a changed layout invalidates the cached entry
	f.source.set([]string{"README.md", "go.mod", "main.go"}, nil)
	third := f.get(t, "/acme/widgets", nil)
	require.NoError(t, json.NewDecoder(third.Body).Decode(&body))
	assert.False(t, body.Cache)
	calls, _, _ = f.explainer.seen()
	assert.Equal(t, 2, calls)

	// pinned refs bypass the cache
	f.get(t, "/acme/widgets?ref=v1", nil)
	calls, _, _ = f.explainer.seen()
	assert.Equal(t, 3, calls)
}

func TestExplainGitHubErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"not found", &github.APIError{StatusCode: http.StatusNotFound}, http.StatusNotFound, "not found"},
		{"forbidden", &github.APIError{StatusCode: http.StatusForbidden}, http.StatusForbidden, "private"},
		{"rate limited", &github.APIError{StatusCode: http.StatusTooManyRequests}, http.StatusTooManyRequests, "Too many requests"},
		{"bad gateway", &github.APIError{StatusCode: http.StatusBadGateway}, http.StatusInternalServerError, "(HTTP 502)"},
		{"teapot", &github.APIError{StatusCode: http.StatusTeapot}, http.StatusTeapot, "(HTTP 418)"},
		{"network", errors.New("dial tcp: i/o timeout"), http.StatusInternalServerError, "Failed to fetch repository context"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false, nil)
			f.source.set([]string{"README.md"}, tt.err)

			resp := f.get(t, "/acme/widgets", nil)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var apiErr Error
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiErr))
			assert.Contains(t, apiErr.Message, tt.wantDetail)
			calls, _, _ := f.explainer.seen()
			assert.Zero(t, calls)
		})
	}
}

func TestExplainModelError(t *testing.T) {
	f := newFixture(t, false, nil)
	f.explainer.set("", errors.New("429 rate limit exceeded"))

	resp := f.get(t, "/acme/widgets", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var apiErr Error
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiErr))
	assert.Equal(t, "Rate limit exceeded. Please try again later.", apiErr.Message)
}

func TestExplainInvalidName(t *testing.T) {
	f := newFixture(t, false, nil)
	resp := f.get(t, "/acme/wid%20gets", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, false, func(cfg *config.Config) { cfg.RateLimitPerDay = 2 })

	assert.Equal(t, http.StatusOK, f.get(t, "/acme/widgets", nil).StatusCode)
	assert.Equal(t, http.StatusOK, f.get(t, "/acme/widgets", nil).StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, f.get(t, "/acme/widgets", nil).StatusCode)

	// unlimited routes stay open
	assert.Equal(t, http.StatusOK, f.get(t, "/health", nil).StatusCode)
}

func TestCORS(t *testing.T) {
	f := newFixture(t, false, nil)

	resp := f.get(t, "/health", map[string]string{"Origin": "http://localhost:5173"})
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))

	resp = f.get(t, "/health", map[string]string{"Origin": "https://evil.example"})
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))

	req, err := http.NewRequest(http.MethodOptions, f.http.URL+"/acme/widgets", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	preflight, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer preflight.Body.Close()
	assert.Equal(t, http.StatusNoContent, preflight.StatusCode)
	assert.Contains(t, preflight.Header.Get("Access-Control-Allow-Headers"), "X-GitHub-Token")
}

func TestRecovery(t *testing.T) {
	h := recovery(log.New(false))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestIDReused(t *testing.T) {
	var seen string
	h := requestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
