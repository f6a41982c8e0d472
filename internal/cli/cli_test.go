package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliffyan/go-tavily-search-mcp/internal/config"
	"github.com/cliffyan/go-tavily-search-mcp/internal/search"
	"github.com/cliffyan/go-tavily-search-mcp/internal/tavily"
)

type recordingProvider struct {
	noKey bool
	err   error

	mu       sync.Mutex
	requests []tavily.Request
}

func (p *recordingProvider) HasAPIKey() bool { return !p.noKey }

func (p *recordingProvider) Search(_ context.Context, req tavily.Request) (*tavily.Response, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	answer := "answer for " + req.Query
	score := 0.5
	return &tavily.Response{
		Query:  req.Query,
		Answer: &answer,
		Results: []tavily.Result{
			{Title: "Result for " + req.Query, URL: "https://example.com/" + strings.ReplaceAll(req.Query, " ", "-"), Content: "content", Score: &score},
		},
		ResponseTime: 0.42,
	}, nil
}

func run(t *testing.T, p *recordingProvider, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	cmd := NewRootCmd(func(cfg *config.Config) *search.Adapter {
		return search.NewAdapter(p, search.Defaults{MaxResults: 5})
	})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSearchCommand(t *testing.T) {
	p := &recordingProvider{}
	out, err := run(t, p, "search", "python", "best", "practices", "-n", "3", "--include-domain", "python.org", "--answer")
	require.NoError(t, err)

	assert.Contains(t, out, "Search Query: python best practices")
	assert.Contains(t, out, "Total Results: 1")
	assert.Contains(t, out, "Search Time: 0.42s")
	assert.Contains(t, out, "AI Answer: answer for python best practices")
	assert.Contains(t, out, "1. Result for python best practices")
	assert.Contains(t, out, "Score: 0.500")

	require.Len(t, p.requests, 1)
	req := p.requests[0]
	assert.Equal(t, 3, req.MaxResults)
	assert.Equal(t, []string{"python.org"}, req.IncludeDomains)
	assert.True(t, req.IncludeAnswer)
}

func TestSearchCommandJSON(t *testing.T) {
	out, err := run(t, &recordingProvider{}, "search", "golang", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"success": true`)
	assert.Contains(t, out, `"total_results": 1`)
}

func TestSearchCommandFailure(t *testing.T) {
	out, err := run(t, &recordingProvider{noKey: true}, "search", "golang")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errSearchFailed))
	assert.Contains(t, out, "Search failed:")
	assert.Contains(t, out, config.EnvAPIKey)
}

func TestContextCommand(t *testing.T) {
	p := &recordingProvider{}
	out, err := run(t, p, "context", "machine learning trends")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "AI Answer: answer for machine learning trends"))
	assert.Contains(t, out, "Search Results:\n1. Result for machine learning trends")
	assert.Equal(t, 5, p.requests[0].MaxResults)
}

func TestPresetCommands(t *testing.T) {
	tests := map[string]string{
		"news":        "AI regulation news recent",
		"research":    "AI regulation research paper academic",
		"programming": "AI regulation documentation API guide tutorial",
	}
	for name, wantQuery := range tests {
		t.Run(name, func(t *testing.T) {
			p := &recordingProvider{}
			_, err := run(t, p, name, "AI", "regulation", "-n", "2")
			require.NoError(t, err)
			require.Len(t, p.requests, 1)
			assert.Equal(t, wantQuery, p.requests[0].Query)
			assert.Equal(t, 2, p.requests[0].MaxResults)
			assert.Equal(t, search.Presets[name].IncludeDomains, p.requests[0].IncludeDomains)
		})
	}
}

func TestBatchCommandKeepsOrder(t *testing.T) {
	p := &recordingProvider{}
	queries := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	out, err := run(t, p, append([]string{"batch", "-c", "3"}, queries...)...)
	require.NoError(t, err)
	assert.Len(t, p.requests, len(queries))

	last := -1
	for i, q := range queries {
		idx := strings.Index(out, "Result for "+q)
		require.NotEqual(t, -1, idx, q)
		assert.Greater(t, idx, last, "query %d out of order", i)
		last = idx
	}
}

func TestBatchCommandReportsFailures(t *testing.T) {
	out, err := run(t, &recordingProvider{err: errors.New("connection reset")}, "batch", "a", "b")
	require.Error(t, err)
	assert.ErrorIs(t, err, errSearchFailed)
	assert.Equal(t, 2, strings.Count(out, "Search failed: connection reset"))
}

func TestToolsCommand(t *testing.T) {
	out, err := run(t, &recordingProvider{}, "tools")
	require.NoError(t, err)
	for _, name := range []string{"web_search", "web_search_context", "web_search_news", "web_search_research", "web_search_programming"} {
		assert.Contains(t, out, name+"\n")
	}
	assert.Contains(t, out, "params: exclude_domains, include_answer, include_domains")
}

func TestEnvTemplateCommand(t *testing.T) {
	out, err := run(t, &recordingProvider{}, "env", "template")
	require.NoError(t, err)
	assert.Contains(t, out, "TAVILY_API_KEY=your_tavily_api_key_here")

	path := filepath.Join(t.TempDir(), ".env")
	_, err = run(t, &recordingProvider{}, "env", "template", "-o", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "TAVILY_API_KEY=")

	_, err = run(t, &recordingProvider{}, "env", "template", "-o", path)
	assert.Error(t, err, "existing files are not overwritten")
}

func TestEnvCheckCommand(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "")
	out, err := run(t, &recordingProvider{}, "env", "check")
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
	assert.Contains(t, out, "❌")

	t.Setenv(config.EnvAPIKey, "tvly-abc")
	out, err = run(t, &recordingProvider{}, "env", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "✅")
}

func TestEnvCheckAcceptsConfigFileKey(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "")
	require.NoError(t, os.Unsetenv(config.EnvAPIKey))

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tavily:\n  api_key: tvly-from-file\n"), 0o600))

	out, err := run(t, &recordingProvider{}, "env", "check", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✅")
	assert.Contains(t, out, "tavily.api_key")

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("tavily:\n  max_results: 3\n"), 0o600))
	out, err = run(t, &recordingProvider{}, "env", "check", "--config", empty)
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
	assert.Contains(t, out, "❌")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "héll...", truncate("héllo world", 4))
}
