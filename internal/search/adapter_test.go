package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliffyan/go-tavily-search-mcp/internal/tavily"
)

// fakeProvider implements Provider for testing.
type fakeProvider struct {
	noKey bool
	resp  *tavily.Response
	err   error
	panic bool

	mu       sync.Mutex
	calls    int
	requests []tavily.Request
}

func (f *fakeProvider) HasAPIKey() bool { return !f.noKey }

func (f *fakeProvider) Search(_ context.Context, req tavily.Request) (*tavily.Response, error) {
	f.mu.Lock()
	f.calls++
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.panic {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeProvider) lastRequest(t *testing.T) tavily.Request {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests, "provider was not called")
	return f.requests[len(f.requests)-1]
}

func strPtr(s string) *string { return &s }
func floatPtr(f float64) *float64 { return &f }

func makeResults(n int) []tavily.Result {
	out := make([]tavily.Result, n)
	for i := range out {
		out[i] = tavily.Result{
			Title:   fmt.Sprintf("Result %d", i+1),
			URL:     fmt.Sprintf("https://example.com/%d", i+1),
			Content: fmt.Sprintf("snippet %d", i+1),
		}
	}
	return out
}

func newTestAdapter(p Provider) *Adapter {
	return NewAdapter(p, Defaults{MaxResults: 5, SearchDepth: "basic"})
}

func TestSearchEndToEnd(t *testing.T) {
	p := &fakeProvider{resp: &tavily.Response{
		Query:  "test",
		Answer: strPtr("An answer"),
		Results: []tavily.Result{
			{Title: "First", URL: "https://a.example", Content: "a", Score: floatPtr(0.8)},
			{Title: "Second", URL: "https://b.example", Content: "b"},
		},
		ResponseTime: 0.5,
	}}
	a := newTestAdapter(p)

	q := a.NewQuery("test")
	q.MaxResults = 2
	resp := a.Search(context.Background(), q)

	require.True(t, resp.Success)
	assert.Empty(t, resp.Error)
	assert.Equal(t, "test", resp.Query)
	assert.Equal(t, 2, resp.TotalResults)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "First", resp.Results[0].Title)
	assert.Equal(t, "Second", resp.Results[1].Title)
	require.NotNil(t, resp.Answer)
	assert.Equal(t, "An answer", *resp.Answer)
	assert.Nil(t, resp.FollowUpQuestions)
	assert.InDelta(t, 0.5, resp.SearchTime, 1e-9)

	req := p.lastRequest(t)
	assert.Equal(t, "test", req.Query)
	assert.Equal(t, 2, req.MaxResults)
}

func TestSearchForwardsQueryParameters(t *testing.T) {
	p := &fakeProvider{resp: &tavily.Response{}}
	a := newTestAdapter(p)

	a.Search(context.Background(), Query{
		Text:              "  kubernetes operators  ",
		MaxResults:        3,
		IncludeDomains:    []string{"kubernetes.io"},
		ExcludeDomains:    []string{"medium.com"},
		IncludeAnswer:     true,
		IncludeRawContent: true,
		SearchDepth:       "advanced",
	})

	req := p.lastRequest(t)
	assert.Equal(t, "kubernetes operators", req.Query)
	assert.Equal(t, 3, req.MaxResults)
	assert.Equal(t, []string{"kubernetes.io"}, req.IncludeDomains)
	assert.Equal(t, []string{"medium.com"}, req.ExcludeDomains)
	assert.True(t, req.IncludeAnswer)
	assert.True(t, req.IncludeRawContent)
	assert.Equal(t, "advanced", req.SearchDepth)
}

func TestSearchMaxResultsPolicy(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{"unset uses default", 0, 5},
		{"negative clamps to minimum", -3, MinMaxResults},
		{"in range passes through", 7, 7},
		{"too large clamps to maximum", 100, MaxMaxResults},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{resp: &tavily.Response{}}
			a := newTestAdapter(p)

			a.Search(context.Background(), Query{Text: "q", MaxResults: tt.requested})
			assert.Equal(t, tt.want, p.lastRequest(t).MaxResults)
		})
	}
}

func TestSearchTruncatesToMaxResults(t *testing.T) {
	p := &fakeProvider{resp: &tavily.Response{Results: makeResults(8)}}
	a := newTestAdapter(p)

	for _, n := range []int{1, 3, 5, 8, 12} {
		resp := a.Search(context.Background(), Query{Text: "q", MaxResults: n})
		require.True(t, resp.Success)
		assert.LessOrEqual(t, len(resp.Results), n)
		assert.Equal(t, len(resp.Results), resp.TotalResults)
		for i, r := range resp.Results {
			assert.Equal(t, fmt.Sprintf("Result %d", i+1), r.Title, "provider order must be preserved")
		}
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	p := &fakeProvider{resp: &tavily.Response{}}
	a := newTestAdapter(p)

	for _, text := range []string{"", "   ", "\t\n"} {
		resp := a.Search(context.Background(), Query{Text: text})
		assert.False(t, resp.Success)
		assert.Equal(t, "query is required", resp.Error)
		assert.NotNil(t, resp.Results)
	}
	assert.Zero(t, p.calls)
}

func TestSearchMissingAPIKey(t *testing.T) {
	p := &fakeProvider{noKey: true, resp: &tavily.Response{}}
	a := newTestAdapter(p)

	resp := a.Search(context.Background(), Query{Text: "test"})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "TAVILY_API_KEY")
	assert.Zero(t, p.calls, "no network call without an API key")
}

func TestSearchNilProvider(t *testing.T) {
	a := NewAdapter(nil, Defaults{})
	resp := a.Search(context.Background(), Query{Text: "test"})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "TAVILY_API_KEY")
}

func TestSearchProviderFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "transport",
			err:  &tavily.TransportError{Op: "POST /search", Err: errors.New("dial tcp: connection refused")},
			want: "connection refused",
		},
		{
			name: "provider",
			err:  &tavily.ProviderError{StatusCode: 401, Message: "invalid API key"},
			want: "invalid API key",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(&fakeProvider{err: tt.err})

			var resp Response
			require.NotPanics(t, func() {
				resp = a.Search(context.Background(), Query{Text: "test"})
			})
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
			assert.Contains(t, resp.Error, tt.want)
			assert.Empty(t, resp.Results)
			assert.Zero(t, resp.TotalResults)
		})
	}
}

func TestSearchRecoversFromPanic(t *testing.T) {
	a := newTestAdapter(&fakeProvider{panic: true})

	var resp Response
	require.NotPanics(t, func() {
		resp = a.Search(context.Background(), Query{Text: "test"})
	})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "boom")
}

func TestSearchNilResponse(t *testing.T) {
	a := newTestAdapter(&fakeProvider{})
	resp := a.Search(context.Background(), Query{Text: "test"})
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestSearchOptionalFields(t *testing.T) {
	p := &fakeProvider{resp: &tavily.Response{
		Answer:            strPtr(""),
		FollowUpQuestions: []string{"next?"},
		Results: []tavily.Result{
			{Title: "T", URL: "https://t.example", Content: "<p>Hello <b>world</b></p>", RawContent: strPtr("  # Page\n\n<div>raw</div>\n")},
		},
	}}
	a := newTestAdapter(p)

	resp := a.Search(context.Background(), Query{Text: "q", IncludeRawContent: true})
	require.True(t, resp.Success)
	assert.Nil(t, resp.Answer, "empty answers are dropped")
	assert.Equal(t, []string{"next?"}, resp.FollowUpQuestions)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Hello world", resp.Results[0].Content)
	require.NotNil(t, resp.Results[0].RawContent)
	assert.Equal(t, "# Page\n\n<div>raw</div>", *resp.Results[0].RawContent, "raw content is only trimmed")
	assert.Nil(t, resp.Results[0].Score)
}

func TestSearchPreservesCodeSnippets(t *testing.T) {
	fenced := "```java\nclass Box<T> {\n    T value;\n}\n```"
	p := &fakeProvider{resp: &tavily.Response{
		Results: []tavily.Result{
			{Title: "List<T> docs", URL: "https://docs.example", Content: "List<String> names", RawContent: strPtr(fenced)},
		},
	}}
	a := newTestAdapter(p)

	resp := a.SearchPreset(context.Background(), ProgrammingPreset, "java generics", 0)
	require.True(t, resp.Success, resp.Error)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "List<T> docs", resp.Results[0].Title)
	assert.Equal(t, "List<String> names", resp.Results[0].Content)
	require.NotNil(t, resp.Results[0].RawContent)
	assert.Equal(t, fenced, *resp.Results[0].RawContent)
}

func TestSearchIsIdempotent(t *testing.T) {
	p := &fakeProvider{resp: &tavily.Response{
		Answer:            strPtr("same"),
		FollowUpQuestions: []string{"a", "b"},
		Results:           makeResults(4),
	}}
	a := newTestAdapter(p)
	q := Query{Text: "repeat", MaxResults: 4, IncludeAnswer: true}

	first := a.Search(context.Background(), q)
	second := a.Search(context.Background(), q)
	assert.Equal(t, first, second)
	assert.Equal(t, p.requests[0], p.requests[1])
}

func TestSearchConcurrentCalls(t *testing.T) {
	p := &fakeProvider{resp: &tavily.Response{Results: makeResults(3)}}
	a := newTestAdapter(p)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := a.Search(context.Background(), Query{Text: fmt.Sprintf("q%d", i)})
			assert.True(t, resp.Success)
			assert.Len(t, resp.Results, 3)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 16, p.calls)
}

func TestNewAdapterDefaults(t *testing.T) {
	a := NewAdapter(&fakeProvider{}, Defaults{})
	assert.Equal(t, DefaultMaxResults, a.Defaults().MaxResults)

	a = NewAdapter(&fakeProvider{}, Defaults{MaxResults: 50, IncludeAnswer: true})
	assert.Equal(t, MaxMaxResults, a.Defaults().MaxResults)

	q := a.NewQuery("x")
	assert.Equal(t, "x", q.Text)
	assert.Equal(t, MaxMaxResults, q.MaxResults)
	assert.True(t, q.IncludeAnswer)
}
