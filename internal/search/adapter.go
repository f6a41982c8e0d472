// Package search adapts the Tavily API into a uniform search envelope that
// agent tools and the CLI consume. Every failure is reported inside the
// envelope; nothing in this package returns an error to its caller.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/cliffyan/go-tavily-search-mcp/internal/config"
	"github.com/cliffyan/go-tavily-search-mcp/internal/tavily"
)

const (
	DefaultMaxResults = 5
	MinMaxResults     = config.MinMaxResults
	MaxMaxResults     = config.MaxMaxResults
)

// Adapter 搜索适配器。不持有调用间共享的可变状态，可并发使用
type Adapter struct {
	provider Provider
	defaults Defaults
}

// NewAdapter 创建搜索适配器
func NewAdapter(p Provider, d Defaults) *Adapter {
	if d.MaxResults <= 0 {
		d.MaxResults = DefaultMaxResults
	}
	d.MaxResults = ClampMaxResults(d.MaxResults)
	return &Adapter{provider: p, defaults: d}
}

// NewAdapterFromConfig 根据配置创建 Tavily 客户端和适配器
func NewAdapterFromConfig(cfg *config.Config) *Adapter {
	client := tavily.NewClient(cfg.Tavily.APIKey, cfg.ProxyURL(), cfg.Tavily.Timeout,
		tavily.WithBaseURL(cfg.Tavily.BaseURL))
	return NewAdapter(client, Defaults{
		MaxResults:        cfg.Tavily.MaxResults,
		IncludeAnswer:     cfg.Tavily.IncludeAnswer,
		IncludeRawContent: cfg.Tavily.IncludeRawContent,
		SearchDepth:       cfg.Tavily.SearchDepth,
	})
}

// Defaults 返回适配器的默认参数
func (a *Adapter) Defaults() Defaults {
	return a.defaults
}

// NewQuery 使用默认参数构造查询
func (a *Adapter) NewQuery(text string) Query {
	return Query{
		Text:              text,
		MaxResults:        a.defaults.MaxResults,
		IncludeAnswer:     a.defaults.IncludeAnswer,
		IncludeRawContent: a.defaults.IncludeRawContent,
		SearchDepth:       a.defaults.SearchDepth,
	}
}

// ClampMaxResults 将结果数量限制在 [MinMaxResults, MaxMaxResults]
func ClampMaxResults(n int) int {
	if n < MinMaxResults {
		return MinMaxResults
	}
	if n > MaxMaxResults {
		return MaxMaxResults
	}
	return n
}

// Search 执行一次搜索。所有失败都转换为 Success=false 的结果，不会返回错误
func (a *Adapter) Search(ctx context.Context, q Query) (resp Response) {
	text := strings.TrimSpace(q.Text)
	resp.Query = text
	resp.Results = []Result{}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("query", text).Msg("❌ Search panicked")
			resp = failure(text, fmt.Errorf("internal error: %v", r))
		}
	}()

	if text == "" {
		return failure(text, errors.New("query is required"))
	}
	if a.provider == nil || !a.provider.HasAPIKey() {
		return failure(text, fmt.Errorf("%w: configure your Tavily API key before searching", config.ErrMissingAPIKey))
	}

	maxResults := q.MaxResults
	if maxResults == 0 {
		maxResults = a.defaults.MaxResults
	}
	maxResults = ClampMaxResults(maxResults)

	raw, err := a.provider.Search(ctx, tavily.Request{
		Query:             text,
		MaxResults:        maxResults,
		SearchDepth:       q.SearchDepth,
		IncludeDomains:    q.IncludeDomains,
		ExcludeDomains:    q.ExcludeDomains,
		IncludeAnswer:     q.IncludeAnswer,
		IncludeRawContent: q.IncludeRawContent,
	})
	if err != nil {
		log.Warn().Err(err).Str("query", text).Msg("❌ Tavily search failed")
		return failure(text, err)
	}
	if raw == nil {
		return failure(text, errors.New("tavily returned an empty response"))
	}

	return buildResponse(text, raw, maxResults)
}

// SearchPreset 使用预设参数执行搜索
func (a *Adapter) SearchPreset(ctx context.Context, p Preset, text string, maxResults int) Response {
	return a.Search(ctx, p.Apply(a.NewQuery(text), maxResults))
}

func buildResponse(query string, raw *tavily.Response, maxResults int) Response {
	items := raw.Results
	if len(items) > maxResults {
		items = items[:maxResults]
	}

	results := make([]Result, 0, len(items))
	for _, r := range items {
		item := Result{
			Title:   CleanText(r.Title),
			URL:     r.URL,
			Content: CleanText(r.Content),
			Score:   r.Score,
		}
		if r.RawContent != nil {
			raw := strings.TrimSpace(*r.RawContent)
			item.RawContent = &raw
		}
		results = append(results, item)
	}

	resp := Response{
		Success:      true,
		Query:        query,
		Results:      results,
		TotalResults: len(results),
		SearchTime:   raw.ResponseTime,
	}
	if raw.Answer != nil && *raw.Answer != "" {
		answer := *raw.Answer
		resp.Answer = &answer
	}
	if len(raw.FollowUpQuestions) > 0 {
		resp.FollowUpQuestions = append([]string(nil), raw.FollowUpQuestions...)
	}
	return resp
}

func failure(query string, err error) Response {
	msg := err.Error()
	if msg == "" {
		msg = "search failed"
	}
	return Response{
		Success: false,
		Query:   query,
		Results: []Result{},
		Error:   msg,
	}
}
