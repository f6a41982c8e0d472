package search

import (
	"context"

	"github.com/cliffyan/go-tavily-search-mcp/internal/tavily"
)

// Query 搜索参数
type Query struct {
	Text              string   `json:"query"`
	MaxResults        int      `json:"max_results,omitempty"`
	IncludeDomains    []string `json:"include_domains,omitempty"`
	ExcludeDomains    []string `json:"exclude_domains,omitempty"`
	IncludeAnswer     bool     `json:"include_answer"`
	IncludeRawContent bool     `json:"include_raw_content"`
	SearchDepth       string   `json:"search_depth,omitempty"`
}

// Result 单条搜索结果
type Result struct {
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Content    string   `json:"content"`
	Score      *float64 `json:"score,omitempty"`
	RawContent *string  `json:"raw_content,omitempty"`
}

// Response 统一的搜索结果封装。Success 为 false 时 Error 必定非空
type Response struct {
	Success           bool     `json:"success"`
	Query             string   `json:"query"`
	Results           []Result `json:"results"`
	TotalResults      int      `json:"total_results"`
	Answer            *string  `json:"answer,omitempty"`
	FollowUpQuestions []string `json:"follow_up_questions,omitempty"`
	SearchTime        float64  `json:"search_time,omitempty"`
	Error             string   `json:"error,omitempty"`
}

// Provider 搜索服务提供方
type Provider interface {
	HasAPIKey() bool
	Search(ctx context.Context, req tavily.Request) (*tavily.Response, error)
}

// Defaults 未显式指定时使用的搜索参数
type Defaults struct {
	MaxResults        int
	IncludeAnswer     bool
	IncludeRawContent bool
	SearchDepth       string
}
