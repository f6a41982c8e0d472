package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/cliffyan/go-tavily-search-mcp/internal/search"
)

// 工具名称
const (
	ToolWebSearch            = "web_search"
	ToolWebSearchContext     = "web_search_context"
	ToolWebSearchNews        = "web_search_news"
	ToolWebSearchResearch    = "web_search_research"
	ToolWebSearchProgramming = "web_search_programming"
)

// NewSearchRegistry 创建并注册全部搜索工具
func NewSearchRegistry(adapter *search.Adapter) (*Registry, error) {
	reg := NewRegistry()
	for _, t := range SearchTools(adapter) {
		if err := reg.Register(t); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// SearchTools 返回全部搜索工具声明
func SearchTools(adapter *search.Adapter) []Tool {
	defaultMax := adapter.Defaults().MaxResults

	return []Tool{
		{
			Name:        ToolWebSearch,
			Description: "Search the web using Tavily API for current information, news, and research",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"query":       queryProperty(),
					"max_results": maxResultsProperty(defaultMax),
					"include_domains": {
						Type:        "array",
						Description: "Only include results from these domains",
						Items:       &Items{Type: "string"},
					},
					"exclude_domains": {
						Type:        "array",
						Description: "Exclude results from these domains",
						Items:       &Items{Type: "string"},
					},
					"include_answer": {
						Type:        "boolean",
						Description: "Include an AI-generated answer in the response",
						Default:     adapter.Defaults().IncludeAnswer,
					},
					"include_raw_content": {
						Type:        "boolean",
						Description: "Include the raw content of each result page",
						Default:     adapter.Defaults().IncludeRawContent,
					},
					"search_depth": {
						Type:        "string",
						Description: "Search depth",
						Enum:        []string{"basic", "advanced"},
					},
				},
				Required: []string{"query"},
			},
			Handler: func(ctx context.Context, args map[string]interface{}) (*CallToolResult, error) {
				q := adapter.NewQuery(stringArg(args, "query"))
				q.MaxResults = intArg(args, "max_results", defaultMax)
				q.IncludeDomains = stringSliceArg(args, "include_domains")
				q.ExcludeDomains = stringSliceArg(args, "exclude_domains")
				q.IncludeAnswer = boolArg(args, "include_answer", q.IncludeAnswer)
				q.IncludeRawContent = boolArg(args, "include_raw_content", q.IncludeRawContent)
				if depth := stringArg(args, "search_depth"); depth != "" {
					q.SearchDepth = depth
				}
				return responseResult(adapter.Search(ctx, q))
			},
		},
		{
			Name:        ToolWebSearchContext,
			Description: "Get formatted web search context for language model consumption",
			InputSchema: simpleSchema(defaultMax),
			Handler: func(ctx context.Context, args map[string]interface{}) (*CallToolResult, error) {
				text := adapter.Context(ctx, stringArg(args, "query"), intArg(args, "max_results", defaultMax))
				return TextResult(text, false), nil
			},
		},
		presetTool(adapter, ToolWebSearchNews,
			"Search for recent news and current events using web search", search.NewsPreset),
		presetTool(adapter, ToolWebSearchResearch,
			"Search for research papers, academic content, and technical documentation", search.ResearchPreset),
		presetTool(adapter, ToolWebSearchProgramming,
			"Search for programming documentation, API references, and developer resources", search.ProgrammingPreset),
	}
}

func presetTool(adapter *search.Adapter, name, description string, preset search.Preset) Tool {
	defaultMax := adapter.Defaults().MaxResults
	return Tool{
		Name:        name,
		Description: description,
		InputSchema: simpleSchema(defaultMax),
		Handler: func(ctx context.Context, args map[string]interface{}) (*CallToolResult, error) {
			resp := adapter.SearchPreset(ctx, preset, stringArg(args, "query"), intArg(args, "max_results", defaultMax))
			return responseResult(resp)
		},
	}
}

func simpleSchema(defaultMax int) InputSchema {
	return InputSchema{
		Type: "object",
		Properties: map[string]Property{
			"query":       queryProperty(),
			"max_results": maxResultsProperty(defaultMax),
		},
		Required: []string{"query"},
	}
}

func queryProperty() Property {
	minLen := 1
	return Property{
		Type:        "string",
		Description: "The search query string",
		MinLength:   &minLen,
	}
}

func maxResultsProperty(defaultMax int) Property {
	desc := fmt.Sprintf("Maximum number of results to return (%d-%d, default: %d); out-of-range values are clamped",
		search.MinMaxResults, search.MaxMaxResults, defaultMax)
	return Property{
		Type:        "integer",
		Description: desc,
		Default:     defaultMax,
	}
}

// responseResult 把搜索结果序列化为 JSON 文本
func responseResult(resp search.Response) (*CallToolResult, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return TextResult(fmt.Sprintf("Failed to format results: %v", err), true), nil
	}
	return TextResult(string(data), !resp.Success), nil
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func intArg(args map[string]interface{}, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		// 超出 int 范围的转换结果未定义，先在浮点数上截断
		if v > math.MaxInt32 {
			return search.MaxMaxResults
		}
		if v < math.MinInt32 {
			return search.MinMaxResults
		}
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return fallback
}

func boolArg(args map[string]interface{}, key string, fallback bool) bool {
	if b, ok := args[key].(bool); ok {
		return b
	}
	return fallback
}

func stringSliceArg(args map[string]interface{}, key string) []string {
	switch v := args[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
