package search

import (
	"context"
	"fmt"
	"strings"
)

// Context 执行搜索并把结果渲染成可直接放入提示词的文本
func (a *Adapter) Context(ctx context.Context, text string, maxResults int) string {
	q := a.NewQuery(text)
	q.MaxResults = maxResults
	q.IncludeAnswer = true
	return RenderContext(a.Search(ctx, q))
}

// RenderContext 渲染搜索结果。成功时输出永远非空
func RenderContext(resp Response) string {
	if !resp.Success {
		return "Search failed: " + resp.Error
	}

	var sb strings.Builder
	if resp.Answer != nil && *resp.Answer != "" {
		fmt.Fprintf(&sb, "AI Answer: %s\n\n", strings.TrimSpace(*resp.Answer))
	}

	if len(resp.Results) == 0 {
		fmt.Fprintf(&sb, "No search results found for %q.", resp.Query)
		return sb.String()
	}

	sb.WriteString("Search Results:\n")
	for i, r := range resp.Results {
		fmt.Fprintf(&sb, "%d. %s\n   URL: %s\n   Content: %s\n", i+1, r.Title, r.URL, r.Content)
		if i < len(resp.Results)-1 {
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
