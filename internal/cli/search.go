package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/cliffyan/go-tavily-search-mcp/internal/search"
)

const snippetLimit = 200

// errSearchFailed 搜索失败时命令以非零状态退出
var errSearchFailed = errors.New("search failed")

type searchFlags struct {
	maxResults     int
	includeDomains []string
	excludeDomains []string
	answer         bool
	raw            bool
	depth          string
	asJSON         bool
}

func (a *app) searchCmd() *cobra.Command {
	var f searchFlags
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the web",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := a.searchAdapter()
			if err != nil {
				return err
			}

			q := adapter.NewQuery(strings.Join(args, " "))
			if cmd.Flags().Changed("max-results") {
				q.MaxResults = f.maxResults
			}
			q.IncludeDomains = f.includeDomains
			q.ExcludeDomains = f.excludeDomains
			if cmd.Flags().Changed("answer") {
				q.IncludeAnswer = f.answer
			}
			if cmd.Flags().Changed("raw") {
				q.IncludeRawContent = f.raw
			}
			if f.depth != "" {
				q.SearchDepth = f.depth
			}

			return printResponse(cmd.OutOrStdout(), adapter.Search(cmd.Context(), q), f.asJSON)
		},
	}
	cmd.Flags().IntVarP(&f.maxResults, "max-results", "n", search.DefaultMaxResults, "maximum number of results (1-20)")
	cmd.Flags().StringSliceVar(&f.includeDomains, "include-domain", nil, "only include results from these domains")
	cmd.Flags().StringSliceVar(&f.excludeDomains, "exclude-domain", nil, "exclude results from these domains")
	cmd.Flags().BoolVar(&f.answer, "answer", false, "include an AI-generated answer")
	cmd.Flags().BoolVar(&f.raw, "raw", false, "include raw page content")
	cmd.Flags().StringVar(&f.depth, "depth", "", "search depth: basic or advanced")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the raw response envelope as JSON")
	return cmd
}

func (a *app) contextCmd() *cobra.Command {
	var maxResults int
	cmd := &cobra.Command{
		Use:   "context <query>",
		Short: "Print search results formatted as language model context",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := a.searchAdapter()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), adapter.Context(cmd.Context(), strings.Join(args, " "), maxResults))
			return nil
		},
	}
	cmd.Flags().IntVarP(&maxResults, "max-results", "n", 0, "maximum number of results (1-20, default from config)")
	return cmd
}

func (a *app) presetCmd(p search.Preset, short string) *cobra.Command {
	var (
		maxResults int
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   p.Name + " <query>",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := a.searchAdapter()
			if err != nil {
				return err
			}
			resp := adapter.SearchPreset(cmd.Context(), p, strings.Join(args, " "), maxResults)
			return printResponse(cmd.OutOrStdout(), resp, asJSON)
		},
	}
	cmd.Flags().IntVarP(&maxResults, "max-results", "n", 0, "maximum number of results (1-20, default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw response envelope as JSON")
	return cmd
}

// printResponse 打印搜索结果，失败时返回 errSearchFailed
func printResponse(w io.Writer, resp search.Response, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return err
		}
	} else {
		writeResponse(w, resp)
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s", errSearchFailed, resp.Error)
	}
	return nil
}

func writeResponse(w io.Writer, resp search.Response) {
	if !resp.Success {
		fmt.Fprintf(w, "Search failed: %s\n", resp.Error)
		return
	}

	fmt.Fprintf(w, "Search Query: %s\n", resp.Query)
	fmt.Fprintf(w, "Total Results: %d\n", resp.TotalResults)
	if resp.SearchTime > 0 {
		fmt.Fprintf(w, "Search Time: %.2fs\n", resp.SearchTime)
	}
	if resp.Answer != nil {
		fmt.Fprintf(w, "\nAI Answer: %s\n", *resp.Answer)
	}
	fmt.Fprintln(w)

	if len(resp.Results) == 0 {
		fmt.Fprintln(w, "No results found.")
	}
	for i, r := range resp.Results {
		fmt.Fprintf(w, "%d. %s\n", i+1, r.Title)
		fmt.Fprintf(w, "   URL: %s\n", r.URL)
		fmt.Fprintf(w, "   Content: %s\n", truncate(r.Content, snippetLimit))
		if r.Score != nil {
			fmt.Fprintf(w, "   Score: %.3f\n", *r.Score)
		}
		if r.RawContent != nil {
			fmt.Fprintf(w, "   Raw content: %d characters\n", utf8.RuneCountInString(*r.RawContent))
		}
		fmt.Fprintln(w)
	}

	if len(resp.FollowUpQuestions) > 0 {
		fmt.Fprintln(w, "Follow-up questions:")
		for _, q := range resp.FollowUpQuestions {
			fmt.Fprintf(w, "  - %s\n", q)
		}
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
