package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cliffyan/go-tavily-search-mcp/internal/search"
)

func (a *app) batchCmd() *cobra.Command {
	var (
		maxResults  int
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "batch <query> [query...]",
		Short: "Run several searches in parallel and print them in order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := a.searchAdapter()
			if err != nil {
				return err
			}

			responses := runBatch(cmd, adapter, args, maxResults, concurrency)

			out := cmd.OutOrStdout()
			failed := 0
			for i, resp := range responses {
				fmt.Fprintf(out, "=== [%d/%d] %s ===\n", i+1, len(responses), args[i])
				writeResponse(out, resp)
				if !resp.Success {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d queries", errSearchFailed, failed, len(responses))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&maxResults, "max-results", "n", 0, "maximum number of results per query (1-20, default from config)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "number of searches in flight")
	return cmd
}

// runBatch 并发执行独立的搜索，结果顺序与输入一致
func runBatch(cmd *cobra.Command, adapter *search.Adapter, queries []string, maxResults, concurrency int) []search.Response {
	if concurrency < 1 {
		concurrency = 1
	}
	responses := make([]search.Response, len(queries))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, text := range queries {
		i, text := i, text
		g.Go(func() error {
			q := adapter.NewQuery(text)
			q.MaxResults = maxResults
			responses[i] = adapter.Search(cmd.Context(), q)
			return nil
		})
	}
	_ = g.Wait()
	return responses
}
