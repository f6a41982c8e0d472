package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cliffyan/go-tavily-search-mcp/internal/mcp"
)

func (a *app) toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the agent tools exposed by the MCP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := a.searchAdapter()
			if err != nil {
				return err
			}
			reg, err := mcp.NewSearchRegistry(adapter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, t := range reg.List() {
				params := make([]string, 0, len(t.InputSchema.Properties))
				for name := range t.InputSchema.Properties {
					params = append(params, name)
				}
				sort.Strings(params)
				fmt.Fprintf(out, "%s\n  %s\n  params: %s\n", t.Name, t.Description, strings.Join(params, ", "))
			}
			return nil
		},
	}
}
