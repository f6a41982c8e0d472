// Package cli implements the tavily command-line tool using cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cliffyan/go-tavily-search-mcp/internal/config"
	"github.com/cliffyan/go-tavily-search-mcp/internal/logging"
	"github.com/cliffyan/go-tavily-search-mcp/internal/search"
)

const version = "1.0.0"

// AdapterFactory 根据配置创建搜索适配器
type AdapterFactory func(cfg *config.Config) *search.Adapter

type app struct {
	newAdapter AdapterFactory
	configPath string
	logLevel   string

	cfg     *config.Config
	adapter *search.Adapter
}

// NewRootCmd 构建命令树。factory 为 nil 时使用真实的 Tavily 客户端
func NewRootCmd(factory AdapterFactory) *cobra.Command {
	if factory == nil {
		factory = search.NewAdapterFromConfig
	}
	a := &app{newAdapter: factory}

	root := &cobra.Command{
		Use:           "tavily",
		Short:         "🔍 tavily: web search from the command line",
		Long:          "🔍 tavily: search the web through the Tavily API, render LLM-ready context and inspect the agent tools.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(cmd.ErrOrStderr(), a.logLevel)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config.yaml (default: search CONFIG_FILE and ./config.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		a.searchCmd(),
		a.contextCmd(),
		a.presetCmd(search.NewsPreset, "Search recent news and current events"),
		a.presetCmd(search.ResearchPreset, "Search research papers and academic content"),
		a.presetCmd(search.ProgrammingPreset, "Search programming documentation and API references"),
		a.batchCmd(),
		a.toolsCmd(),
		a.envCmd(),
	)
	return root
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := NewRootCmd(nil).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig 懒加载配置
func (a *app) loadConfig() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	if a.configPath != "" {
		cfg, err := config.LoadFromFile(a.configPath)
		if err != nil {
			return nil, err
		}
		a.cfg = cfg
		return cfg, nil
	}
	a.cfg = config.Load()
	return a.cfg, nil
}

func (a *app) searchAdapter() (*search.Adapter, error) {
	if a.adapter != nil {
		return a.adapter, nil
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	a.adapter = a.newAdapter(cfg)
	return a.adapter, nil
}
