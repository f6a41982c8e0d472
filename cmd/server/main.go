package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cliffyan/go-tavily-search-mcp/internal/config"
	"github.com/cliffyan/go-tavily-search-mcp/internal/logging"
	"github.com/cliffyan/go-tavily-search-mcp/internal/mcp"
	"github.com/cliffyan/go-tavily-search-mcp/internal/search"
	"github.com/cliffyan/go-tavily-search-mcp/internal/server"
)

func main() {
	logging.Setup(os.Stderr, "")
	log.Info().Msg("🔍 Starting go-tavily-search MCP Server...")

	// 加载配置
	cfg := config.Load()
	cfg.Print()

	// 初始化搜索适配器和工具注册表
	adapter := search.NewAdapterFromConfig(cfg)
	registry, err := mcp.NewSearchRegistry(adapter)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to register tools")
	}
	log.Info().Strs("tools", registry.Names()).Msg("✅ Registered tools")

	handler := mcp.NewHandler(mcp.ServerInfo{
		Name:    cfg.MCP.ServerName,
		Version: cfg.MCP.ServerVersion,
	}, registry)
	srv := server.New(cfg, handler)

	// 优雅关闭
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("🛑 Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("❌ Shutdown failed")
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("❌ Server failed")
	}
}
