package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/cliffyan/go-tavily-search-mcp/internal/config"
	"github.com/cliffyan/go-tavily-search-mcp/internal/mcp"
)

const (
	sessionHeader     = "mcp-session-id"
	keepaliveInterval = 30 * time.Second
	maxRequestBody    = 1 << 20
)

// Server MCP HTTP 服务器
type Server struct {
	config     *config.Config
	mcpHandler *mcp.Handler
	httpServer *http.Server
	sessions   map[string]*Session
	sessionsMu sync.RWMutex
}

// Session 会话信息
type Session struct {
	ID        string
	CreatedAt time.Time
}

// New 创建新的服务器实例
func New(cfg *config.Config, h *mcp.Handler) *Server {
	return &Server{
		config:     cfg,
		mcpHandler: h,
		sessions:   make(map[string]*Session),
	}
}

// Handler 构建 HTTP 路由（含可选的 CORS 中间件）
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// MCP 端点
	mux.HandleFunc("/mcp", s.handleMCP)

	// SSE 端点（兼容旧客户端）
	mux.HandleFunc("/sse", s.handleSSE)

	// 健康检查
	mux.HandleFunc("/health", s.handleHealth)

	var handler http.Handler = mux
	if s.config.Server.CORS.Enabled {
		c := cors.New(cors.Options{
			AllowedOrigins:   []string{s.config.Server.CORS.Origin},
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", sessionHeader},
			ExposedHeaders:   []string{sessionHeader},
			AllowCredentials: true,
		})
		handler = c.Handler(mux)
	}
	return handler
}

// Start 启动 HTTP 服务器，Shutdown 后返回 nil
func (s *Server) Start() error {
	addr := s.config.Addr()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().Str("addr", addr).Msg("🚀 Starting MCP HTTP server")
	log.Info().Msgf("📡 MCP endpoint: http://%s/mcp", addr)
	log.Info().Msgf("📡 SSE endpoint: http://%s/sse", addr)
	log.Info().Msgf("❤️ Health check: http://%s/health", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭服务器
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// handleMCP 处理 MCP 请求
func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleMCPPost(w, r)
	case http.MethodGet:
		s.handleMCPGet(w, r)
	case http.MethodDelete:
		s.handleMCPDelete(w, r)
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleMCPPost 处理 MCP POST 请求
func (s *Server) handleMCPPost(w http.ResponseWriter, r *http.Request) {
	var req mcp.JSONRPCRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		s.sendError(w, nil, mcp.CodeParseError, "Parse error: "+err.Error())
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		s.sendError(w, req.ID, mcp.CodeInvalidRequest, "Invalid request")
		return
	}

	sessionID := r.Header.Get(sessionHeader)

	// 初始化请求创建新会话
	if req.Method == "initialize" && sessionID == "" {
		sessionID = s.newSession()
		w.Header().Set(sessionHeader, sessionID)
		log.Info().Str("session", sessionID).Msg("📝 Created new session")
	}

	resp := s.mcpHandler.HandleRequest(r.Context(), req)

	// 通知类型返回 202
	if mcp.IsNotification(req.Method) {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("❌ Failed to encode response")
	}
}

// handleMCPGet 处理 MCP GET 请求（SSE 流）
func (s *Server) handleMCPGet(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		http.Error(w, "Missing session ID", http.StatusBadRequest)
		return
	}
	if !s.hasSession(sessionID) {
		http.Error(w, "Invalid session ID", http.StatusBadRequest)
		return
	}

	flusher, ok := startSSE(w)
	if !ok {
		return
	}

	fmt.Fprintf(w, "event: endpoint\ndata: {\"uri\": \"/mcp\"}\n\n")
	flusher.Flush()

	s.keepalive(r.Context(), w, flusher)
}

// handleMCPDelete 处理 MCP DELETE 请求（关闭会话）
func (s *Server) handleMCPDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		http.Error(w, "Missing session ID", http.StatusBadRequest)
		return
	}

	s.deleteSession(sessionID)
	log.Info().Str("session", sessionID).Msg("🗑️ Deleted session")
	w.WriteHeader(http.StatusOK)
}

// handleSSE 处理 SSE 端点（兼容旧客户端）
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	flusher, ok := startSSE(w)
	if !ok {
		return
	}

	sessionID := s.newSession()
	defer func() {
		s.deleteSession(sessionID)
		log.Info().Str("session", sessionID).Msg("📡 SSE connection closed")
	}()

	fmt.Fprintf(w, "event: endpoint\ndata: {\"uri\": \"/mcp\", \"sessionId\": %q}\n\n", sessionID)
	flusher.Flush()
	log.Info().Str("session", sessionID).Msg("📡 SSE connection established")

	s.keepalive(r.Context(), w, flusher)
}

// handleHealth 健康检查端点
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":             "ok",
		"service":            s.config.MCP.ServerName,
		"version":            s.config.MCP.ServerVersion,
		"tools":              s.mcpHandler.Registry().Names(),
		"api_key_configured": s.config.HasAPIKey(),
	})
}

func startSSE(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	return flusher, true
}

// keepalive 定期发送心跳直到连接关闭
func (s *Server) keepalive(ctx context.Context, w http.ResponseWriter, flusher http.Flusher) {
	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

func (s *Server) newSession() string {
	id := uuid.New().String()
	s.sessionsMu.Lock()
	s.sessions[id] = &Session{ID: id, CreatedAt: time.Now()}
	s.sessionsMu.Unlock()
	return id
}

func (s *Server) hasSession(id string) bool {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	_, ok := s.sessions[id]
	return ok
}

func (s *Server) deleteSession(id string) {
	s.sessionsMu.Lock()
	delete(s.sessions, id)
	s.sessionsMu.Unlock()
}

// sendError 发送错误响应
func (s *Server) sendError(w http.ResponseWriter, id interface{}, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(mcp.JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &mcp.RPCError{
			Code:    code,
			Message: message,
		},
	})
}
