package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

const (
	MCPVersion = "2024-11-05"
)

// Handler MCP 请求处理器
type Handler struct {
	serverInfo ServerInfo
	registry   *Registry
}

// NewHandler 创建 MCP 处理器
func NewHandler(info ServerInfo, reg *Registry) *Handler {
	return &Handler{
		serverInfo: info,
		registry:   reg,
	}
}

// Registry 返回工具注册表
func (h *Handler) Registry() *Registry {
	return h.registry
}

// IsNotification 通知类请求不需要响应
func IsNotification(method string) bool {
	return method == "notifications/initialized" || method == "notifications/cancelled"
}

// HandleRequest 处理 MCP JSON-RPC 请求
func (h *Handler) HandleRequest(ctx context.Context, req JSONRPCRequest) JSONRPCResponse {
	log.Debug().Str("method", req.Method).Interface("id", req.ID).Msg("📥 MCP request")

	if IsNotification(req.Method) {
		return JSONRPCResponse{}
	}

	var result interface{}
	var rpcErr *RPCError

	switch req.Method {
	case "initialize":
		result = h.handleInitialize()
	case "ping":
		result = struct{}{}
	case "tools/list":
		result = ListToolsResult{Tools: h.registry.List()}
	case "tools/call":
		result, rpcErr = h.handleToolsCall(ctx, req.Params)
	case "resources/list":
		result = ListResourcesResult{Resources: []interface{}{}}
	case "prompts/list":
		result = ListPromptsResult{Prompts: []interface{}{}}
	default:
		rpcErr = &RPCError{Code: CodeMethodNotFound, Message: fmt.Sprintf("unknown method: %s", req.Method)}
	}

	if rpcErr != nil {
		log.Warn().Str("method", req.Method).Str("error", rpcErr.Message).Msg("❌ MCP error")
		return JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   rpcErr,
		}
	}

	return JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}
}

// handleInitialize 处理初始化请求
func (h *Handler) handleInitialize() InitializeResult {
	return InitializeResult{
		ProtocolVersion: MCPVersion,
		Capabilities: Capability{
			Tools: ToolCapability{ListChanged: false},
		},
		ServerInfo: h.serverInfo,
	}
}

// handleToolsCall 处理工具调用请求
func (h *Handler) handleToolsCall(ctx context.Context, params interface{}) (*CallToolResult, *RPCError) {
	paramsBytes, err := json.Marshal(params)
	if err != nil {
		return nil, &RPCError{Code: CodeInvalidParams, Message: fmt.Sprintf("failed to marshal params: %v", err)}
	}

	var callParams CallToolParams
	if err := json.Unmarshal(paramsBytes, &callParams); err != nil {
		return nil, &RPCError{Code: CodeInvalidParams, Message: fmt.Sprintf("failed to unmarshal params: %v", err)}
	}
	if callParams.Name == "" {
		return nil, &RPCError{Code: CodeInvalidParams, Message: "tool name is required"}
	}

	log.Info().Str("tool", callParams.Name).Interface("args", callParams.Arguments).Msg("🔧 Tool call")

	result, err := h.registry.Call(ctx, callParams.Name, callParams.Arguments)
	if err != nil {
		return nil, &RPCError{Code: CodeInternalError, Message: err.Error()}
	}
	return result, nil
}
