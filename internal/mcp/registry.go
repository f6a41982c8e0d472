package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ToolHandler 工具处理函数
type ToolHandler func(ctx context.Context, args map[string]interface{}) (*CallToolResult, error)

// Tool 工具声明：名称、描述、参数 schema 和处理函数
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
	Handler     ToolHandler `json:"-"`
}

type registeredTool struct {
	tool   Tool
	schema *gojsonschema.Schema
}

// Registry 工具注册表，供 agent 运行时查询和调用
type Registry struct {
	mu    sync.RWMutex
	tools map[string]registeredTool
}

// NewRegistry 创建空的注册表
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]registeredTool)}
}

// Register 注册工具，名称重复时返回错误
func (r *Registry) Register(t Tool) error {
	if t.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if t.Handler == nil {
		return fmt.Errorf("tool %q has no handler", t.Name)
	}

	raw, err := json.Marshal(t.InputSchema)
	if err != nil {
		return fmt.Errorf("marshal schema for %q: %w", t.Name, err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("compile schema for %q: %w", t.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name]; exists {
		return fmt.Errorf("tool already registered: %q", t.Name)
	}
	r.tools[t.Name] = registeredTool{tool: t, schema: schema}
	return nil
}

// Get 按名称查找工具
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.tools[name]
	return rt.tool, ok
}

// List 返回按名称排序的全部工具
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tool, 0, len(r.tools))
	for _, rt := range r.tools {
		out = append(out, rt.tool)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names 返回排序后的工具名称
func (r *Registry) Names() []string {
	tools := r.List()
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name
	}
	return names
}

// Call 校验参数后调用工具。参数不合法时返回 IsError 的结果而不是错误
func (r *Registry) Call(ctx context.Context, name string, args map[string]interface{}) (*CallToolResult, error) {
	r.mu.RLock()
	rt, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return TextResult(fmt.Sprintf("Unknown tool: %s", name), true), nil
	}

	if args == nil {
		args = map[string]interface{}{}
	}
	if problems := validateArgs(rt.schema, args); len(problems) > 0 {
		return TextResult(fmt.Sprintf("Invalid arguments for %s: %s", name, strings.Join(problems, "; ")), true), nil
	}

	return rt.tool.Handler(ctx, args)
}

func validateArgs(schema *gojsonschema.Schema, args map[string]interface{}) []string {
	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return []string{err.Error()}
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return problems
}
