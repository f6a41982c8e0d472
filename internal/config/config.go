package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	// 服务器配置
	Server ServerConfig `yaml:"server"`

	// Tavily 搜索配置
	Tavily TavilyConfig `yaml:"tavily"`

	// 代理配置
	Proxy ProxyConfig `yaml:"proxy"`

	// MCP 配置
	MCP MCPConfig `yaml:"mcp"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int        `yaml:"port"`
	Host string     `yaml:"host"`
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Origin  string `yaml:"origin"`
}

// TavilyConfig Tavily API 配置
type TavilyConfig struct {
	APIKey            string        `yaml:"api_key"`
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxResults        int           `yaml:"max_results"`
	IncludeAnswer     bool          `yaml:"include_answer"`
	IncludeRawContent bool          `yaml:"include_raw_content"`
	SearchDepth       string        `yaml:"search_depth"`
}

// ProxyConfig 代理配置
type ProxyConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

// MCPConfig MCP 协议配置
type MCPConfig struct {
	ServerName    string `yaml:"server_name"`
	ServerVersion string `yaml:"server_version"`
}

// 搜索结果数量上下限
const (
	MinMaxResults = 1
	MaxMaxResults = 20
)

// ValidSearchDepths 有效的搜索深度
var ValidSearchDepths = []string{"basic", "advanced"}

// DefaultConfig 默认配置
var DefaultConfig = &Config{
	Server: ServerConfig{
		Port: 3456,
		Host: "0.0.0.0",
		CORS: CORSConfig{
			Enabled: false,
			Origin:  "*",
		},
	},
	Tavily: TavilyConfig{
		BaseURL:           "https://api.tavily.com",
		Timeout:           30 * time.Second,
		MaxResults:        5,
		IncludeAnswer:     false,
		IncludeRawContent: false,
		SearchDepth:       "basic",
	},
	Proxy: ProxyConfig{
		Enabled: false,
		URL:     "http://127.0.0.1:7890",
	},
	MCP: MCPConfig{
		ServerName:    "go-tavily-search-mcp",
		ServerVersion: "1.0.0",
	},
}

// configSearchPaths 配置文件搜索路径
var configSearchPaths = []string{
	"config.yaml",
	"config.yml",
	"configs/config.yaml",
	"configs/config.yml",
}

// Load 从 YAML 配置文件和环境变量加载配置
// 支持通过 CONFIG_FILE 环境变量指定配置文件路径
func Load() *Config {
	cfg := *DefaultConfig

	configPath := findConfigFile()
	if configPath == "" {
		log.Debug().Msg("⚠️ No config file found, using defaults and environment")
	} else {
		log.Info().Str("path", configPath).Msg("📄 Loading configuration")
		if err := readInto(configPath, &cfg); err != nil {
			log.Warn().Err(err).Msg("⚠️ Config file ignored, using defaults")
			cfg = *DefaultConfig
		}
	}

	cfg.applyEnv(os.LookupEnv)
	cfg.validate()
	return &cfg
}

// LoadFromFile 从指定路径加载配置，环境变量仍然生效
func LoadFromFile(path string) (*Config, error) {
	cfg := *DefaultConfig
	if err := readInto(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv(os.LookupEnv)
	cfg.validate()
	return &cfg, nil
}

func readInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file failed: %w", err)
	}
	return nil
}

// findConfigFile 查找配置文件
func findConfigFile() string {
	if envPath := os.Getenv("CONFIG_FILE"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
		log.Warn().Str("path", envPath).Msg("⚠️ CONFIG_FILE not found, searching default paths")
	}

	var execDir string
	if execPath, err := os.Executable(); err == nil {
		execDir = filepath.Dir(execPath)
	}
	workDir, _ := os.Getwd()

	searchDirs := []string{workDir}
	if execDir != "" && execDir != workDir {
		searchDirs = append(searchDirs, execDir)
	}

	for _, dir := range searchDirs {
		for _, name := range configSearchPaths {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// applyEnv 使用环境变量覆盖配置
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAPIKey); ok {
		c.Tavily.APIKey = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		c.Tavily.BaseURL = v
	}
	if v, ok := lookup(EnvMaxResults); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			log.Warn().Str("env", EnvMaxResults).Str("value", v).Msg("⚠️ Invalid integer, ignored")
		} else {
			c.Tavily.MaxResults = n
		}
	}
	if v, ok := lookup(EnvIncludeAnswer); ok && v != "" {
		c.Tavily.IncludeAnswer = parseBool(EnvIncludeAnswer, v, c.Tavily.IncludeAnswer)
	}
	if v, ok := lookup(EnvIncludeRawContent); ok && v != "" {
		c.Tavily.IncludeRawContent = parseBool(EnvIncludeRawContent, v, c.Tavily.IncludeRawContent)
	}
	if v, ok := lookup(EnvSearchDepth); ok && v != "" {
		c.Tavily.SearchDepth = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvProxyURL); ok && v != "" {
		c.Proxy.Enabled = true
		c.Proxy.URL = v
	}
}

func parseBool(name, v string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		log.Warn().Str("env", name).Str("value", v).Msg("⚠️ Invalid boolean, ignored")
		return fallback
	}
	return b
}

// validate 验证并修正配置
func (c *Config) validate() {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		log.Warn().Int("port", c.Server.Port).Int("default", DefaultConfig.Server.Port).Msg("⚠️ Invalid port, using default")
		c.Server.Port = DefaultConfig.Server.Port
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultConfig.Server.Host
	}
	if c.Server.CORS.Origin == "" {
		c.Server.CORS.Origin = DefaultConfig.Server.CORS.Origin
	}

	if c.Tavily.BaseURL == "" {
		c.Tavily.BaseURL = DefaultConfig.Tavily.BaseURL
	}
	c.Tavily.BaseURL = strings.TrimRight(c.Tavily.BaseURL, "/")
	if c.Tavily.Timeout <= 0 {
		c.Tavily.Timeout = DefaultConfig.Tavily.Timeout
	}
	if c.Tavily.MaxResults < MinMaxResults || c.Tavily.MaxResults > MaxMaxResults {
		log.Warn().Int("max_results", c.Tavily.MaxResults).Int("default", DefaultConfig.Tavily.MaxResults).Msg("⚠️ Invalid max_results, using default")
		c.Tavily.MaxResults = DefaultConfig.Tavily.MaxResults
	}
	if !contains(ValidSearchDepths, c.Tavily.SearchDepth) {
		log.Warn().Str("search_depth", c.Tavily.SearchDepth).Msg("⚠️ Invalid search_depth, falling back to basic")
		c.Tavily.SearchDepth = DefaultConfig.Tavily.SearchDepth
	}

	if c.Proxy.Enabled && c.Proxy.URL == "" {
		log.Warn().Msg("⚠️ Proxy enabled but URL is empty, using default")
		c.Proxy.URL = DefaultConfig.Proxy.URL
	}

	if c.MCP.ServerName == "" {
		c.MCP.ServerName = DefaultConfig.MCP.ServerName
	}
	if c.MCP.ServerVersion == "" {
		c.MCP.ServerVersion = DefaultConfig.MCP.ServerVersion
	}
}

// Print 打印配置信息
func (c *Config) Print() {
	if c.HasAPIKey() {
		log.Info().Msg("🔑 Tavily API key configured")
	} else {
		log.Warn().Str("env", EnvAPIKey).Msg("🔑 Tavily API key missing, searches will fail until it is set")
	}
	log.Info().
		Str("base_url", c.Tavily.BaseURL).
		Int("max_results", c.Tavily.MaxResults).
		Bool("include_answer", c.Tavily.IncludeAnswer).
		Bool("include_raw_content", c.Tavily.IncludeRawContent).
		Str("search_depth", c.Tavily.SearchDepth).
		Msg("🔍 Search defaults")
	if c.Proxy.Enabled {
		log.Info().Str("proxy", c.Proxy.URL).Msg("🌐 Using proxy")
	}
	if c.Server.CORS.Enabled {
		log.Info().Str("origin", c.Server.CORS.Origin).Msg("🔒 CORS enabled")
	}
	log.Info().Str("name", c.MCP.ServerName).Str("version", c.MCP.ServerVersion).Msg("🔧 MCP server")
}

// HasAPIKey 是否配置了 API Key
func (c *Config) HasAPIKey() bool {
	return c.Tavily.APIKey != ""
}

// ProxyURL 返回生效的代理地址，未启用时为空
func (c *Config) ProxyURL() string {
	if !c.Proxy.Enabled {
		return ""
	}
	return c.Proxy.URL
}

// Addr 服务器监听地址
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
