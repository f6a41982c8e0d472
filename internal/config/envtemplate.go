package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// 环境变量名称
const (
	EnvAPIKey            = "TAVILY_API_KEY"
	EnvBaseURL           = "TAVILY_BASE_URL"
	EnvMaxResults        = "TAVILY_MAX_RESULTS"
	EnvIncludeAnswer     = "TAVILY_INCLUDE_ANSWER"
	EnvIncludeRawContent = "TAVILY_INCLUDE_RAW_CONTENT"
	EnvSearchDepth       = "TAVILY_SEARCH_DEPTH"
	EnvProxyURL          = "TAVILY_PROXY_URL"
)

// ErrMissingAPIKey 未配置 API Key
var ErrMissingAPIKey = errors.New(EnvAPIKey + " is not set")

// Importance 环境变量重要程度
type Importance string

const (
	ImportanceCritical Importance = "critical"
	ImportanceOptional Importance = "optional"
)

// EnvVar 环境变量说明
type EnvVar struct {
	Name        string
	Description string
	Default     string
	Required    bool
	Importance  Importance
}

// EnvGroup 一组相关的环境变量
type EnvGroup struct {
	Name string
	Vars []EnvVar
}

// EnvTemplate 返回项目使用的全部环境变量模板
func EnvTemplate() []EnvGroup {
	return []EnvGroup{
		{
			Name: "Tavily API Configuration",
			Vars: []EnvVar{
				{
					Name:        EnvAPIKey,
					Description: "Tavily API key for web search functionality. Get your API key from https://tavily.com/",
					Default:     "your_tavily_api_key_here",
					Required:    true,
					Importance:  ImportanceCritical,
				},
				{
					Name:        EnvBaseURL,
					Description: "Tavily API base URL",
					Default:     DefaultConfig.Tavily.BaseURL,
					Importance:  ImportanceOptional,
				},
			},
		},
		{
			Name: "Search Defaults",
			Vars: []EnvVar{
				{
					Name:        EnvMaxResults,
					Description: fmt.Sprintf("Default maximum number of search results to return (%d-%d)", MinMaxResults, MaxMaxResults),
					Default:     "5",
					Importance:  ImportanceOptional,
				},
				{
					Name:        EnvIncludeAnswer,
					Description: "Include AI-generated answer by default",
					Default:     "false",
					Importance:  ImportanceOptional,
				},
				{
					Name:        EnvIncludeRawContent,
					Description: "Include raw content of web pages by default",
					Default:     "false",
					Importance:  ImportanceOptional,
				},
				{
					Name:        EnvSearchDepth,
					Description: "Search depth: basic or advanced",
					Default:     "basic",
					Importance:  ImportanceOptional,
				},
				{
					Name:        EnvProxyURL,
					Description: "HTTP proxy used for outbound Tavily requests",
					Default:     "",
					Importance:  ImportanceOptional,
				},
			},
		},
	}
}

// WriteEnvTemplate 以 .env 文件格式输出模板
func WriteEnvTemplate(w io.Writer) error {
	var sb strings.Builder
	for i, group := range EnvTemplate() {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "# ===== %s =====\n", group.Name)
		for _, v := range group.Vars {
			fmt.Fprintf(&sb, "# %s\n", v.Description)
			if v.Required {
				fmt.Fprintf(&sb, "# required (%s)\n", v.Importance)
				fmt.Fprintf(&sb, "%s=%s\n", v.Name, v.Default)
			} else {
				fmt.Fprintf(&sb, "# %s=%s\n", v.Name, v.Default)
			}
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// CheckRequired 检查必需的环境变量是否已设置
func CheckRequired() error {
	return checkRequired(os.LookupEnv)
}

func checkRequired(lookup func(string) (string, bool)) error {
	var missing []string
	for _, group := range EnvTemplate() {
		for _, v := range group.Vars {
			if !v.Required {
				continue
			}
			if val, ok := lookup(v.Name); !ok || strings.TrimSpace(val) == "" {
				missing = append(missing, v.Name)
			}
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: missing required environment variable(s) %s", ErrMissingAPIKey, strings.Join(missing, ", "))
}

// RequireAPIKey 检查配置中的 API Key
func (c *Config) RequireAPIKey() error {
	if !c.HasAPIKey() {
		return fmt.Errorf("%w: set it in the environment or tavily.api_key in config.yaml", ErrMissingAPIKey)
	}
	return nil
}
