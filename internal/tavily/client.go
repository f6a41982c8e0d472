// Package tavily is a minimal client for the Tavily search REST API.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL = "https://api.tavily.com"
	DefaultTimeout = 30 * time.Second

	DefaultMaxResponseSize = 32 << 20

	maxErrorSnippet = 200
)

// Request 对应 POST /search 的请求体
type Request struct {
	APIKey            string   `json:"api_key,omitempty"`
	Query             string   `json:"query"`
	MaxResults        int      `json:"max_results,omitempty"`
	SearchDepth       string   `json:"search_depth,omitempty"`
	IncludeDomains    []string `json:"include_domains,omitempty"`
	ExcludeDomains    []string `json:"exclude_domains,omitempty"`
	IncludeAnswer     bool     `json:"include_answer"`
	IncludeRawContent bool     `json:"include_raw_content"`
}

// Result 单条搜索结果
type Result struct {
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Content    string   `json:"content"`
	Score      *float64 `json:"score,omitempty"`
	RawContent *string  `json:"raw_content,omitempty"`
}

// Response /search 的响应体
type Response struct {
	Query             string   `json:"query"`
	Answer            *string  `json:"answer,omitempty"`
	FollowUpQuestions []string `json:"follow_up_questions,omitempty"`
	Results           []Result `json:"results"`
	ResponseTime      float64  `json:"response_time"`
}

// Client Tavily API 客户端，可并发使用
type Client struct {
	httpClient *http.Client
	apiKey      string
	baseURL     string
	maxBodySize int64
}

// Option 客户端选项
type Option func(*Client)

// WithBaseURL 覆盖 API 地址
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithMaxResponseSize 设置响应体大小上限
func WithMaxResponseSize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// WithHTTPClient 使用自定义 HTTP 客户端
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient 创建 Tavily 客户端。proxyURL 为空表示直连
func NewClient(apiKey, proxyURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		if proxy, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(proxy)
		} else {
			log.Warn().Err(err).Str("proxy", proxyURL).Msg("⚠️ Invalid proxy URL, connecting directly")
		}
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		apiKey:      apiKey,
		baseURL:     DefaultBaseURL,
		maxBodySize: DefaultMaxResponseSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasAPIKey 是否配置了 API Key
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// Search 执行一次搜索请求，不做重试
func (c *Client) Search(ctx context.Context, req Request) (*Response, error) {
	req.APIKey = c.apiKey
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal tavily request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create tavily request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: "POST /search", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, &TransportError{Op: "read response", Err: err}
	}
	if int64(len(respBody)) > c.maxBodySize {
		return nil, &ProviderError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("response exceeds %d bytes", c.maxBodySize),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(respBody),
		}
	}

	var out Response
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, &ProviderError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("malformed response: %v", err),
		}
	}

	log.Debug().Str("query", req.Query).Int("results", len(out.Results)).Float64("response_time", out.ResponseTime).Msg("🔍 Tavily search completed")
	return &out, nil
}

// errorMessage 从错误响应中提取可读信息
func errorMessage(body []byte) string {
	if gjson.ValidBytes(body) {
		for _, path := range []string{"detail.error", "detail", "error", "message"} {
			if v := gjson.GetBytes(body, path); v.Exists() && v.Type == gjson.String && v.String() != "" {
				return v.String()
			}
		}
	}
	s := strings.TrimSpace(string(body))
	if runes := []rune(s); len(runes) > maxErrorSnippet {
		s = string(runes[:maxErrorSnippet])
	}
	if s == "" {
		return "empty response body"
	}
	return s
}
