package tavily

import (
	"fmt"
	"net/http"
)

// ProviderError Tavily 返回了非成功状态码或无法解析的响应
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("tavily returned status %d (%s): %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// TransportError 网络层错误（超时、连接被拒绝、DNS 失败等）
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("tavily %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
