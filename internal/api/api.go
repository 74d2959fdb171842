// Package api 定义 HTTP 服务的请求与响应结构。
package api

// 路由。
const (
	PathHealth  = "/health"
	PathRewrite = "/v1/rewrite"
	PathRender  = "/v1/render"
)

// HeaderRequestID 响应中携带的请求 ID。
const HeaderRequestID = "X-Request-Id"

// HealthResponse GET /health 的响应。
type HealthResponse struct {
	Status string `json:"status"`
}

// RewriteRequest POST /v1/rewrite 的请求。
// Explicit 为显式位置参数个数，省略时取模板自身引用的个数。
type RewriteRequest struct {
	Template string `json:"template"`
	Explicit *int   `json:"explicit,omitempty"`
}

// RewriteResponse POST /v1/rewrite 的响应。Offset 为第一个提取表达式的下标。
type RewriteResponse struct {
	Template    string   `json:"template" yaml:"template"`
	Expressions []string `json:"expressions" yaml:"expressions"`
	Offset      int      `json:"offset" yaml:"offset"`
}

// RenderRequest POST /v1/render 的请求。
type RenderRequest struct {
	Template string         `json:"template"`
	Vars     map[string]any `json:"vars"`
	Args     []any          `json:"args"`
}

// RenderResponse POST /v1/render 的响应。
type RenderResponse struct {
	Output string `json:"output"`
}

// ErrorResponse 错误响应。
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
