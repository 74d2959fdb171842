package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nobane/formati/internal/api"
)

// defaultBackoff 为首次重试前的等待时间，之后每次翻倍。
const defaultBackoff = 200 * time.Millisecond

// APIError 是服务端返回的非 2xx 响应。
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("server returned %d: %s (request %s)", e.StatusCode, e.Message, e.RequestID)
	}

	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client 是 formati HTTP API 的客户端。
//
// 网络错误与 5xx 响应会按指数退避重试，同一次调用的重试共用一个请求 ID。
type Client struct {
	baseURL string
	http    *http.Client
	retries int
	backoff time.Duration
}

// New 创建 Client。
func New(baseURL string, timeout time.Duration, retries int) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		retries: max(retries, 0),
		backoff: defaultBackoff,
	}
}

// Health 检查服务器健康状态。
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := c.do(ctx, http.MethodGet, api.PathHealth, nil, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Rewrite 请求服务器改写模板。
func (c *Client) Rewrite(ctx context.Context, req api.RewriteRequest) (*api.RewriteResponse, error) {
	var resp api.RewriteResponse
	if err := c.do(ctx, http.MethodPost, api.PathRewrite, req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Render 请求服务器渲染模板。
func (c *Client) Render(ctx context.Context, req api.RenderRequest) (*api.RenderResponse, error) {
	var resp api.RenderResponse
	if err := c.do(ctx, http.MethodPost, api.PathRender, req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	id := uuid.NewString()
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			wait := c.backoff << (attempt - 1)
			slog.Debug("Retrying request", "request_id", id, "path", path, "attempt", attempt, "wait", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w (last error: %w)", ctx.Err(), lastErr)
			case <-time.After(wait):
			}
		}

		retry, err := c.attempt(ctx, method, path, id, payload, out)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("%s %s failed after %d attempts: %w", method, path, c.retries+1, lastErr)
}

// attempt 发送一次请求，返回错误是否可以重试。
func (c *Client) attempt(ctx context.Context, method, path, id string, payload []byte, out any) (bool, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(api.HeaderRequestID, id)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return ctx.Err() == nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, RequestID: resp.Header.Get(api.HeaderRequestID)}
		var e api.ErrorResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			apiErr.Message = e.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return resp.StatusCode >= 500, apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}

	return false, nil
}

// IsStatus 报告 err 是否为指定状态码的 [APIError]。
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
