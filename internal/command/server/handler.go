package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/nobane/formati/internal/api"
	"github.com/nobane/formati/internal/command"
	"github.com/nobane/formati/internal/config"
	"github.com/nobane/formati/pkg/formati"
)

const meterName = "github.com/nobane/formati/internal/command/server"

// Handler 提供模板改写与渲染 API。
type Handler struct {
	mux       *http.ServeMux
	formatter *formati.Formatter
	maxBody   int64
	metrics   *metrics
	logger    *slog.Logger
}

// HandlerOption 配置 [Handler]。
type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	meterProvider metric.MeterProvider
	logger        *slog.Logger
}

// WithMeterProvider 指定指标输出，默认使用全局 MeterProvider。
func WithMeterProvider(mp metric.MeterProvider) HandlerOption {
	return func(o *handlerOptions) {
		o.meterProvider = mp
	}
}

// WithLogger 指定 logger，默认使用 slog.Default()。
func WithLogger(l *slog.Logger) HandlerOption {
	return func(o *handlerOptions) {
		o.logger = l
	}
}

// NewHandler 创建 Handler。启用缓存时所有请求共享一个模板分析缓存。
func NewHandler(cfg *config.Config, opts ...HandlerOption) (*Handler, error) {
	o := handlerOptions{meterProvider: otel.GetMeterProvider(), logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	m, err := newMetrics(o.meterProvider.Meter(meterName))
	if err != nil {
		return nil, fmt.Errorf("create metrics: %w", err)
	}

	h := &Handler{
		mux:       http.NewServeMux(),
		formatter: command.NewFormatter(cfg, nil),
		maxBody:   cfg.Server.MaxBody,
		metrics:   m,
		logger:    o.logger,
	}

	h.mux.Handle("GET "+api.PathHealth, h.instrument(api.PathHealth, h.health))
	h.mux.Handle("POST "+api.PathRewrite, h.instrument(api.PathRewrite, h.rewrite))
	h.mux.Handle("POST "+api.PathRender, h.instrument(api.PathRender, h.render))

	return h, nil
}

// ServeHTTP 实现 http.Handler。
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// statusRecorder 记录响应状态码。
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// instrument 分配请求 ID，并记录日志与指标。
func (h *Handler) instrument(route string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(api.HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(api.HeaderRequestID, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		elapsed := time.Since(start)
		h.metrics.record(r.Context(), route, rec.status, elapsed)
		h.logger.Debug("Request handled",
			"request_id", id,
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"duration", elapsed,
		)
	})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

func (h *Handler) rewrite(w http.ResponseWriter, r *http.Request) {
	var req api.RewriteRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, http.StatusBadRequest, err)
		return
	}
	if req.Explicit != nil && *req.Explicit < 0 {
		h.fail(w, http.StatusBadRequest, fmt.Errorf("explicit must be >= 0, got %d", *req.Explicit))
		return
	}

	plan, err := h.formatter.Analyze(req.Template)
	if err != nil {
		h.fail(w, http.StatusUnprocessableEntity, err)
		return
	}

	offset := plan.Positional
	if req.Explicit != nil {
		offset = *req.Explicit
	}
	writeJSON(w, http.StatusOK, api.RewriteResponse{
		Template:    plan.Rewrite(offset),
		Expressions: plan.Expressions,
		Offset:      offset,
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request) {
	var req api.RenderRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, http.StatusBadRequest, err)
		return
	}

	out, err := h.formatter.Format(req.Vars, req.Template, req.Args...)
	if err != nil {
		h.fail(w, http.StatusUnprocessableEntity, err)
		return
	}

	writeJSON(w, http.StatusOK, api.RenderResponse{Output: out})
}

// decode 读取 JSON 请求体并解码到 out。
//
// 数字先按 json.Number 读取，整数保持为 int，以便用作下标。
// 未知字段返回错误。
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, out any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBody))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(normalizeNumbers(raw)); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	return nil
}

func normalizeNumbers(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, val := range x {
			x[k] = normalizeNumbers(val)
		}
		return x
	case []any:
		for i, val := range x {
			x[i] = normalizeNumbers(val)
		}
		return x
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return int(n)
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	default:
		return v
	}
}

func (h *Handler) fail(w http.ResponseWriter, status int, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		status = http.StatusRequestEntityTooLarge
	}

	id := w.Header().Get(api.HeaderRequestID)
	h.logger.Warn("Request failed", "request_id", id, "status", status, "error", err)
	writeJSON(w, status, api.ErrorResponse{Error: err.Error(), RequestID: id})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
