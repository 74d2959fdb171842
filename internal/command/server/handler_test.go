package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/nobane/formati/internal/api"
	"github.com/nobane/formati/internal/config"
)

func newTestHandler(t *testing.T, mutate func(*config.Config)) (*Handler, *sdkmetric.ManualReader) {
	t.Helper()

	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	h, err := NewHandler(&cfg,
		WithMeterProvider(mp),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)

	return h, reader
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}

	return nil
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rec := do(t, h, http.MethodGet, api.PathHealth, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestRewrite(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	tests := []struct {
		name  string
		body  string
		want  api.RewriteResponse
		xcode int
	}{
		{
			name:  "compound",
			body:  `{"template": "{user.id} {user.id:>5} {user.name}"}`,
			want:  api.RewriteResponse{Template: "{0} {0:>5} {1}", Expressions: []string{"user.id", "user.name"}},
			xcode: http.StatusOK,
		},
		{
			name:  "explicit offset",
			body:  `{"template": "{} {a.b}", "explicit": 1}`,
			want:  api.RewriteResponse{Template: "{0} {1}", Expressions: []string{"a.b"}, Offset: 1},
			xcode: http.StatusOK,
		},
		{
			name:  "explicit as string",
			body:  `{"template": "{a.b}", "explicit": "2"}`,
			want:  api.RewriteResponse{Template: "{2}", Expressions: []string{"a.b"}, Offset: 2},
			xcode: http.StatusOK,
		},
		{
			name:  "offset defaults to positional references",
			body:  `{"template": "{a.b}, {}, {a.b}"}`,
			want:  api.RewriteResponse{Template: "{1}, {0}, {1}", Expressions: []string{"a.b"}, Offset: 1},
			xcode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, api.PathRewrite, tt.body)
			require.Equal(t, tt.xcode, rec.Code, rec.Body.String())

			var resp api.RewriteResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp)
		})
	}
}

func TestRewriteErrors(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	tests := []struct {
		name  string
		body  string
		xcode int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"unknown field", `{"template": "{}", "extra": 1}`, http.StatusBadRequest},
		{"negative explicit", `{"template": "{}", "explicit": -1}`, http.StatusBadRequest},
		{"malformed template", `{"template": "{a.b"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, api.PathRewrite, tt.body)
			assert.Equal(t, tt.xcode, rec.Code)

			var resp api.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, rec.Header().Get(api.HeaderRequestID), resp.RequestID)
		})
	}
}

func TestRender(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "vars",
			body: `{"template": "{user.name} is {user.age}", "vars": {"user": {"name": "ann", "age": 31}}}`,
			want: "ann is 31",
		},
		{
			name: "index with integer from json",
			body: `{"template": "{items[n]}", "vars": {"items": ["a", "b"], "n": 1}}`,
			want: "b",
		},
		{
			name: "positional args",
			body: `{"template": "{} {cfg.mode:>6}", "vars": {"cfg": {"mode": "fast"}}, "args": ["go"]}`,
			want: "go   fast",
		},
		{
			name: "float",
			body: `{"template": "{p.price:.2}", "vars": {"p": {"price": 9.5}}}`,
			want: "9.50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, api.PathRender, tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp api.RenderResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.Output)
		})
	}
}

func TestRenderErrors(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	tests := []struct {
		name  string
		body  string
		xcode int
	}{
		{"undefined variable", `{"template": "{user.name}"}`, http.StatusUnprocessableEntity},
		{"missing key", `{"template": "{user.name}", "vars": {"user": {}}}`, http.StatusUnprocessableEntity},
		{"malformed", `{"template": "}"}`, http.StatusUnprocessableEntity},
		{"vars not an object", `{"template": "{}", "vars": [1]}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, api.PathRender, tt.body)
			assert.Equal(t, tt.xcode, rec.Code, rec.Body.String())
		})
	}
}

func TestMaxBody(t *testing.T) {
	h, _ := newTestHandler(t, func(c *config.Config) { c.Server.MaxBody = 16 })

	body := `{"template": "` + strings.Repeat("x", 64) + `"}`
	rec := do(t, h, http.MethodPost, api.PathRender, body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRequestID(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	t.Run("generated", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, api.PathHealth, "")
		_, err := uuid.Parse(rec.Header().Get(api.HeaderRequestID))
		assert.NoError(t, err)
	})

	t.Run("propagated", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, api.PathHealth, nil)
		req.Header.Set(api.HeaderRequestID, id)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, id, rec.Header().Get(api.HeaderRequestID))
	})

	t.Run("invalid replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, api.PathHealth, nil)
		req.Header.Set(api.HeaderRequestID, "not-a-uuid")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.NotEqual(t, "not-a-uuid", rec.Header().Get(api.HeaderRequestID))
	})
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rec := do(t, h, http.MethodGet, api.PathRender, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetrics(t *testing.T) {
	h, reader := newTestHandler(t, nil)

	do(t, h, http.MethodGet, api.PathHealth, "")
	do(t, h, http.MethodPost, api.PathRewrite, `{"template": "{a.b}"}`)
	do(t, h, http.MethodPost, api.PathRewrite, `{"template": "{a.b"}`)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	requests := findMetric(rm, MetricRequests)
	require.NotNil(t, requests, "requests metric not found")
	sum, ok := requests.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(3), total)
	assert.Len(t, sum.DataPoints, 3, "one series per route and status")

	duration := findMetric(rm, MetricDuration)
	require.NotNil(t, duration, "duration metric not found")
	assert.Equal(t, "ms", duration.Unit)
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	cfg := config.DefaultConfig()
	h, err := NewHandler(&cfg,
		WithMeterProvider(mp),
		WithLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))),
	)
	require.NoError(t, err)

	rec := do(t, h, http.MethodPost, api.PathRender, `{"template": "{x.y}"}`)
	id := rec.Header().Get(api.HeaderRequestID)

	out := buf.String()
	assert.Contains(t, out, `"msg":"Request failed"`)
	assert.Contains(t, out, `"msg":"Request handled"`)
	assert.Contains(t, out, `"request_id":"`+id+`"`)
	assert.Contains(t, out, `"status":422`)
}
