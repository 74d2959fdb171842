package server

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// 指标名称。
const (
	MetricRequests = "formati.requests"
	MetricDuration = "formati.request.duration_ms"
)

// metrics 记录 HTTP 请求指标。
type metrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	requests, err := meter.Int64Counter(MetricRequests,
		metric.WithDescription("Number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(MetricDuration,
		metric.WithDescription("HTTP request latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metrics{requests: requests, duration: duration}, nil
}

func (m *metrics) record(ctx context.Context, route string, status int, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(d.Microseconds())/1000, attrs)
}
