package tracei

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nobane/formati/pkg/formati"
)

// 属性键。
const (
	TemplateKey   = attribute.Key("formati.template")
	ExprKeyPrefix = "formati.expr."
)

const instrumentationName = "github.com/nobane/formati/pkg/tracei"

var formatter = formati.New()

// Event 在 ctx 中的 span 上添加事件，事件名为渲染后的消息。
//
// span 未在记录时直接返回 nil，不做格式化。
func Event(ctx context.Context, vars formati.Vars, tmpl string, args ...any) error {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return nil
	}

	msg, err := formatter.Message(vars, tmpl, args...)
	if err != nil {
		return fmt.Errorf("tracei: %w", err)
	}
	span.AddEvent(msg.Text, trace.WithAttributes(Attributes(msg)...))

	return nil
}

// Error 在 span 上记录 err，并以渲染后的消息设置错误状态。
//
// 模板非法时仍记录 err，状态描述使用 err 本身，并返回模板错误。
func Error(ctx context.Context, err error, vars formati.Vars, tmpl string, args ...any) error {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || err == nil {
		return nil
	}

	msg, ferr := formatter.Message(vars, tmpl, args...)
	if ferr != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("tracei: %w", ferr)
	}

	span.RecordError(err, trace.WithAttributes(Attributes(msg)...))
	span.SetStatus(codes.Error, msg.Text)

	return nil
}

// Start 启动以渲染后的模板命名的 span。
//
// tracer 为 nil 时使用全局 TracerProvider。模板非法时 span 以原始模板命名，
// 同时返回错误，调用方仍需结束 span。
func Start(ctx context.Context, tracer trace.Tracer, vars formati.Vars, tmpl string, args ...any) (context.Context, trace.Span, error) {
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}

	msg, err := formatter.Message(vars, tmpl, args...)
	if err != nil {
		ctx, span := tracer.Start(ctx, tmpl, trace.WithAttributes(TemplateKey.String(tmpl)))
		return ctx, span, fmt.Errorf("tracei: %w", err)
	}

	ctx, span := tracer.Start(ctx, msg.Text,
		trace.WithAttributes(Attributes(msg)...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	return ctx, span, nil
}

// Attributes 把模板与表达式取值转换为 span 属性。
func Attributes(msg *formati.Message) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(msg.Expressions)+1)
	attrs = append(attrs, TemplateKey.String(msg.Template))
	for i, expr := range msg.Expressions {
		attrs = append(attrs, attributeValue(ExprKeyPrefix+expr, msg.Values[i]))
	}

	return attrs
}

func attributeValue(key string, v any) attribute.KeyValue {
	k := attribute.Key(key)
	switch x := v.(type) {
	case string:
		return k.String(x)
	case bool:
		return k.Bool(x)
	case int:
		return k.Int(x)
	case int64:
		return k.Int64(x)
	case int32:
		return k.Int64(int64(x))
	case uint32:
		return k.Int64(int64(x))
	case float64:
		return k.Float64(x)
	case float32:
		return k.Float64(float64(x))
	case []string:
		return k.StringSlice(x)
	case fmt.Stringer:
		return k.String(x.String())
	default:
		return k.String(fmt.Sprint(v))
	}
}
