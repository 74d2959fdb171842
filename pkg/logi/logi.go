package logi

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/nobane/formati/pkg/formati"
)

// Logger 以模板写入 slog 日志。
type Logger struct {
	logger    *slog.Logger
	formatter *formati.Formatter
	exprAttrs bool
}

// Option 配置 [Logger]。
type Option func(*Logger)

// WithExpressionAttrs 为每个提取的表达式追加一个同名属性。
//
//	log.Info(ctx, vars, "user {user.id} logged in")
//	// msg="user 7 logged in" user.id=7
func WithExpressionAttrs(enabled bool) Option {
	return func(l *Logger) {
		l.exprAttrs = enabled
	}
}

// WithFormatter 使用指定的 Formatter（例如带缓存）。
func WithFormatter(f *formati.Formatter) Option {
	return func(l *Logger) {
		l.formatter = f
	}
}

// New 包装 l；l 为 nil 时使用 slog.Default()。
func New(l *slog.Logger, opts ...Option) *Logger {
	if l == nil {
		l = slog.Default()
	}
	lg := &Logger{logger: l}
	for _, opt := range opts {
		opt(lg)
	}
	if lg.formatter == nil {
		lg.formatter = formati.New()
	}

	return lg
}

// Slog 返回底层的 slog.Logger。
func (l *Logger) Slog() *slog.Logger {
	return l.logger
}

// Debug 以 DEBUG 级别记录。
func (l *Logger) Debug(ctx context.Context, vars formati.Vars, tmpl string, args ...any) {
	l.log(ctx, slog.LevelDebug, vars, tmpl, args)
}

// Info 以 INFO 级别记录。
func (l *Logger) Info(ctx context.Context, vars formati.Vars, tmpl string, args ...any) {
	l.log(ctx, slog.LevelInfo, vars, tmpl, args)
}

// Warn 以 WARN 级别记录。
func (l *Logger) Warn(ctx context.Context, vars formati.Vars, tmpl string, args ...any) {
	l.log(ctx, slog.LevelWarn, vars, tmpl, args)
}

// Error 以 ERROR 级别记录。
func (l *Logger) Error(ctx context.Context, vars formati.Vars, tmpl string, args ...any) {
	l.log(ctx, slog.LevelError, vars, tmpl, args)
}

// Log 以指定级别记录。
func (l *Logger) Log(ctx context.Context, level slog.Level, vars formati.Vars, tmpl string, args ...any) {
	l.log(ctx, level, vars, tmpl, args)
}

// log 必须由导出方法直接调用，以保证记录的调用位置正确。
func (l *Logger) log(ctx context.Context, level slog.Level, vars formati.Vars, tmpl string, args []any) {
	if ctx == nil {
		ctx = context.Background()
	}
	handler := l.logger.Handler()
	if !handler.Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(3, pcs[:]) // runtime.Callers, log, 导出方法

	msg, err := l.formatter.Message(vars, tmpl, args...)
	if err != nil {
		// 模板错误不输出残缺消息，改为一条 ERROR 记录
		r := slog.NewRecord(time.Now(), slog.LevelError, "formati: invalid log template", pcs[0])
		r.AddAttrs(
			slog.String("template", tmpl),
			slog.String("error", err.Error()),
		)
		_ = handler.Handle(ctx, r)
		return
	}

	r := slog.NewRecord(time.Now(), level, msg.Text, pcs[0])
	if l.exprAttrs {
		for i, expr := range msg.Expressions {
			r.AddAttrs(slog.Any(expr, msg.Values[i]))
		}
	}
	_ = handler.Handle(ctx, r)
}
