package formati

import (
	"log/slog"

	"github.com/nobane/formati/pkg/rewrite"
)

// options 格式化选项。
type options struct {
	cache  *rewrite.Cache
	strict bool
	logger *slog.Logger
}

// Option 配置 [Formatter]。
type Option func(*options)

// WithCache 复用模板分析结果。
//
// 多个 Formatter 可共享同一个缓存。
func WithCache(c *rewrite.Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithStrict 设置裸名称找不到时的行为。
//
// 默认 true：返回错误。false 时占位符原样保留（如 "{name}"）。
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithLogger 每次分析模板时输出一条 DEBUG 日志。
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
