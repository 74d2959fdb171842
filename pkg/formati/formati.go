package formati

import (
	"fmt"

	"github.com/nobane/formati/pkg/eval"
	"github.com/nobane/formati/pkg/fmtengine"
	"github.com/nobane/formati/pkg/rewrite"
)

// Vars 是模板中表达式与裸名称可见的变量。
type Vars = eval.Scope

// NamedArg 是命名参数，见 [Named]。
type NamedArg = fmtengine.NamedArg

// Named 构造命名参数，可与位置参数混合传入。
func Named(name string, value any) NamedArg {
	return fmtengine.Named(name, value)
}

// Formatter 分析、求值并格式化模板。零值不可用，使用 [New] 创建。
type Formatter struct {
	opts options
}

// New 创建 Formatter。
func New(opts ...Option) *Formatter {
	o := options{strict: true}
	for _, opt := range opts {
		opt(&o)
	}

	return &Formatter{opts: o}
}

var std = New()

// Format 使用默认 Formatter 格式化模板。
//
//	formati.Format(formati.Vars{"user": u}, "{user.name} has {}", n)
func Format(vars Vars, tmpl string, args ...any) (string, error) {
	return std.Format(vars, tmpl, args...)
}

// MustFormat 类似 [Format]，失败时 panic。
func MustFormat(vars Vars, tmpl string, args ...any) string {
	s, err := std.Format(vars, tmpl, args...)
	if err != nil {
		panic(fmt.Sprintf("formati: failed to format: %v", err))
	}

	return s
}

// Analyze 分析模板，启用缓存时复用结果。
func (f *Formatter) Analyze(tmpl string) (*rewrite.Plan, error) {
	var plan *rewrite.Plan
	var err error
	if f.opts.cache != nil {
		plan, err = f.opts.cache.Analyze(tmpl)
	} else {
		plan, err = rewrite.Analyze(tmpl)
	}
	if err != nil {
		return nil, fmt.Errorf("formati: %w", err)
	}

	if f.opts.logger != nil {
		f.opts.logger.Debug("Template analyzed",
			"template", tmpl,
			"rewritten", plan.Template,
			"expressions", plan.Expressions,
		)
	}

	return plan, nil
}

// Format 格式化模板。
//
// 显式位置参数保持原下标，提取的表达式值追加在其后，
// 裸名称先查 [Named] 参数，再查 vars。
func (f *Formatter) Format(vars Vars, tmpl string, args ...any) (string, error) {
	msg, err := f.Message(vars, tmpl, args...)
	if err != nil {
		return "", err
	}

	return msg.Text, nil
}

// Message 格式化模板并返回表达式及其取值。
func (f *Formatter) Message(vars Vars, tmpl string, args ...any) (*Message, error) {
	p, err := f.Prepare(tmpl)
	if err != nil {
		return nil, err
	}

	return p.Message(vars, args...)
}
