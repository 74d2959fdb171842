package formati

import (
	"fmt"
	"slices"

	"github.com/nobane/formati/pkg/eval"
	"github.com/nobane/formati/pkg/fmtengine"
	"github.com/nobane/formati/pkg/rewrite"
)

// Prepared 是已校验的模板，可并发渲染多次。
type Prepared struct {
	plan   *rewrite.Plan
	exprs  []*eval.Expr
	strict bool
}

// Message 是一次渲染的结果。
type Message struct {
	// Text 渲染后的文本。
	Text string
	// Template 原始模板。
	Template string
	// Expressions 提取的表达式，与 Values 一一对应。
	Expressions []string
	Values      []any
}

// Prepare 分析模板并编译其中的表达式。
//
// 花括号不平衡或表达式语法错误在这里返回，渲染时只会出现求值错误。
func (f *Formatter) Prepare(tmpl string) (*Prepared, error) {
	plan, err := f.Analyze(tmpl)
	if err != nil {
		return nil, err
	}

	exprs := make([]*eval.Expr, len(plan.Expressions))
	for i, src := range plan.Expressions {
		if exprs[i], err = eval.Compile(src); err != nil {
			return nil, fmt.Errorf("formati: %w", err)
		}
	}

	return &Prepared{plan: plan, exprs: exprs, strict: f.opts.strict}, nil
}

// Template 返回原始模板。
func (p *Prepared) Template() string {
	return p.plan.Source
}

// Expressions 返回提取的表达式（副本）。
func (p *Prepared) Expressions() []string {
	return slices.Clone(p.plan.Expressions)
}

// Render 渲染模板。
func (p *Prepared) Render(vars Vars, args ...any) (string, error) {
	msg, err := p.Message(vars, args...)
	if err != nil {
		return "", err
	}

	return msg.Text, nil
}

// Values 在 vars 中对提取的表达式求值。
func (p *Prepared) Values(vars Vars) ([]any, error) {
	values := make([]any, len(p.exprs))
	for i, e := range p.exprs {
		v, err := e.Eval(vars)
		if err != nil {
			return nil, fmt.Errorf("formati: %w", err)
		}
		values[i] = v
	}

	return values, nil
}

// Message 渲染模板并返回表达式取值。
func (p *Prepared) Message(vars Vars, args ...any) (*Message, error) {
	values, err := p.Values(vars)
	if err != nil {
		return nil, err
	}

	// 参数顺序：显式位置参数、表达式值、命名参数
	var positional, named []any
	for _, a := range args {
		if _, ok := a.(fmtengine.NamedArg); ok {
			named = append(named, a)
			continue
		}
		positional = append(positional, a)
	}
	// 缺少的位置参数会误取到追加在后面的表达式值
	if len(positional) < p.plan.Positional {
		return nil, fmt.Errorf("formati: %w: template uses %d positional arguments, got %d",
			fmtengine.ErrArgumentIndex, p.plan.Positional, len(positional))
	}
	combined := make([]any, 0, len(args)+len(values))
	combined = append(combined, positional...)
	combined = append(combined, values...)
	combined = append(combined, named...)

	engine := fmtengine.Engine{
		Lookup: func(name string) (any, bool) {
			v, ok := vars[name]
			return v, ok
		},
		KeepUnknown: !p.strict,
	}
	text, err := engine.Format(p.plan.Rewrite(len(positional)), combined...)
	if err != nil {
		return nil, fmt.Errorf("formati: %w", err)
	}

	return &Message{
		Text:        text,
		Template:    p.plan.Source,
		Expressions: slices.Clone(p.plan.Expressions),
		Values:      values,
	}, nil
}
