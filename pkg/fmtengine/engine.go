package fmtengine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nobane/formati/pkg/rewrite"
)

// Sentinel errors for programmatic error handling.
var (
	ErrArgumentIndex = errors.New("argument index out of range")
	ErrUnknownName   = errors.New("unknown argument name")
	ErrInvalidSpec   = errors.New("invalid format specifier")
	ErrCompound      = errors.New("compound expression in placeholder")
)

// NamedArg 是按名称引用的参数，可出现在参数列表的任意位置，不占用位置下标。
type NamedArg struct {
	Name  string
	Value any
}

// Named 构造一个命名参数。
func Named(name string, value any) NamedArg {
	return NamedArg{Name: name, Value: value}
}

// LookupFunc 为裸名称占位符提供兜底取值。
type LookupFunc func(name string) (any, bool)

// Engine 按位置、名称替换 "{...}" 占位符。
//
// 零值可用：所有名称必须来自 [NamedArg]，未知名称返回错误。
type Engine struct {
	// Lookup 在命名参数中找不到名称时调用。
	Lookup LookupFunc
	// KeepUnknown 为 true 时未知名称原样输出占位符而非报错。
	KeepUnknown bool
}

var unescaper = strings.NewReplacer("{{", "{", "}}", "}")

// Format 使用零值 [Engine] 格式化模板。
func Format(template string, args ...any) (string, error) {
	var e Engine
	return e.Format(template, args...)
}

// Format 格式化模板。
//
// 支持的占位符：
//   - {} - 下一个隐式位置参数（仅 {} 推进计数）
//   - {N} - 第 N 个位置参数
//   - {name} - 命名参数，其次 Lookup
//   - {X:spec} - 带说明符，说明符内可嵌套 {...}
//
// "{{" 与 "}}" 输出为 "{" 与 "}"。
func (e *Engine) Format(template string, args ...any) (string, error) {
	segments, err := rewrite.Scan(template)
	if err != nil {
		return "", err
	}

	st := newState(e, args)
	var buf strings.Builder
	buf.Grow(len(template))
	if err := st.render(&buf, segments); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// state 保存一次格式化的参数与隐式计数。
type state struct {
	engine     *Engine
	positional []any
	named      map[string]any
	next       int
}

func newState(e *Engine, args []any) *state {
	st := &state{engine: e}
	for _, arg := range args {
		if na, ok := arg.(NamedArg); ok {
			if st.named == nil {
				st.named = make(map[string]any)
			}
			st.named[na.Name] = na.Value
			continue
		}
		st.positional = append(st.positional, arg)
	}

	return st
}

func (st *state) render(buf *strings.Builder, segments []rewrite.Segment) error {
	for _, seg := range segments {
		if seg.Kind == rewrite.SegmentLiteral {
			buf.WriteString(unescaper.Replace(seg.Text))
			continue
		}
		if err := st.placeholder(buf, seg); err != nil {
			return err
		}
	}

	return nil
}

func (st *state) placeholder(buf *strings.Builder, seg rewrite.Segment) error {
	ph := rewrite.ParsePlaceholder(seg.Inner)
	if !ph.Simple() {
		return fmt.Errorf("fmtengine: %w: %q", ErrCompound, ph.Expr)
	}

	specText := strings.TrimPrefix(ph.Spec, ":")
	nested := strings.ContainsRune(specText, '{')

	var sp spec
	var err error
	if !nested {
		if sp, err = parseSpec(specText); err != nil {
			return fmt.Errorf("fmtengine: %w", err)
		}
	}

	// ".*" 先消耗一个隐式参数作为精度，再取值
	if !nested && sp.precStar {
		if sp.prec, err = st.implicitInt(); err != nil {
			return err
		}
	}

	value, found, err := st.resolve(ph.Expr)
	if err != nil {
		return err
	}
	if !found {
		buf.WriteString(seg.Text)
		return nil
	}

	if nested {
		expanded, err := st.expandSpec(specText)
		if err != nil {
			return err
		}
		if sp, err = parseSpec(expanded); err != nil {
			return fmt.Errorf("fmtengine: %w", err)
		}
		if sp.precStar {
			if sp.prec, err = st.implicitInt(); err != nil {
				return err
			}
		}
	}

	if err := st.resolveCounts(&sp); err != nil {
		return err
	}

	text, err := formatValue(value, sp)
	if err != nil {
		return err
	}
	buf.WriteString(text)

	return nil
}

// resolve 按占位符表达式取值；found 为 false 表示需要原样保留。
func (st *state) resolve(expr string) (any, bool, error) {
	switch {
	case expr == "":
		if st.next >= len(st.positional) {
			return nil, false, fmt.Errorf("fmtengine: %w: implicit argument %d of %d", ErrArgumentIndex, st.next, len(st.positional))
		}
		v := st.positional[st.next]
		st.next++

		return v, true, nil
	case expr[0] >= '0' && expr[0] <= '9':
		v, err := st.index(expr)
		return v, err == nil, err
	default:
		return st.name(expr)
	}
}

func (st *state) index(expr string) (any, error) {
	n, err := strconv.Atoi(expr)
	if err != nil || n < 0 || n >= len(st.positional) {
		return nil, fmt.Errorf("fmtengine: %w: {%s} with %d arguments", ErrArgumentIndex, expr, len(st.positional))
	}

	return st.positional[n], nil
}

func (st *state) name(name string) (any, bool, error) {
	if v, ok := st.named[name]; ok {
		return v, true, nil
	}
	if st.engine.Lookup != nil {
		if v, ok := st.engine.Lookup(name); ok {
			return v, true, nil
		}
	}
	if st.engine.KeepUnknown {
		return nil, false, nil
	}

	return nil, false, fmt.Errorf("fmtengine: %w: %q", ErrUnknownName, name)
}

func (st *state) implicitInt() (int, error) {
	v, _, err := st.resolve("")
	if err != nil {
		return 0, err
	}

	return toCount(v)
}

// resolveCounts 解析 width$ / precision$ 引用。
func (st *state) resolveCounts(sp *spec) error {
	var err error
	if sp.widthRef != "" {
		if sp.width, err = st.count(sp.widthRef); err != nil {
			return err
		}
	}
	if sp.precRef != "" {
		if sp.prec, err = st.count(sp.precRef); err != nil {
			return err
		}
	}

	return nil
}

func (st *state) count(ref string) (int, error) {
	var v any
	var err error
	if ref[0] >= '0' && ref[0] <= '9' {
		v, err = st.index(ref)
	} else {
		var found bool
		v, found, err = st.name(ref)
		if err == nil && !found {
			err = fmt.Errorf("fmtengine: %w: %q", ErrUnknownName, ref)
		}
	}
	if err != nil {
		return 0, err
	}

	return toCount(v)
}

// expandSpec 以同一参数状态渲染说明符中嵌套的占位符。
func (st *state) expandSpec(specText string) (string, error) {
	segments, err := rewrite.Scan(specText)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	if err := st.render(&buf, segments); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func toCount(v any) (int, error) {
	n, ok := asInt(v)
	if !ok || n < 0 {
		return 0, fmt.Errorf("fmtengine: %w: count argument %v is not a non-negative integer", ErrInvalidSpec, v)
	}

	return int(n), nil
}
