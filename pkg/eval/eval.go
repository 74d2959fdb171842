package eval

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Sentinel errors for programmatic error handling.
var (
	ErrUndefined   = errors.New("undefined variable")
	ErrNoMember    = errors.New("no such field or method")
	ErrIndex       = errors.New("index out of range")
	ErrNotCallable = errors.New("value is not callable")
	ErrSyntax      = errors.New("syntax error")
	ErrUnsupported = errors.New("unsupported expression")
)

// Scope 是表达式求值时可见的变量。
type Scope map[string]any

// Expr 是编译后的表达式，可并发求值。
type Expr struct {
	src  string
	root node
}

// Compile 解析表达式。
func Compile(expr string) (*Expr, error) {
	src := strings.TrimSpace(expr)
	root, err := parse(src)
	if err != nil {
		return nil, fmt.Errorf("eval: %q: %w", src, err)
	}

	return &Expr{src: src, root: root}, nil
}

// MustCompile 类似 [Compile]，失败时 panic。
func MustCompile(expr string) *Expr {
	e, err := Compile(expr)
	if err != nil {
		panic(fmt.Sprintf("eval: failed to compile expression: %v", err))
	}

	return e
}

// String 返回表达式原文。
func (e *Expr) String() string {
	return e.src
}

// Eval 在 scope 中求值。
func (e *Expr) Eval(scope Scope) (any, error) {
	v, err := e.root.eval(scope)
	if err != nil {
		return nil, fmt.Errorf("eval: %q: %w", e.src, err)
	}

	return v, nil
}

// Evaluate 编译并求值表达式。
//
//	eval.Evaluate("user.name", eval.Scope{"user": u})
//	eval.Evaluate("items[1]", scope)
//	eval.Evaluate("user.DisplayName()", scope)
func Evaluate(expr string, scope Scope) (any, error) {
	e, err := Compile(expr)
	if err != nil {
		return nil, err
	}

	return e.Eval(scope)
}

func (n *literalNode) eval(Scope) (any, error) {
	return n.value, nil
}

func (n *identNode) eval(scope Scope) (any, error) {
	v, ok := scope[n.name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUndefined, n.name)
	}

	return v, nil
}

func (n *memberNode) eval(scope Scope) (any, error) {
	x, err := n.x.eval(scope)
	if err != nil {
		return nil, err
	}

	return member(x, n.name)
}

func (n *indexNode) eval(scope Scope) (any, error) {
	x, err := n.x.eval(scope)
	if err != nil {
		return nil, err
	}
	idx, err := n.index.eval(scope)
	if err != nil {
		return nil, err
	}

	return index(x, idx)
}

func (n *callNode) eval(scope Scope) (any, error) {
	args := make([]any, 0, len(n.args))
	for _, a := range n.args {
		v, err := a.eval(scope)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	switch fn := n.fn.(type) {
	case *memberNode:
		recv, err := fn.x.eval(scope)
		if err != nil {
			return nil, err
		}
		if m, ok := method(recv, fn.name); ok {
			return call(m, fn.name, args)
		}
		// 函数类型的字段或 map 值
		v, err := member(recv, fn.name)
		if err != nil {
			return nil, err
		}
		return callValue(v, fn.name, args)
	case *identNode:
		if v, ok := scope[fn.name]; ok {
			return callValue(v, fn.name, args)
		}
		if b, ok := builtins[fn.name]; ok {
			return b(args)
		}
		return nil, fmt.Errorf("%w: %s", ErrUndefined, fn.name)
	default:
		v, err := n.fn.eval(scope)
		if err != nil {
			return nil, err
		}
		return callValue(v, "expression", args)
	}
}

func (n *unaryNode) eval(scope Scope) (any, error) {
	x, err := n.x.eval(scope)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case '-':
		return negate(x)
	case '!':
		b, ok := x.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: '!' on %T", ErrUnsupported, x)
		}
		return !b, nil
	case '*':
		return deref(x)
	case '&':
		return addressOf(x), nil
	default:
		return nil, fmt.Errorf("%w: unary %q", ErrUnsupported, n.op)
	}
}

func negate(x any) (any, error) {
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		out := reflect.New(rv.Type()).Elem()
		out.SetInt(-rv.Int())
		return out.Interface(), nil
	case reflect.Float32, reflect.Float64:
		out := reflect.New(rv.Type()).Elem()
		out.SetFloat(-rv.Float())
		return out.Interface(), nil
	default:
		return nil, fmt.Errorf("%w: '-' on %T", ErrUnsupported, x)
	}
}

func deref(x any) (any, error) {
	rv := reflect.ValueOf(x)
	if rv.Kind() != reflect.Pointer {
		// 对非指针解引用视为恒等
		return x, nil
	}
	if rv.IsNil() {
		return nil, fmt.Errorf("%w: dereference of nil %s", ErrNoMember, rv.Type())
	}

	return rv.Elem().Interface(), nil
}

func addressOf(x any) any {
	if x == nil {
		return nil
	}
	rv := reflect.ValueOf(x)
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)

	return p.Interface()
}
