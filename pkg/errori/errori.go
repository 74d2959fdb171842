package errori

import (
	"fmt"

	"github.com/nobane/formati/pkg/formati"
)

var formatter = formati.New()

// Error 是以模板生成消息的错误。
type Error struct {
	// Msg 渲染后的消息。
	Msg string
	// Template 原始模板。
	Template string
	// Cause 被包装的错误，可为 nil。
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Msg
	}

	return e.Msg + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New 以模板创建错误。
//
//	return errori.New(vars, "user {user.id} not found")
//
// 模板本身非法时返回描述模板问题的错误，而不是残缺的消息。
func New(vars formati.Vars, tmpl string, args ...any) error {
	msg, err := formatter.Format(vars, tmpl, args...)
	if err != nil {
		return fmt.Errorf("errori: %w", err)
	}

	return &Error{Msg: msg, Template: tmpl}
}

// Wrap 以模板包装 err；err 为 nil 时返回 nil。
func Wrap(err error, vars formati.Vars, tmpl string, args ...any) error {
	if err == nil {
		return nil
	}

	msg, ferr := formatter.Format(vars, tmpl, args...)
	if ferr != nil {
		return fmt.Errorf("errori: %w (wrapping: %w)", ferr, err)
	}

	return &Error{Msg: msg, Template: tmpl, Cause: err}
}

// Ensure 在 cond 不成立时返回 [New] 创建的错误，否则返回 nil。
//
// 条件成立时不渲染模板。
func Ensure(cond bool, vars formati.Vars, tmpl string, args ...any) error {
	if cond {
		return nil
	}

	return New(vars, tmpl, args...)
}
