package rewrite

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Placeholder 是占位符内部文本拆分后的结果。
type Placeholder struct {
	// Expr 为说明符之前的表达式部分（已去除首尾空白）。
	Expr string
	// Spec 为说明符部分，包含开头的 ":"；没有说明符时为空串。
	Spec string
}

// Simple 报告表达式部分是否可由格式化引擎直接处理。
func (p Placeholder) Simple() bool {
	return IsSimple(p.Expr)
}

// ParsePlaceholder 在第一个顶层 ":" 处拆分占位符内部文本。
//
// 位于 ()、[]、{} 内部或字符串字面量内部的 ":" 不视为分隔符。
// 找不到分隔符时整个文本都是表达式。"{x::>5}" 中第二个 ":" 是填充字符。
func ParsePlaceholder(inner string) Placeholder {
	if n := specStart(inner); n >= 0 {
		return Placeholder{
			Expr: strings.TrimSpace(inner[:n]),
			Spec: inner[n:],
		}
	}

	return Placeholder{Expr: strings.TrimSpace(inner)}
}

// specStart 返回说明符分隔符的字节位置，不存在时返回 -1。
func specStart(s string) int {
	depth := 0
	var quote byte
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]

		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case ch == '\\' && quote != '`':
				escaped = true
			case ch == quote:
				quote = 0
			}
			continue
		}

		switch ch {
		case '"', '\'', '`':
			quote = ch
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			// 表达式本身不平衡时不报错，交给下游求值
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

// IsSimple 报告表达式是否为"简单"形式：空串、十进制整数或单个标识符。
//
// 简单表达式原样保留在模板中，不进入注册表。
func IsSimple(expr string) bool {
	if expr == "" {
		return true
	}

	return isDecimal(expr) || isIdentifier(expr)
}

func isDecimal(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return s != ""
}

func isIdentifier(s string) bool {
	for i, r := range s {
		if r == utf8.RuneError {
			return false
		}
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}

		return false
	}

	return s != ""
}
