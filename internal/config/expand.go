package config

import (
	"fmt"
	"os"
	"strings"
)

// ExpandEnv 展开配置文本中的环境变量引用。
//
// 支持的语法：
//   - ${VAR} - 未设置时为空
//   - ${VAR:-default} - 未设置或为空时使用 default，default 可嵌套引用
//   - ${VAR-default} - 仅未设置时使用 default
//   - ${VAR:?msg} - 未设置或为空时返回错误
//   - $$ - 字面量 "$"
//
// 不识别 $VAR 形式；无法解析的 ${...} 原样保留，
// 因此配置中的格式模板（如 "{user.id}"）不受影响。
func ExpandEnv(text string) (string, error) {
	return expandWith(text, os.LookupEnv)
}

func expandWith(text string, lookup func(string) (string, bool)) (string, error) {
	if !strings.Contains(text, "$") {
		return text, nil
	}

	var buf strings.Builder
	buf.Grow(len(text))
	for i := 0; i < len(text); {
		if text[i] != '$' || i+1 >= len(text) {
			buf.WriteByte(text[i])
			i++
			continue
		}
		switch text[i+1] {
		case '$':
			buf.WriteByte('$')
			i += 2
			continue
		case '{':
		default:
			buf.WriteByte('$')
			i++
			continue
		}

		end := closingBrace(text, i+2)
		if end == -1 {
			buf.WriteString(text[i:])
			break
		}

		expanded, ok, err := expandParam(text[i+2:end], lookup)
		if err != nil {
			return "", err
		}
		if ok {
			buf.WriteString(expanded)
		} else {
			buf.WriteString(text[i : end+1])
		}
		i = end + 1
	}

	return buf.String(), nil
}

// expandParam 展开 "${" 与 "}" 之间的内容；ok 为 false 表示不是合法引用。
func expandParam(expr string, lookup func(string) (string, bool)) (string, bool, error) {
	n := 0
	for n < len(expr) && isEnvNameChar(expr[n], n == 0) {
		n++
	}
	if n == 0 {
		return "", false, nil
	}

	name, rest := expr[:n], expr[n:]
	val, set := lookup(name)

	switch {
	case rest == "":
		return val, true, nil
	case strings.HasPrefix(rest, ":-"):
		if set && val != "" {
			return val, true, nil
		}
		def, err := expandWith(rest[2:], lookup)
		return def, err == nil, err
	case strings.HasPrefix(rest, ":?"):
		if set && val != "" {
			return val, true, nil
		}
		msg := rest[2:]
		if msg == "" {
			msg = "parameter null or not set"
		}
		return "", false, fmt.Errorf("config: %s: %s", name, msg)
	case rest[0] == '-':
		if set {
			return val, true, nil
		}
		def, err := expandWith(rest[1:], lookup)
		return def, err == nil, err
	default:
		return "", false, nil
	}
}

func isEnvNameChar(ch byte, first bool) bool {
	if ch == '_' || (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') {
		return true
	}

	return !first && ch >= '0' && ch <= '9'
}

// closingBrace 查找与 "${" 匹配的 "}"，支持嵌套的 "${...}"。
func closingBrace(text string, start int) int {
	depth := 0
	for i := start; i < len(text); i++ {
		switch {
		case text[i] == '$' && i+1 < len(text) && text[i+1] == '{':
			depth++
			i++
		case text[i] == '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}

	return -1
}
