package fmtengine

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// spec 是解析后的格式说明符。
//
// 语法：[[fill]align][sign]['#']['0'][width]['.' precision][type]
type spec struct {
	fill     rune
	align    byte // 0 表示默认对齐
	sign     byte
	alt      bool
	zero     bool
	width    int
	hasWidth bool
	widthRef string // "N$" 或 "name$" 引用的参数
	prec     int
	hasPrec  bool
	precRef  string
	precStar bool
	verb     byte // 0 表示 Display
}

func isAlign(r rune) bool {
	return r == '<' || r == '^' || r == '>'
}

// parseSpec 解析不含前导 ":" 的说明符文本。
func parseSpec(s string) (spec, error) {
	sp := spec{fill: ' '}
	i := 0

	// [[fill]align]
	if first, n := utf8.DecodeRuneInString(s); n > 0 {
		if second, m := utf8.DecodeRuneInString(s[n:]); m > 0 && isAlign(second) {
			sp.fill = first
			sp.align = byte(second)
			i = n + m
		} else if isAlign(first) {
			sp.align = byte(first)
			i = n
		}
	}

	// [sign]
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		sp.sign = s[i]
		i++
	}

	// ['#']
	if i < len(s) && s[i] == '#' {
		sp.alt = true
		i++
	}

	// ['0']，"0$" 表示引用第 0 个参数而非补零
	if i < len(s) && s[i] == '0' && !(i+1 < len(s) && s[i+1] == '$') {
		sp.zero = true
		i++
	}

	// [width]
	if n, ref, lit, next, ok := parseCount(s, i); ok {
		sp.hasWidth = true
		sp.width = n
		if !lit {
			sp.widthRef = ref
		}
		i = next
	}

	// ['.' precision]
	if i < len(s) && s[i] == '.' {
		i++
		sp.hasPrec = true
		switch {
		case i < len(s) && s[i] == '*':
			sp.precStar = true
			i++
		default:
			n, ref, lit, next, ok := parseCount(s, i)
			if !ok {
				return sp, fmt.Errorf("%w: missing precision in %q", ErrInvalidSpec, s)
			}
			sp.prec = n
			if !lit {
				sp.precRef = ref
			}
			i = next
		}
	}

	// [type]
	switch rest := s[i:]; rest {
	case "":
	case "?", "x?", "X?":
		sp.verb = '?'
	case "x", "X", "o", "b", "e", "E":
		sp.verb = rest[0]
	default:
		return sp, fmt.Errorf("%w: unknown format type %q in %q", ErrInvalidSpec, rest, s)
	}

	return sp, nil
}

// parseCount 读取整数或 "arg$" 形式的参数引用。
//
// 返回值 lit 为 true 时 n 有效，否则 ref 为引用的参数名或下标。
func parseCount(s string, i int) (n int, ref string, lit bool, next int, ok bool) {
	j := i
	for j < len(s) && (s[j] == '_' || isASCIIAlnum(s[j])) {
		j++
	}
	if j == i {
		return 0, "", false, i, false
	}

	word := s[i:j]
	if j < len(s) && s[j] == '$' {
		return 0, word, false, j + 1, true
	}

	// 非引用时只接受纯数字，其余字符交给类型解析
	k := i
	for k < j && s[k] >= '0' && s[k] <= '9' {
		k++
	}
	if k == i {
		return 0, "", false, i, false
	}
	v, err := strconv.Atoi(s[i:k])
	if err != nil {
		return 0, "", false, i, false
	}

	return v, "", true, k, true
}

func isASCIIAlnum(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}
