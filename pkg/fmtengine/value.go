package fmtengine

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

type numKind int

const (
	notNumber numKind = iota
	signedInt
	unsignedInt
	floatNum
)

func classify(v any) (numKind, reflect.Value) {
	if v == nil {
		return notNumber, reflect.Value{}
	}
	rv := reflect.ValueOf(v)
	// 实现了 Stringer 的数值类型按文本处理
	if _, ok := v.(fmt.Stringer); ok {
		return notNumber, rv
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return signedInt, rv
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return unsignedInt, rv
	case reflect.Float32, reflect.Float64:
		return floatNum, rv
	default:
		return notNumber, rv
	}
}

func asInt(v any) (int64, bool) {
	kind, rv := classify(v)
	switch kind {
	case signedInt:
		return rv.Int(), true
	case unsignedInt:
		return int64(rv.Uint()), true //nolint:gosec // count arguments are small
	case floatNum:
		f := rv.Float()
		if f == float64(int64(f)) {
			return int64(f), true
		}
	case notNumber:
		if s, ok := v.(string); ok {
			n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			return n, err == nil
		}
	}

	return 0, false
}

// formatValue 按说明符格式化单个值并处理填充对齐。
func formatValue(v any, sp spec) (string, error) {
	kind, rv := classify(v)

	var body string
	switch sp.verb {
	case '?':
		body = debugString(v, kind, rv, sp)
	case 'x', 'X', 'o', 'b':
		body = radixString(v, kind, rv, sp)
	case 'e', 'E':
		s, err := expString(v, kind, rv, sp)
		if err != nil {
			return "", err
		}
		body = s
	default:
		body = displayString(v, kind, rv, sp)
	}

	numeric := kind != notNumber
	if numeric && sp.sign == '+' && !strings.HasPrefix(body, "-") {
		body = "+" + body
	}

	return pad(body, numeric, sp), nil
}

func displayString(v any, kind numKind, rv reflect.Value, sp spec) string {
	switch kind {
	case floatNum:
		prec := -1
		if sp.hasPrec {
			prec = sp.prec
		}
		return strconv.FormatFloat(rv.Float(), 'f', prec, floatBits(rv))
	case signedInt:
		return strconv.FormatInt(rv.Int(), 10)
	case unsignedInt:
		return strconv.FormatUint(rv.Uint(), 10)
	case notNumber:
	}

	s := fmt.Sprint(v)
	if sp.hasPrec {
		s = truncateRunes(s, sp.prec)
	}

	return s
}

func debugString(v any, kind numKind, rv reflect.Value, sp spec) string {
	if kind == floatNum && sp.hasPrec {
		return displayString(v, kind, rv, sp)
	}
	if sp.alt {
		return fmt.Sprintf("%#v", v)
	}
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}

	return fmt.Sprintf("%+v", v)
}

func radixString(v any, kind numKind, rv reflect.Value, sp spec) string {
	base := 16
	prefix := "0x"
	switch sp.verb {
	case 'o':
		base, prefix = 8, "0o"
	case 'b':
		base, prefix = 2, "0b"
	}

	var digits string
	neg := false
	switch kind {
	case signedInt:
		n := rv.Int()
		if n < 0 {
			neg = true
			digits = strconv.FormatUint(uint64(-n), base) //nolint:gosec // magnitude of a negative int64
		} else {
			digits = strconv.FormatInt(n, base)
		}
	case unsignedInt:
		digits = strconv.FormatUint(rv.Uint(), base)
	case floatNum, notNumber:
		// 非整数交给 fmt 处理（例如字符串的十六进制字节）
		return fmt.Sprintf("%"+string(sp.verb), v)
	}

	if sp.verb == 'X' {
		digits = strings.ToUpper(digits)
	}
	if sp.alt {
		digits = prefix + digits
	}
	if neg {
		digits = "-" + digits
	}

	return digits
}

// expString 输出科学计数法，指数不带 "+" 与前导零（如 1.2345e3）。
func expString(v any, kind numKind, rv reflect.Value, sp spec) (string, error) {
	var f float64
	bits := 64
	switch kind {
	case floatNum:
		f = rv.Float()
		bits = floatBits(rv)
	case signedInt:
		f = float64(rv.Int())
	case unsignedInt:
		f = float64(rv.Uint())
	case notNumber:
		return "", fmt.Errorf("fmtengine: %w: {:%c} requires a number, got %T", ErrInvalidSpec, sp.verb, v)
	}

	prec := -1
	if sp.hasPrec {
		prec = sp.prec
	}
	s := strconv.FormatFloat(f, 'e', prec, bits)

	mant, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s, nil
	}
	sign := ""
	if strings.HasPrefix(exp, "-") {
		sign = "-"
	}
	exp = strings.TrimLeft(strings.TrimLeft(exp, "+-"), "0")
	if exp == "" {
		exp = "0"
	}

	marker := "e"
	if sp.verb == 'E' {
		marker = "E"
	}

	return mant + marker + sign + exp, nil
}

func floatBits(rv reflect.Value) int {
	if rv.Kind() == reflect.Float32 {
		return 32
	}

	return 64
}

func truncateRunes(s string, n int) string {
	if n < 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}

	return s
}

// pad 按显示宽度补齐。数值默认右对齐，其余默认左对齐。
func pad(s string, numeric bool, sp spec) string {
	if !sp.hasWidth {
		return s
	}
	w := runewidth.StringWidth(s)
	if w >= sp.width {
		return s
	}
	missing := sp.width - w

	// "0" 标志：符号与进制前缀之后补零，忽略填充字符与对齐
	if sp.zero && numeric {
		head := ""
		if s != "" && (s[0] == '+' || s[0] == '-') {
			head, s = s[:1], s[1:]
		}
		if sp.alt && len(s) > 2 && s[0] == '0' && strings.ContainsRune("xXob", rune(s[1])) {
			head, s = head+s[:2], s[2:]
		}

		return head + strings.Repeat("0", missing) + s
	}

	fillWidth := runewidth.RuneWidth(sp.fill)
	if fillWidth < 1 {
		fillWidth = 1
	}
	fill := func(cells int) string {
		return strings.Repeat(string(sp.fill), cells/fillWidth)
	}

	align := sp.align
	if align == 0 {
		align = '<'
		if numeric {
			align = '>'
		}
	}

	switch align {
	case '>':
		return fill(missing) + s
	case '^':
		left := missing / 2
		return fill(left) + s + fill(missing-left)
	default:
		return s + fill(missing)
	}
}
