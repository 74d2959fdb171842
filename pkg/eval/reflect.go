package eval

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var errorType = reflect.TypeFor[error]()

// indirect 跟随指针与接口直到具体值；遇到 nil 返回无效值。
func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}

	return rv
}

// candidates 返回 name 可能对应的 Go 标识符：原名、首字母大写、snake_case 转 CamelCase。
func candidates(name string) []string {
	out := []string{name}
	add := func(s string) {
		for _, c := range out {
			if c == s {
				return
			}
		}
		out = append(out, s)
	}

	add(upperFirst(name))
	if strings.Contains(name, "_") {
		var b strings.Builder
		for part := range strings.SplitSeq(name, "_") {
			b.WriteString(upperFirst(part))
		}
		if b.Len() > 0 {
			add(b.String())
		}
	}

	return out
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}

	return string(unicode.ToUpper(r)) + s[n:]
}

// foldName 用于大小写不敏感的兜底匹配，如 "user_id" 与 "UserID"。
func foldName(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}

// member 解析 x.name。
func member(x any, name string) (any, error) {
	rv := indirect(reflect.ValueOf(x))
	if !rv.IsValid() {
		return nil, fmt.Errorf("%w: %s on nil", ErrNoMember, name)
	}

	positional := name != "" && isDigit(name[0])

	switch rv.Kind() {
	case reflect.Map:
		if v, ok := mapMember(rv, name); ok {
			return v, nil
		}
	case reflect.Struct:
		if positional {
			return fieldByPosition(rv, name)
		}
		if f, ok := structField(rv, name); ok {
			return f.Interface(), nil
		}
	case reflect.Slice, reflect.Array, reflect.String:
		if positional {
			n, err := strconv.Atoi(name)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrIndex, name)
			}
			return indexSequence(rv, n)
		}
	default:
	}

	// 无参方法作为属性读取
	if m, ok := method(x, name); ok && m.Type().NumIn() == 0 {
		return call(m, name, nil)
	}

	return nil, fmt.Errorf("%w: %s on %s", ErrNoMember, name, describe(x))
}

func mapMember(rv reflect.Value, name string) (any, bool) {
	kt := rv.Type().Key()
	var key reflect.Value
	switch kt.Kind() {
	case reflect.String:
		key = reflect.ValueOf(name).Convert(kt)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(name, 10, 64)
		if err != nil {
			return nil, false
		}
		key = reflect.New(kt).Elem()
		key.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(name, 10, 64)
		if err != nil {
			return nil, false
		}
		key = reflect.New(kt).Elem()
		key.SetUint(n)
	case reflect.Interface:
		key = reflect.ValueOf(name)
	default:
		return nil, false
	}

	v := rv.MapIndex(key)
	if !v.IsValid() {
		return nil, false
	}

	return v.Interface(), true
}

func fieldByPosition(rv reflect.Value, name string) (any, error) {
	n, err := strconv.Atoi(name)
	if err != nil || n >= rv.NumField() {
		return nil, fmt.Errorf("%w: field %s of %s", ErrIndex, name, rv.Type())
	}
	if !rv.Type().Field(n).IsExported() {
		return nil, fmt.Errorf("%w: field %s of %s is unexported", ErrNoMember, name, rv.Type())
	}

	return rv.Field(n).Interface(), nil
}

// structField 依次按候选名、json tag、大小写不敏感匹配导出字段。
func structField(rv reflect.Value, name string) (reflect.Value, bool) {
	t := rv.Type()
	for _, c := range candidates(name) {
		if f, ok := t.FieldByName(c); ok && f.IsExported() {
			return rv.FieldByIndex(f.Index), true
		}
	}

	folded := foldName(name)
	var fallback []int
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag == name {
			return rv.Field(i), true
		}
		if fallback == nil && foldName(f.Name) == folded {
			fallback = f.Index
		}
	}
	if fallback != nil {
		return rv.FieldByIndex(fallback), true
	}

	return reflect.Value{}, false
}

// method 在值与指针接收者上查找方法。
func method(x any, name string) (reflect.Value, bool) {
	rv := reflect.ValueOf(x)
	if !rv.IsValid() {
		return reflect.Value{}, false
	}

	receivers := []reflect.Value{rv}
	if rv.Kind() != reflect.Pointer && rv.Kind() != reflect.Interface {
		p := reflect.New(rv.Type())
		p.Elem().Set(rv)
		receivers = append(receivers, p)
	} else if e := indirect(rv); e.IsValid() {
		receivers = append(receivers, e)
	}

	for _, recv := range receivers {
		for _, c := range candidates(name) {
			if m := recv.MethodByName(c); m.IsValid() {
				return m, true
			}
		}
	}

	folded := foldName(name)
	for _, recv := range receivers {
		t := recv.Type()
		for i := range t.NumMethod() {
			if foldName(t.Method(i).Name) == folded {
				return recv.Method(i), true
			}
		}
	}

	return reflect.Value{}, false
}

// index 解析 x[idx]。
func index(x, idx any) (any, error) {
	rv := indirect(reflect.ValueOf(x))
	if !rv.IsValid() {
		return nil, fmt.Errorf("%w: index of nil", ErrIndex)
	}

	switch rv.Kind() {
	case reflect.Map:
		key, err := convertArg(idx, rv.Type().Key())
		if err != nil {
			return nil, fmt.Errorf("%w: map key: %w", ErrIndex, err)
		}
		v := rv.MapIndex(key)
		if !v.IsValid() {
			return nil, fmt.Errorf("%w: key %v not found", ErrIndex, idx)
		}
		return v.Interface(), nil
	case reflect.Slice, reflect.Array, reflect.String:
		n, ok := toInt(idx)
		if !ok {
			return nil, fmt.Errorf("%w: index %v is not an integer", ErrIndex, idx)
		}
		return indexSequence(rv, n)
	case reflect.Struct:
		if n, ok := toInt(idx); ok {
			return fieldByPosition(rv, strconv.Itoa(n))
		}
		if s, ok := idx.(string); ok {
			return member(x, s)
		}
	default:
	}

	return nil, fmt.Errorf("%w: cannot index %s", ErrUnsupported, describe(x))
}

// indexSequence 对切片、数组取元素；对字符串取第 n 个字符。
func indexSequence(rv reflect.Value, n int) (any, error) {
	if rv.Kind() == reflect.String {
		s := rv.String()
		i := 0
		for _, r := range s {
			if i == n {
				return string(r), nil
			}
			i++
		}
		return nil, fmt.Errorf("%w: %d with length %d", ErrIndex, n, i)
	}

	if n < 0 || n >= rv.Len() {
		return nil, fmt.Errorf("%w: %d with length %d", ErrIndex, n, rv.Len())
	}

	return rv.Index(n).Interface(), nil
}

func toInt(v any) (int, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint()), true //nolint:gosec // index values
	default:
		return 0, false
	}
}

// callValue 调用 v（函数值）。
func callValue(v any, name string, args []any) (any, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNotCallable, name, describe(v))
	}

	return call(rv, name, args)
}

// call 转换参数后调用函数；最后一个返回值为非 nil error 时作为求值错误。
func call(fn reflect.Value, name string, args []any) (any, error) {
	t := fn.Type()
	numIn := t.NumIn()
	if t.IsVariadic() {
		if len(args) < numIn-1 {
			return nil, fmt.Errorf("%w: %s wants at least %d arguments, got %d", ErrSyntax, name, numIn-1, len(args))
		}
	} else if len(args) != numIn {
		return nil, fmt.Errorf("%w: %s wants %d arguments, got %d", ErrSyntax, name, numIn, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		var pt reflect.Type
		if t.IsVariadic() && i >= numIn-1 {
			pt = t.In(numIn - 1).Elem()
		} else {
			pt = t.In(i)
		}
		v, err := convertArg(a, pt)
		if err != nil {
			return nil, fmt.Errorf("%s argument %d: %w", name, i, err)
		}
		in[i] = v
	}

	out := fn.Call(in)
	if n := len(out); n > 0 && t.Out(n-1).Implements(errorType) {
		if err, _ := out[n-1].Interface().(error); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out = out[:n-1]
	}
	if len(out) == 0 {
		return nil, nil
	}

	return out[0].Interface(), nil
}

func convertArg(a any, pt reflect.Type) (reflect.Value, error) {
	if a == nil {
		switch pt.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(pt), nil
		default:
			return reflect.Value{}, fmt.Errorf("%w: nil for %s", ErrUnsupported, pt)
		}
	}

	v := reflect.ValueOf(a)
	if v.Type().AssignableTo(pt) {
		return v, nil
	}
	// 字符串与数值之间不做隐式转换，避免 int 转成单字符字符串
	if (v.Kind() == reflect.String) != (pt.Kind() == reflect.String) && pt.Kind() != reflect.Interface {
		return reflect.Value{}, fmt.Errorf("%w: cannot use %T as %s", ErrUnsupported, a, pt)
	}
	if v.Type().ConvertibleTo(pt) {
		return v.Convert(pt), nil
	}

	return reflect.Value{}, fmt.Errorf("%w: cannot use %T as %s", ErrUnsupported, a, pt)
}

var builtins = map[string]func(args []any) (any, error){
	"len": builtinLen,
}

func builtinLen(args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: len wants 1 argument, got %d", ErrSyntax, len(args))
	}
	rv := indirect(reflect.ValueOf(args[0]))
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return rv.Len(), nil
	default:
		return nil, fmt.Errorf("%w: len of %s", ErrUnsupported, describe(args[0]))
	}
}

func describe(x any) string {
	if x == nil {
		return "nil"
	}

	return reflect.TypeOf(x).String()
}
