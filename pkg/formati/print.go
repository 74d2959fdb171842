package formati

import (
	"io"
	"os"
)

// Fprint 格式化模板并写入 w。
func Fprint(w io.Writer, vars Vars, tmpl string, args ...any) (int, error) {
	s, err := std.Format(vars, tmpl, args...)
	if err != nil {
		return 0, err
	}

	return io.WriteString(w, s)
}

// Fprintln 类似 [Fprint]，末尾追加换行。
func Fprintln(w io.Writer, vars Vars, tmpl string, args ...any) (int, error) {
	s, err := std.Format(vars, tmpl, args...)
	if err != nil {
		return 0, err
	}

	return io.WriteString(w, s+"\n")
}

// Print 格式化模板并写入标准输出。
func Print(vars Vars, tmpl string, args ...any) (int, error) {
	return Fprint(os.Stdout, vars, tmpl, args...)
}

// Println 类似 [Print]，末尾追加换行。
func Println(vars Vars, tmpl string, args ...any) (int, error) {
	return Fprintln(os.Stdout, vars, tmpl, args...)
}
