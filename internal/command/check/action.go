package check

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/nobane/formati/internal/command"
	"github.com/nobane/formati/pkg/eval"
	"github.com/nobane/formati/pkg/rewrite"
)

// ErrInvalid 表示至少有一个模板校验失败。
var ErrInvalid = errors.New("invalid templates")

// Problem 是一行模板的校验错误。
type Problem struct {
	File string
	Line int
	Err  error
}

func (p Problem) String() string {
	return fmt.Sprintf("%s:%d: %v", p.File, p.Line, p.Err)
}

func action(_ context.Context, cmd *cli.Command) error {
	if _, err := command.Load(cmd); err != nil {
		return err
	}

	out := command.Stdout(cmd)
	files := cmd.Args().Slice()

	var problems []Problem
	total := 0
	if len(files) == 0 {
		p, n, err := Check("<stdin>", command.Stdin(cmd))
		if err != nil {
			return err
		}
		problems, total = p, n
	}
	for _, name := range files {
		f, err := os.Open(name) //nolint:gosec // user supplied path
		if err != nil {
			return fmt.Errorf("open %s: %w", name, err)
		}
		p, n, err := Check(name, f)
		_ = f.Close()
		if err != nil {
			return err
		}
		problems = append(problems, p...)
		total += n
	}

	for _, p := range problems {
		if _, err := fmt.Fprintln(out, p); err != nil {
			return err
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %d of %d", ErrInvalid, len(problems), total)
	}
	if !cmd.Bool("quiet") {
		_, _ = fmt.Fprintf(out, "%d templates ok\n", total)
	}

	return nil
}

// Check 校验 r 中的每个模板行，返回问题列表与模板总数。
//
// 除花括号平衡外，还会编译每个提取的表达式。
func Check(name string, r io.Reader) ([]Problem, int, error) {
	var problems []Problem
	total := 0

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		total++

		if err := validate(text); err != nil {
			problems = append(problems, Problem{File: name, Line: line, Err: err})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", name, err)
	}

	return problems, total, nil
}

func validate(tmpl string) error {
	plan, err := rewrite.Analyze(tmpl)
	if err != nil {
		return err
	}
	for _, expr := range plan.Expressions {
		if _, err := eval.Compile(expr); err != nil {
			return err
		}
	}

	return nil
}
