package check

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/nobane/formati/pkg/eval"
	"github.com/nobane/formati/pkg/rewrite"
)

func TestCheck(t *testing.T) {
	input := strings.Join([]string{
		"# comment",
		"Hello {name}",
		"",
		"Position: ({coords.0}, {coords.1})",
		"{a.b",
		"  # indented comment",
		"x}",
		"{a + b}",
		"{{escaped}}",
	}, "\n")

	problems, total, err := Check("t.txt", strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 6, total)
	require.Len(t, problems, 3)

	assert.Equal(t, 5, problems[0].Line)
	assert.ErrorIs(t, problems[0].Err, rewrite.ErrMalformedTemplate)
	assert.Equal(t, 7, problems[1].Line)
	assert.ErrorIs(t, problems[1].Err, rewrite.ErrMalformedTemplate)
	assert.Equal(t, 8, problems[2].Line)
	assert.ErrorIs(t, problems[2].Err, eval.ErrUnsupported)
	assert.True(t, strings.HasPrefix(problems[0].String(), "t.txt:5: rewrite: unmatched '{'"))
}

func newApp(out *bytes.Buffer, in string) *cli.Command {
	return &cli.Command{
		Name:     "formati",
		Writer:   out,
		Reader:   strings.NewReader(in),
		Flags:    []cli.Flag{&cli.StringFlag{Name: "config"}},
		Commands: []*cli.Command{Command},
	}
}

func TestAction_Files(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(good, []byte("{user.name}\n{}\n"), 0o600))
	require.NoError(t, os.WriteFile(bad, []byte("ok {x}\n{user.\n"), 0o600))
	cfgPath := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: error\n"), 0o600))

	var out bytes.Buffer
	err := newApp(&out, "").Run(context.Background(), []string{"formati", "--config", cfgPath, "check", good})
	require.NoError(t, err)
	assert.Equal(t, "2 templates ok\n", out.String())

	out.Reset()
	err = newApp(&out, "").Run(context.Background(), []string{"formati", "--config", cfgPath, "check", good, bad})
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "1 of 4")
	assert.Contains(t, out.String(), bad+":2: ")
}

func TestAction_Stdin(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: error\n"), 0o600))

	var out bytes.Buffer
	err := newApp(&out, "}{\n").Run(context.Background(), []string{"formati", "--config", cfgPath, "check"})
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, out.String(), "<stdin>:1: ")
}
