package command

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nobane/formati/internal/api"
	"github.com/nobane/formati/internal/config"
	"github.com/nobane/formati/pkg/formati"
)

func TestSetVar(t *testing.T) {
	vars := formati.Vars{}
	for _, a := range []string{"name=ann", "n=3", "ok=true", "user.id=7", "user.name='007'", "pair=a: b", "empty="} {
		require.NoError(t, SetVar(vars, a))
	}

	assert.Equal(t, "ann", vars["name"])
	assert.Equal(t, 3, vars["n"])
	assert.Equal(t, true, vars["ok"])
	assert.Equal(t, map[string]any{"id": 7, "name": "007"}, vars["user"])
	assert.Equal(t, "a: b", vars["pair"])
	assert.Equal(t, "", vars["empty"])

	assert.Error(t, SetVar(vars, "novalue"))
	assert.Error(t, SetVar(vars, "=x"))
}

func TestSetupLogging(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })

	var buf bytes.Buffer
	require.NoError(t, SetupLogging(config.LogConfig{Level: "warn", Format: "json"}, &buf))
	slog.Info("hidden")
	slog.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	assert.Error(t, SetupLogging(config.LogConfig{Level: "loud"}, &buf))
	assert.Error(t, SetupLogging(config.LogConfig{Level: "info", Format: "xml"}, &buf))
}

func TestWrite(t *testing.T) {
	v := map[string]any{"template": "{0}", "expressions": []string{"a.b"}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "json", v, nil))
	assert.JSONEq(t, `{"template":"{0}","expressions":["a.b"]}`, buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, "yaml", v, nil))
	assert.Contains(t, buf.String(), "expressions:\n  - a.b\n")
	assert.Contains(t, buf.String(), "template: ")

	buf.Reset()
	require.NoError(t, Write(&buf, "text", v, func(w io.Writer) error {
		_, err := io.WriteString(w, "plain")
		return err
	}))
	assert.Equal(t, "plain", buf.String())

	assert.Error(t, Write(&buf, "xml", v, nil))
}

func TestNewFormatter(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Format.Strict = false

	got, err := NewFormatter(&cfg, nil).Format(formati.Vars{"a": map[string]int{"b": 1}}, "{a.b} {missing}")
	require.NoError(t, err)
	assert.Equal(t, "1 {missing}", got)
}

func TestWriteRewrite(t *testing.T) {
	var buf bytes.Buffer
	res := api.RewriteResponse{Template: "{0} {1} {2:>4}", Expressions: []string{"user.id", "user.name"}, Offset: 1}

	require.NoError(t, WriteRewrite(&buf, res))
	assert.Equal(t, "{0} {1} {2:>4}\n{1}\tuser.id\n{2}\tuser.name\n", buf.String())
}
