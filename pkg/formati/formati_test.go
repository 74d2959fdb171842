package formati_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nobane/formati/pkg/eval"
	"github.com/nobane/formati/pkg/fmtengine"
	"github.com/nobane/formati/pkg/formati"
	"github.com/nobane/formati/pkg/rewrite"
)

type account struct {
	ID      int
	Name    string
	Balance float64
	Roles   []string
}

func (a account) Label() string {
	return strings.ToUpper(a.Name)
}

func testVars() formati.Vars {
	return formati.Vars{
		"user":        account{ID: 42, Name: "ann", Balance: 12.5, Roles: []string{"admin", "dev"}},
		"coordinates": [2]float64{10.5, -3},
		"a":           map[string]any{"b": "AB"},
		"name":        "world",
		"width":       6,
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		args []any
		want string
	}{
		{name: "plain", tmpl: "no placeholders", want: "no placeholders"},
		{name: "bare name from vars", tmpl: "Hello {name}!", want: "Hello world!"},
		{name: "field", tmpl: "{user.name} #{user.id}", want: "ann #42"},
		{name: "coordinates", tmpl: "Position: ({coordinates.0}, {coordinates.1})", want: "Position: (10.5, -3)"},
		{name: "spec preserved", tmpl: "[{user.balance:>8.2}]", want: "[   12.50]"},
		{name: "dedup", tmpl: "{user.name}/{user.name:?}", want: `ann/"ann"`},
		{name: "method call", tmpl: "{user.Label()} {user.label}", want: "ANN ANN"},
		{name: "index", tmpl: "{user.roles[1]}", want: "dev"},
		{name: "explicit positional first", tmpl: "{a.b}, {}, {a.b}", args: []any{"X"}, want: "AB, X, AB"},
		{name: "explicit index", tmpl: "{1}{0} {user.id}", args: []any{"a", "b"}, want: "ba 42"},
		{name: "named overrides vars", tmpl: "{name} {user.name}", args: []any{formati.Named("name", "you")}, want: "you ann"},
		{name: "nested width from vars", tmpl: "{user.name:>{width}}|", want: "   ann|"},
		{name: "escapes", tmpl: "{{user.name}} = {user.name}", want: "{user.name} = ann"},
		{name: "literal expression", tmpl: `{"lit"} {-1}`, want: "lit -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formati.Format(testVars(), tt.tmpl, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_Errors(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		want error
	}{
		{name: "unbalanced open", tmpl: "{a.b", want: rewrite.ErrMalformedTemplate},
		{name: "unbalanced close", tmpl: "a.b}", want: rewrite.ErrMalformedTemplate},
		{name: "undefined", tmpl: "{missing.x}", want: eval.ErrUndefined},
		{name: "no member", tmpl: "{user.nope}", want: eval.ErrNoMember},
		{name: "binary operator", tmpl: "{user.id + 1}", want: eval.ErrUnsupported},
		{name: "unknown bare name", tmpl: "{nobody}", want: fmtengine.ErrUnknownName},
		{name: "missing implicit", tmpl: "{} {}", want: fmtengine.ErrArgumentIndex},
		{name: "missing implicit beside expression", tmpl: "{a.b} {}", want: fmtengine.ErrArgumentIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := formati.Format(testVars(), tt.tmpl)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, strings.HasPrefix(err.Error(), "formati: "), err.Error())
		})
	}
}

func TestFormat_MissingPositional(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		args []any
	}{
		{name: "implicit without args", tmpl: "{a.b} {}"},
		{name: "explicit index past args", tmpl: "{a.b} {1}", args: []any{"x"}},
		{name: "width reference past args", tmpl: "{user.id:>1$}", args: []any{"x"}},
		{name: "precision star without value", tmpl: "{a.b} {:.*}", args: []any{2}},
		{name: "named args do not count", tmpl: "{a.b} {}", args: []any{formati.Named("x", 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := formati.Format(testVars(), tt.tmpl, tt.args...)
			require.ErrorIs(t, err, fmtengine.ErrArgumentIndex)
		})
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	// 改写后按 "显式参数 ++ 表达式值" 渲染，应与直接替换表达式的结果一致
	tests := []struct {
		name   string
		tmpl   string
		args   []any
		inline string
		values []any
	}{
		{
			name:   "implicit between expressions",
			tmpl:   "{user.name:<5}|{}|{user.id:>4}|{coordinates.1}|{user.name}",
			args:   []any{"x"},
			inline: "{:<5}|{}|{:>4}|{}|{}",
			values: []any{"ann", "x", 42, -3.0, "ann"},
		},
		{
			name:   "implicit after expression",
			tmpl:   "{a.b}, {}, {a.b}",
			args:   []any{"X"},
			inline: "{}, {}, {}",
			values: []any{"AB", "X", "AB"},
		},
		{
			name:   "explicit and implicit mixed",
			tmpl:   "{1} {} {user.id} {0} {}",
			args:   []any{"p", "q"},
			inline: "{} {} {} {} {}",
			values: []any{"q", "p", 42, "p", "q"},
		},
		{
			name:   "precision star",
			tmpl:   "{:.*} {user.balance:.1}",
			args:   []any{2, 3.14159},
			inline: "{:.*} {:.1}",
			values: []any{2, 3.14159, 12.5},
		},
		{
			name:   "nested implicit width",
			tmpl:   "{} {user.name:>{}}|",
			args:   []any{"a", 6},
			inline: "{} {:>{}}|",
			values: []any{"a", "ann", 6},
		},
		{
			name:   "width reference",
			tmpl:   "{user.id:>1$}|{0}",
			args:   []any{"x", 5},
			inline: "{:>2$}|{1}",
			values: []any{42, "x", 5},
		},
		{
			name:   "no explicit args",
			tmpl:   "({coordinates.0}, {coordinates.1}) {user.Label()}",
			inline: "({}, {}) {}",
			values: []any{10.5, -3.0, "ANN"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formati.Format(testVars(), tt.tmpl, tt.args...)
			require.NoError(t, err)

			want, err := fmtengine.Format(tt.inline, tt.values...)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestFormatter_NonStrict(t *testing.T) {
	f := formati.New(formati.WithStrict(false))

	got, err := f.Format(testVars(), "{nobody} {name} {user.id}")
	require.NoError(t, err)
	assert.Equal(t, "{nobody} world 42", got)
}

func TestFormatter_Cache(t *testing.T) {
	cache := rewrite.NewCache()
	f := formati.New(formati.WithCache(cache))

	for range 3 {
		_, err := f.Format(testVars(), "{user.name}")
		require.NoError(t, err)
	}
	_, err := f.Format(testVars(), "{a.b")
	require.Error(t, err)

	assert.Equal(t, 1, cache.Len())
}

func TestFormatter_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	f := formati.New(formati.WithLogger(logger))

	_, err := f.Format(testVars(), "{user.name} {user.id}")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Template analyzed")
	assert.Contains(t, out, `rewritten="{0} {1}"`)
}

func TestPrepare(t *testing.T) {
	p, err := formati.New().Prepare("{user.name} has {user.roles.0} and {}")
	require.NoError(t, err)
	assert.Equal(t, []string{"user.name", "user.roles.0"}, p.Expressions())
	assert.Equal(t, "{user.name} has {user.roles.0} and {}", p.Template())

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := p.Render(testVars(), i)
			assert.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("ann has admin and %d", i), got)
		}()
	}
	wg.Wait()

	other := formati.Vars{"user": map[string]any{"name": "bob", "roles": []string{"ops"}}}
	got, err := p.Render(other, "!")
	require.NoError(t, err)
	assert.Equal(t, "bob has ops and !", got)
}

func TestPrepare_Errors(t *testing.T) {
	_, err := formati.New().Prepare("{a.b")
	require.ErrorIs(t, err, rewrite.ErrMalformedTemplate)

	_, err = formati.New().Prepare("{a.}")
	require.ErrorIs(t, err, eval.ErrSyntax)
}

func TestPrepared_Message(t *testing.T) {
	p, err := formati.New().Prepare("{user.id}:{user.name}")
	require.NoError(t, err)

	msg, err := p.Message(testVars())
	require.NoError(t, err)
	assert.Equal(t, "42:ann", msg.Text)
	assert.Equal(t, []string{"user.id", "user.name"}, msg.Expressions)
	assert.Equal(t, []any{42, "ann"}, msg.Values)
}

func TestPrepared_ExpressionsAreCopies(t *testing.T) {
	f := formati.New(formati.WithCache(rewrite.NewCache()))

	p, err := f.Prepare("{user.id}:{user.name}")
	require.NoError(t, err)

	exprs := p.Expressions()
	exprs[0] = "changed"

	msg, err := p.Message(testVars())
	require.NoError(t, err)
	msg.Expressions[1] = "changed"

	again, err := f.Prepare("{user.id}:{user.name}")
	require.NoError(t, err)
	assert.Equal(t, []string{"user.id", "user.name"}, again.Expressions())
	assert.Equal(t, []string{"user.id", "user.name"}, p.Expressions())

	got, err := again.Render(testVars())
	require.NoError(t, err)
	assert.Equal(t, "42:ann", got)
}

func TestMustFormat(t *testing.T) {
	assert.Equal(t, "ann", formati.MustFormat(testVars(), "{user.name}"))
	assert.PanicsWithValue(t,
		`formati: failed to format: formati: rewrite: unmatched '{' at offset 0 in "{a.b"`,
		func() { formati.MustFormat(nil, "{a.b") },
	)
}

func TestFprint(t *testing.T) {
	var buf bytes.Buffer

	n, err := formati.Fprint(&buf, testVars(), "{user.name}")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = formati.Fprintln(&buf, testVars(), "-{user.id}")
	require.NoError(t, err)
	assert.Equal(t, "ann-42\n", buf.String())

	_, err = formati.Fprint(&buf, nil, "{")
	require.Error(t, err)
	assert.Equal(t, "ann-42\n", buf.String())
}
