package eval_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nobane/formati/pkg/eval"
)

type address struct {
	City string `json:"city"`
	Zip  string
}

type user struct {
	ID          int
	Name        string
	DisplayName string `json:"display_name"`
	Tags        []string
	Home        *address
	secret      string
}

func (u user) Greeting(prefix string) string {
	return prefix + ", " + u.Name
}

func (u *user) Initials() string {
	return strings.ToUpper(u.Name[:1])
}

func (u user) Lookup(key string) (string, error) {
	if key == "" {
		return "", errors.New("empty key")
	}
	return key + "!", nil
}

type point struct {
	X, Y float64
}

func newScope() eval.Scope {
	u := &user{ID: 7, Name: "ann", DisplayName: "Ann", Tags: []string{"a", "b"}, Home: &address{City: "Oslo", Zip: "0150"}, secret: "x"}

	return eval.Scope{
		"user":   u,
		"coords": []int{10, 20, 30},
		"pair":   [2]string{"left", "right"},
		"p":      point{X: 1.5, Y: -2},
		"cfg":    map[string]any{"port": 8080, "nested": map[string]int{"a": 1}},
		"ids":    map[int]string{1: "one", 2: "two"},
		"word":   "héllo",
		"n":      5,
		"ok":     true,
		"double": func(x int) int { return x * 2 },
		"join":   func(sep string, parts ...string) string { return strings.Join(parts, sep) },
		"fail":   func() (int, error) { return 0, errors.New("boom") },
		"fns":    map[string]any{"inc": func(x int) int { return x + 1 }},
		"i":      1,
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr string
		want any
	}{
		{expr: "n", want: 5},
		{expr: "user.Name", want: "ann"},
		{expr: "user.name", want: "ann"},
		{expr: "user.id", want: 7},
		{expr: "user.display_name", want: "Ann"},
		{expr: "user.home.city", want: "Oslo"},
		{expr: "user.Home.Zip", want: "0150"},
		{expr: "user.tags.1", want: "b"},
		{expr: "coords.0", want: 10},
		{expr: "coords[2]", want: 30},
		{expr: "coords[i]", want: 20},
		{expr: "pair.1", want: "right"},
		{expr: "p.0", want: 1.5},
		{expr: "p.y", want: -2.0},
		{expr: "cfg.port", want: 8080},
		{expr: `cfg["port"]`, want: 8080},
		{expr: "cfg.nested.a", want: 1},
		{expr: "ids.2", want: "two"},
		{expr: "ids[1]", want: "one"},
		{expr: "word.1", want: "é"},
		{expr: `user.Greeting("hi")`, want: "hi, ann"},
		{expr: "user.greeting('yo')", want: "yo, ann"},
		{expr: "user.Initials()", want: "A"},
		{expr: "user.initials", want: "A"},
		{expr: `user.Lookup("k")`, want: "k!"},
		{expr: "double(21)", want: 42},
		{expr: `join("-", "a", "b", "c")`, want: "a-b-c"},
		{expr: "fns.inc(1)", want: 2},
		{expr: "len(coords)", want: 3},
		{expr: "len(user.Name)", want: 3},
		{expr: "-n", want: -5},
		{expr: "-1", want: -1},
		{expr: "-1.5", want: -1.5},
		{expr: "!ok", want: false},
		{expr: "*user", want: user{}},
		{expr: "(user).Name", want: "ann"},
		{expr: `"lit\n"`, want: "lit\n"},
		{expr: "'single'", want: "single"},
		{expr: "`raw\\n`", want: `raw\n`},
		{expr: "42", want: 42},
		{expr: "1e3", want: 1000.0},
		{expr: "true", want: true},
		{expr: "nil", want: nil},
		{expr: "  user.Name  ", want: "ann"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := eval.Evaluate(tt.expr, newScope())
			require.NoError(t, err)
			if tt.expr == "*user" {
				u, ok := got.(user)
				require.True(t, ok)
				assert.Equal(t, "ann", u.Name)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_AddressOf(t *testing.T) {
	got, err := eval.Evaluate("&n", newScope())
	require.NoError(t, err)

	p, ok := got.(*int)
	require.True(t, ok)
	assert.Equal(t, 5, *p)
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		expr string
		want error
	}{
		{expr: "missing", want: eval.ErrUndefined},
		{expr: "missing()", want: eval.ErrUndefined},
		{expr: "user.nope", want: eval.ErrNoMember},
		{expr: "user.secret", want: eval.ErrNoMember},
		{expr: "cfg.absent", want: eval.ErrNoMember},
		{expr: "coords.9", want: eval.ErrIndex},
		{expr: "coords[-1]", want: eval.ErrIndex},
		{expr: `cfg["absent"]`, want: eval.ErrIndex},
		{expr: "n()", want: eval.ErrNotCallable},
		{expr: "user.Name()", want: eval.ErrNotCallable},
		{expr: "a + b", want: eval.ErrUnsupported},
		{expr: "n - 1", want: eval.ErrUnsupported},
		{expr: "n == 1", want: eval.ErrUnsupported},
		{expr: "x as u64", want: eval.ErrUnsupported},
		{expr: "path::to", want: eval.ErrUnsupported},
		{expr: "-word", want: eval.ErrUnsupported},
		{expr: "double(\"x\")", want: eval.ErrUnsupported},
		{expr: "user.", want: eval.ErrSyntax},
		{expr: "coords[0", want: eval.ErrSyntax},
		{expr: "(n", want: eval.ErrSyntax},
		{expr: `"open`, want: eval.ErrSyntax},
		{expr: "", want: eval.ErrSyntax},
		{expr: "double(1, 2)", want: eval.ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := eval.Evaluate(tt.expr, newScope())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "eval: ")
		})
	}
}

func TestEvaluate_CallError(t *testing.T) {
	_, err := eval.Evaluate("fail()", newScope())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	_, err = eval.Evaluate(`user.Lookup("")`, newScope())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty key")
}

func TestEvaluate_NilMember(t *testing.T) {
	scope := eval.Scope{"u": &user{Name: "bob"}}

	_, err := eval.Evaluate("u.home.city", scope)
	require.ErrorIs(t, err, eval.ErrNoMember)
}

func TestCompile(t *testing.T) {
	e, err := eval.Compile(" user.tags.0 ")
	require.NoError(t, err)
	assert.Equal(t, "user.tags.0", e.String())

	for _, scope := range []eval.Scope{
		{"user": user{Tags: []string{"x"}}},
		{"user": map[string]any{"tags": []string{"y"}}},
	} {
		_, err := e.Eval(scope)
		require.NoError(t, err)
	}

	_, err = eval.Compile("a +")
	require.ErrorIs(t, err, eval.ErrUnsupported)

	assert.Panics(t, func() { eval.MustCompile("(") })
}

func TestExpr_ConcurrentEval(t *testing.T) {
	e := eval.MustCompile("coords.1")
	done := make(chan any)
	for range 8 {
		go func() {
			v, _ := e.Eval(newScope())
			done <- v
		}()
	}
	for range 8 {
		assert.Equal(t, 20, <-done)
	}
}

func ExampleEvaluate() {
	scope := eval.Scope{
		"user":   map[string]any{"name": "ann", "tags": []string{"admin", "dev"}},
		"coords": [2]float64{1.5, -3},
	}

	for _, expr := range []string{"user.name", "user.tags.1", "coords[0]", "len(user.tags)"} {
		v, err := eval.Evaluate(expr, scope)
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Printf("%s = %v\n", expr, v)
	}
	// Output:
	// user.name = ann
	// user.tags.1 = dev
	// coords[0] = 1.5
	// len(user.tags) = 2
}
