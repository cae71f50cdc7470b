package cel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubeniskov/traverse-json/pkg/container"
)

func newTestEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(4)
	require.NoError(t, err)
	return e
}

func TestPredicateOverPathAndValue(t *testing.T) {
	e := newTestEvaluator(t)
	tests := []struct {
		name  string
		expr  string
		path  string
		value any
		want  bool
	}{
		{name: "path suffix", expr: `path.endsWith("/depth")`, path: "/nested/depth", value: 1, want: true},
		{name: "path suffix miss", expr: `path.endsWith("/depth")`, path: "/foo", value: 0, want: false},
		{name: "numeric value", expr: `type(value) == int && value >= 3`, path: "/a", value: 4, want: true},
		{name: "numeric value below", expr: `type(value) == int && value >= 3`, path: "/a", value: 2, want: false},
		{name: "string value", expr: `type(value) == int && value >= 3`, path: "/a", value: "bar", want: false},
		{name: "key variable", expr: `key == "bar"`, path: "/c/foo/bar", value: nil, want: true},
		{name: "depth variable", expr: `depth == 3`, path: "/c/foo/bar", value: nil, want: true},
		{name: "object value", expr: `has(value.depth) && value.depth == 2`, path: "/nested/nested", value: container.ObjectOf("depth", 2), want: true},
		{name: "underscore alias", expr: `size(_) == 2`, path: "/list", value: []any{1, 2}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := e.Compile(tt.expr)
			require.NoError(t, err)
			got, err := p.Eval(tt.path, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.expr, p.String())
		})
	}
}

func TestCompileRejectsNonBool(t *testing.T) {
	e := newTestEvaluator(t)
	_, err := e.Compile(`path + "x"`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want bool")
}

func TestCompileReportsSyntaxErrors(t *testing.T) {
	e := newTestEvaluator(t)
	_, err := e.Compile(`path ==`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compilation error")
}

func TestPredicateEvalErrorOnMissingField(t *testing.T) {
	e := newTestEvaluator(t)
	p, err := e.Compile(`value.missing == 1`)
	require.NoError(t, err)
	_, err = p.Eval("/a", map[string]any{"present": 1})
	require.Error(t, err)
}

func TestProgramsAreCached(t *testing.T) {
	e := newTestEvaluator(t)
	_, err := e.Compile(`depth > 1`)
	require.NoError(t, err)
	assert.Equal(t, 1, e.programs.Len())
	_, err = e.Compile(`depth > 1`)
	require.NoError(t, err)
	assert.Equal(t, 1, e.programs.Len())
}

func TestEvaluateSelectsSubtree(t *testing.T) {
	e := newTestEvaluator(t)
	root := container.ObjectOf(
		"items", []any{
			container.ObjectOf("name", "a", "available", true),
			container.ObjectOf("name", "b", "available", false),
		},
	)
	out, err := e.Evaluate(`_.items.filter(x, x.available)`, root)
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"name": "a", "available": true}}, out)

	out, err = e.Evaluate(`_.items[1].name`, root)
	require.NoError(t, err)
	assert.Equal(t, "b", out)
}

func TestEvaluateLiterals(t *testing.T) {
	e := newTestEvaluator(t)
	out, err := e.Evaluate(`{"a": [1, 2.5, null]}`, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []any{int64(1), 2.5, nil}}, out)
}

func TestDefaultIsShared(t *testing.T) {
	a, err := Default()
	require.NoError(t, err)
	b, err := Default()
	require.NoError(t, err)
	assert.Same(t, a, b)
}
