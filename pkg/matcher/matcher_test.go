package matcher

import (
	"errors"
	"regexp"
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildNil(t *testing.T) {
	fn, err := Build(nil)
	require.NoError(t, err)
	assert.Nil(t, fn)

	var re *regexp.Regexp
	fn, err = Build(re)
	require.NoError(t, err)
	assert.Nil(t, fn)
}

func TestBuildPredicateUnchanged(t *testing.T) {
	calls := 0
	fn, err := Build(func(path string, value any) bool {
		calls++
		return path == "/a"
	})
	require.NoError(t, err)
	assert.True(t, fn("/a", nil))
	assert.False(t, fn("/b", nil))
	assert.Equal(t, 2, calls)

	fn, err = Build(Func(func(_ string, value any) bool { return value == 1 }))
	require.NoError(t, err)
	assert.True(t, fn("/x", 1))
}

func TestBuildRegexp(t *testing.T) {
	fn, err := Build(regexp.MustCompile(`depth$`))
	require.NoError(t, err)
	assert.True(t, fn("/nested/depth", 1))
	assert.False(t, fn("/nested", nil))
}

func TestBuildGlob(t *testing.T) {
	tests := []struct {
		name string
		spec any
		path string
		want bool
	}{
		{name: "globstar suffix", spec: "**/depth", path: "/nested/nested/depth", want: true},
		{name: "globstar other key", spec: "**/foo", path: "/nested/nested/depth", want: false},
		{name: "globstar top level", spec: "**/foo", path: "/foo", want: true},
		{name: "braces", spec: "**/{depth,foo}", path: "/c/foo/bar/3/value/foo", want: true},
		{name: "braces miss", spec: "**/{depth,foo}", path: "/bar", want: false},
		{name: "single star stays in segment", spec: "/*/depth", path: "/nested/nested/depth", want: false},
		{name: "single star", spec: "/*/depth", path: "/nested/depth", want: true},
		{name: "question mark", spec: "/?", path: "/a", want: true},
		{name: "class", spec: "/c/foo/bar/[0-1]", path: "/c/foo/bar/1", want: true},
		{name: "nobrace", spec: GlobWith("**/{depth,foo}", GlobOptions{NoBrace: true}), path: "/foo", want: false},
		{name: "nobrace literal", spec: GlobWith("**/{depth,foo}", GlobOptions{NoBrace: true}), path: "/x/{depth,foo}", want: true},
		{name: "nocase", spec: GlobWith("**/DEPTH", GlobOptions{NoCase: true}), path: "/Nested/depth", want: true},
		{name: "noglobstar", spec: GlobWith("**/depth", GlobOptions{NoGlobStar: true}), path: "/nested/nested/depth", want: false},
		{name: "matchbase", spec: GlobWith("dep*", GlobOptions{MatchBase: true}), path: "/nested/nested/depth", want: true},
		{name: "negated", spec: "!**/depth", path: "/foo", want: true},
		{name: "negated miss", spec: "!**/depth", path: "/a/depth", want: false},
		{name: "double negation", spec: "!!**/depth", path: "/a/depth", want: true},
		{name: "nonegate", spec: GlobWith("!foo", GlobOptions{NoNegate: true}), path: "!foo", want: true},
		{name: "flipnegate", spec: GlobWith("!**/depth", GlobOptions{FlipNegate: true}), path: "/a/depth", want: true},
		{name: "pointer glob", spec: &Glob{Pattern: "/a/**"}, path: "/a/b/c", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := Build(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, fn(tt.path, nil))
		})
	}
}

func TestBuildGlobInvalid(t *testing.T) {
	_, err := Build("/a/[b")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadPattern))
}

func TestBuildRecursiveKeyRejected(t *testing.T) {
	_, err := Build("@nested")
	assert.ErrorIs(t, err, ErrRecursiveKey)
	_, err = Build(Key("nested"))
	assert.ErrorIs(t, err, ErrRecursiveKey)
}

func TestBuildUnsupported(t *testing.T) {
	for _, spec := range []any{42, []string{"a"}, struct{}{}, func() bool { return true }} {
		_, err := Build(spec)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedSpec)
	}
}

func TestBuildExpr(t *testing.T) {
	fn, err := Build(Expr(`type(value) == int && value >= 3`))
	require.NoError(t, err)
	assert.True(t, fn("/nested/nested/nested/depth", 3))
	assert.False(t, fn("/nested/depth", 1))
	assert.False(t, fn("/c/foo/bar/3/value/foo", "bar"))
}

func TestBuildExprCompileError(t *testing.T) {
	_, err := Build(Expr(`value >`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expression matcher")
}

func TestBuildExprLogsEvalFailures(t *testing.T) {
	var logged []string
	log := funcr.New(func(prefix, args string) {
		logged = append(logged, args)
	}, funcr.Options{Verbosity: 1})

	fn, err := Build(Expr(`value.depth == 1`), WithLogger(log))
	require.NoError(t, err)
	assert.False(t, fn("/foo", map[string]any{"other": 1}))
	require.Len(t, logged, 1)
	assert.Contains(t, logged[0], "expression rejected entry")
	assert.Contains(t, logged[0], "/foo")
}

func TestParseRecursiveKey(t *testing.T) {
	key, ok := ParseRecursiveKey("@nested")
	assert.True(t, ok)
	assert.Equal(t, "nested", key)

	key, ok = ParseRecursiveKey(Key("items"))
	assert.True(t, ok)
	assert.Equal(t, "items", key)

	_, ok = ParseRecursiveKey("@")
	assert.False(t, ok)
	_, ok = ParseRecursiveKey("**/nested")
	assert.False(t, ok)
	_, ok = ParseRecursiveKey(nil)
	assert.False(t, ok)
}

func TestCombinators(t *testing.T) {
	isA := Func(func(p string, _ any) bool { return p == "/a" })
	isOne := Func(func(_ string, v any) bool { return v == 1 })

	assert.True(t, All(isA, isOne, nil)("/a", 1))
	assert.False(t, All(isA, isOne)("/a", 2))
	assert.True(t, Any(isA, isOne)("/b", 1))
	assert.False(t, Any(isA, isOne)("/b", 2))
	assert.False(t, Not(isA)("/a", nil))
	assert.False(t, Not(nil)("/a", nil))
}

func TestMustBuildPanics(t *testing.T) {
	assert.Panics(t, func() { MustBuild(3.14) })
	assert.NotPanics(t, func() { MustBuild("**") })
}
