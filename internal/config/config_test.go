package config

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rubeniskov/traverse-json/pkg/matcher"
	"github.com/rubeniskov/traverse-json/pkg/traverse"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultMatchesLibraryDefaults(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)
	require.NoError(t, f.Validate())

	opts, err := f.Traverse.Options()
	require.NoError(t, err)
	assert.Equal(t, traverse.DefaultOptions(), opts)

	assert.Equal(t, "auto", f.Input.Format)
	assert.Equal(t, "text", f.Output.Format)
	assert.Equal(t, 2, f.Output.Indent)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `traverse:
  nested: true
  test: "**/depth"
  glob:
    nocase: true
output:
  format: ndjson
limits:
  tail: 3
`)
	f, err := Load(path)
	require.NoError(t, err)

	assert.True(t, f.Traverse.Nested)
	assert.True(t, f.Traverse.Recursive, "unset keys keep their default")
	assert.Equal(t, 1, f.Traverse.Step)
	assert.Equal(t, "ndjson", f.Output.Format)
	assert.Equal(t, 2, f.Output.Indent)
	assert.Equal(t, 3, f.Limits.Tail)

	spec, err := f.Traverse.TestSpec()
	require.NoError(t, err)
	assert.Equal(t, matcher.GlobWith("**/depth", matcher.GlobOptions{NoCase: true}), spec)
}

func TestLoadEmptyFile(t *testing.T) {
	f, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	def, err := Default()
	require.NoError(t, err)
	assert.Equal(t, def, f)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "traverse:\n  recursve: false\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recursve")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)

	bad := *f
	bad.Output.Format = "csv"
	assert.Error(t, bad.Validate())

	bad = *f
	bad.Input.Format = "xml"
	assert.Error(t, bad.Validate())

	bad = *f
	bad.Limits.Limit, bad.Limits.Tail = 1, 1
	assert.Error(t, bad.Validate())
}

func TestTestSpec(t *testing.T) {
	tests := []struct {
		name string
		cfg  TraverseConfig
		want any
	}{
		{name: "none", cfg: TraverseConfig{}, want: nil},
		{name: "recursive key", cfg: TraverseConfig{Test: "@nested"}, want: matcher.Key("nested")},
		{name: "glob", cfg: TraverseConfig{Test: "**/foo"}, want: matcher.GlobWith("**/foo", matcher.GlobOptions{})},
		{name: "expr", cfg: TraverseConfig{Expr: "depth > 1"}, want: matcher.Expr("depth > 1")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.TestSpec()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := TraverseConfig{Regex: "nested$"}.TestSpec()
	require.NoError(t, err)
	re, ok := got.(*regexp.Regexp)
	require.True(t, ok)
	assert.Equal(t, "nested$", re.String())

	_, err = TraverseConfig{Test: "a", Expr: "true"}.TestSpec()
	assert.ErrorIs(t, err, ErrConflictingTests)

	_, err = TraverseConfig{Regex: "("}.TestSpec()
	assert.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "explicit.yaml", ResolvePath("explicit.yaml"))

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Equal(t, "", ResolvePath(""))

	want := filepath.Join(dir, "traverse-json", FileName)
	got, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, os.MkdirAll(filepath.Dir(want), 0o755))
	require.NoError(t, os.WriteFile(want, []byte("output:\n  format: paths\n"), 0o600))
	assert.Equal(t, want, ResolvePath(""))
}

func TestMarshalRoundTrip(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)
	out, err := f.Marshal()
	require.NoError(t, err)

	var back File
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, *f, back)
}

func TestFormatterTheme(t *testing.T) {
	th := ThemeConfig{Path: "#ff0000"}.FormatterTheme()
	assert.NotNil(t, th.PathColor)
	assert.Nil(t, th.HeaderFG)
}

func TestFormatterOptions(t *testing.T) {
	o := OutputConfig{Indent: 4, Tree: TreeConfig{NoValues: true}}
	got := o.FormatterOptions(100)
	assert.Equal(t, 100, got.Width)
	assert.Equal(t, 4, got.Indent)
	assert.True(t, got.Tree.NoValues)

	o.Width = 60
	assert.Equal(t, 60, o.FormatterOptions(100).Width)
}
