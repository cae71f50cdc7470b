package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubeniskov/traverse-json/internal/config"
	"github.com/rubeniskov/traverse-json/pkg/traverse"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const sample = `{"a":1,"b":{"c":2,"d":[true,"x"]}}`

func TestRootPaths(t *testing.T) {
	tests := []struct {
		name  string
		input string
		args  []string
		want  string
	}{
		{
			name:  "leaves in declaration order",
			input: sample,
			args:  []string{"-o", "paths"},
			want:  "/a\n/b/c\n/b/d/0\n/b/d/1\n",
		},
		{
			name:  "keeps json key order",
			input: `{"z":1,"a":2,"m":3}`,
			args:  []string{"-o", "paths"},
			want:  "/z\n/a\n/m\n",
		},
		{
			name:  "nested",
			input: sample,
			args:  []string{"--nested", "-o", "paths"},
			want:  "/a\n/b\n/b/c\n/b/d\n/b/d/0\n/b/d/1\n",
		},
		{
			name:  "not recursive",
			input: sample,
			args:  []string{"--recursive=false", "-o", "paths"},
			want:  "/a\n/b\n",
		},
		{
			name:  "step",
			input: `{"a":1,"b":2,"c":3,"d":4}`,
			args:  []string{"--step", "2", "-o", "paths"},
			want:  "/a\n/c\n",
		},
		{
			name:  "glob",
			input: sample,
			args:  []string{"--test", "**/d/*", "-o", "paths"},
			want:  "/b/d/0\n/b/d/1\n",
		},
		{
			name:  "glob nobrace",
			input: sample,
			args:  []string{"--test", "/{a,c}", "--glob-nobrace", "-o", "paths"},
			want:  "",
		},
		{
			name:  "regex",
			input: sample,
			args:  []string{"--regex", "c$", "-o", "paths"},
			want:  "/b/c\n",
		},
		{
			name:  "cel predicate",
			input: sample,
			args:  []string{"--expr", "key == 'c' || depth == 1 && value == 1", "-o", "paths"},
			want:  "/a\n/b/c\n",
		},
		{
			name:  "recursive key",
			input: `{"children":{"name":"a","children":{"name":"b"}}}`,
			args:  []string{"--test", "@children", "-o", "paths"},
			want:  "/children\n/children/children\n",
		},
		{
			name:  "limit and offset",
			input: sample,
			args:  []string{"--offset", "1", "--limit", "2", "-o", "paths"},
			want:  "/b/c\n/b/d/0\n",
		},
		{
			name:  "tail",
			input: sample,
			args:  []string{"--tail", "1", "-o", "paths"},
			want:  "/b/d/1\n",
		},
		{
			name:  "select root with cel",
			input: sample,
			args:  []string{"-e", "_.b.d", "-o", "paths"},
			want:  "/0\n/1\n",
		},
		{
			name:  "start at pointer",
			input: sample,
			args:  []string{"-p", "/b/d", "-o", "paths"},
			want:  "/0\n/1\n",
		},
		{
			name:  "start at dotted path",
			input: sample,
			args:  []string{"--path", "b", "--nested", "-o", "paths"},
			want:  "/c\n/d\n/d/0\n/d/1\n",
		},
		{
			name:  "decode embedded documents",
			input: `{"a":"{\"x\":1}"}`,
			args:  []string{"--decode", "-o", "paths"},
			want:  "/a/x\n",
		},
		{
			name:  "yaml input",
			input: "b: 1\na:\n  - x\n",
			args:  []string{"--input-format", "yaml", "-o", "paths"},
			want:  "/b\n/a/0\n",
		},
		{
			name:  "scalar root",
			input: `42`,
			args:  []string{"-o", "paths"},
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.input, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRootNDJSON(t *testing.T) {
	out, err := execute(t, sample, "--test", "/b/c", "-o", "ndjson")
	require.NoError(t, err)
	assert.Equal(t, `{"path":"/b/c","value":2}`+"\n", out)
}

func TestRootJSON(t *testing.T) {
	out, err := execute(t, sample, "--nested", "--test", "/b", "-o", "json")
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "/b", got[0]["path"])
	assert.Contains(t, out, `"c": 2`)
}

func TestRootText(t *testing.T) {
	out, err := execute(t, sample, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "PATH")
	assert.Contains(t, out, "VALUE")
	assert.Contains(t, out, "/b/d/1")
	assert.NotContains(t, out, "\x1b[")
}

func TestRootTree(t *testing.T) {
	out, err := execute(t, sample, "-o", "tree")
	require.NoError(t, err)
	assert.Contains(t, out, "c: 2")
	assert.Contains(t, out, "d")
}

func TestRootReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.toml")
	require.NoError(t, os.WriteFile(path, []byte("b = 1\na = 2\n"), 0o600))

	out, err := execute(t, "", path, "-o", "paths")
	require.NoError(t, err)
	assert.Equal(t, "/a\n/b\n", out)
}

func TestRootMissingFile(t *testing.T) {
	_, err := execute(t, "", filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))
}

func TestRootPathNotFound(t *testing.T) {
	_, err := execute(t, sample, "-p", "/nope")
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))
}

func TestRootMaxDepth(t *testing.T) {
	_, err := execute(t, sample, "--max-depth", "1", "-o", "paths")
	require.Error(t, err)
	assert.True(t, errors.Is(err, traverse.ErrMaxDepth))
	assert.Equal(t, 1, ExitCode(err))
}

func TestRootUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "limit with tail", args: []string{"--limit", "1", "--tail", "1"}},
		{name: "negative offset", args: []string{"--offset", "-1"}},
		{name: "unknown output", args: []string{"-o", "xml"}},
		{name: "unknown input format", args: []string{"--input-format", "csv"}},
		{name: "bad glob", args: []string{"--test", "[a"}},
		{name: "test with regex", args: []string{"--test", "/a", "--regex", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, sample, tt.args...)
			require.Error(t, err)
			assert.Equal(t, 2, ExitCode(err))
		})
	}
}

func TestRootConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("traverse:\n  nested: true\n  regex: \"^/b\"\noutput:\n  format: paths\n"), 0o600))

	out, err := execute(t, sample, "--config-file", path)
	require.NoError(t, err)
	assert.Equal(t, "/b\n/b/c\n/b/d\n/b/d/0\n/b/d/1\n", out)

	// flags win, and a filter flag replaces the configured filter
	out, err = execute(t, sample, "--config-file", path, "--nested=false", "--test", "/a")
	require.NoError(t, err)
	assert.Equal(t, "/a\n", out)
}

func TestRootConfigFileUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("traverse:\n  bogus: 1\n"), 0o600))

	_, err := execute(t, sample, "--config-file", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestConfigCommand(t *testing.T) {
	out, err := execute(t, "", "config", "default")
	require.NoError(t, err)
	assert.Equal(t, string(config.DefaultYAML()), out)

	out, err = execute(t, "", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "traverse:")
	assert.Contains(t, out, "maxDepth: 10000")

	out, err = execute(t, "", "config", "-o", "json")
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Contains(t, got, "traverse")

	out, err = execute(t, "", "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, "not found, using defaults")

	_, err = execute(t, "", "config", "-o", "toml")
	assert.Equal(t, 2, ExitCode(err))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "traverse-json "))

	out, err = execute(t, "", "version", "-o", "json")
	require.NoError(t, err)
	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "unknown", got["commit"])

	_, err = execute(t, "", "version", "-o", "xml")
	assert.Equal(t, 2, ExitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
	assert.Equal(t, 2, ExitCode(&exitError{code: 2, err: errors.New("usage")}))
}
