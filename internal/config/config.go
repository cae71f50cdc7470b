// Package config loads the CLI configuration: defaults embedded in the
// binary, overlaid with an optional user file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"charm.land/lipgloss/v2"
	"gopkg.in/yaml.v3"

	"github.com/rubeniskov/traverse-json/internal/formatter"
	"github.com/rubeniskov/traverse-json/internal/limiter"
	"github.com/rubeniskov/traverse-json/pkg/loader"
	"github.com/rubeniskov/traverse-json/pkg/matcher"
	"github.com/rubeniskov/traverse-json/pkg/settings"
	"github.com/rubeniskov/traverse-json/pkg/traverse"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

// FileName is the name looked up in the user config directory.
const FileName = "config.yaml"

// ErrConflictingTests is returned when more than one of test, regex and
// expr is set.
var ErrConflictingTests = errors.New("only one of test, regex and expr may be set")

// File is the full configuration.
type File struct {
	Traverse TraverseConfig `yaml:"traverse"`
	Input    InputConfig    `yaml:"input"`
	Output   OutputConfig   `yaml:"output"`
	Limits   limiter.Config `yaml:"limits"`
	Theme    ThemeConfig    `yaml:"theme"`
}

// TraverseConfig mirrors traverse.Options with the filter split by kind.
type TraverseConfig struct {
	Recursive bool                `yaml:"recursive"`
	Nested    bool                `yaml:"nested"`
	Step      int                 `yaml:"step"`
	MaxDepth  int                 `yaml:"maxDepth"`
	Test      string              `yaml:"test"`
	Regex     string              `yaml:"regex"`
	Expr      string              `yaml:"expr"`
	Glob      matcher.GlobOptions `yaml:"glob"`
}

// InputConfig controls document loading.
type InputConfig struct {
	Format string `yaml:"format"`
	Decode bool   `yaml:"decode"`
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Format  string     `yaml:"format"`
	NoColor bool       `yaml:"noColor"`
	Indent  int        `yaml:"indent"`
	Width   int        `yaml:"width"`
	Tree    TreeConfig `yaml:"tree"`
}

// TreeConfig controls tree output.
type TreeConfig struct {
	NoValues     bool `yaml:"noValues"`
	MaxStringLen int  `yaml:"maxStringLen"`
}

// ThemeConfig holds text output colors as lipgloss color strings (ANSI
// codes or #rrggbb). Empty values keep the built-in colors.
type ThemeConfig struct {
	HeaderFG  string `yaml:"headerFG"`
	HeaderBG  string `yaml:"headerBG"`
	Path      string `yaml:"path"`
	Value     string `yaml:"value"`
	Separator string `yaml:"separator"`
}

// DefaultYAML returns the embedded defaults.
func DefaultYAML() []byte {
	return defaultConfigYAML
}

// Default decodes the embedded defaults.
func Default() (*File, error) {
	var f File
	if err := decodeStrict(defaultConfigYAML, &f); err != nil {
		return nil, fmt.Errorf("decode default config: %w", err)
	}
	return &f, nil
}

// Load returns the defaults overlaid with the file at path. Keys missing from
// the file keep their default; unknown keys are an error. An empty path
// yields the defaults.
func Load(path string) (*File, error) {
	f, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return f, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := decodeStrict(data, f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func decodeStrict(data []byte, into *File) error {
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(into); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/traverse-json/config.yaml, falling
// back to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, settings.CliBinaryName, FileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", settings.CliBinaryName, FileName), nil
}

// ResolvePath returns explicit when set, otherwise DefaultPath if that file
// exists, otherwise "".
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidate, err := DefaultPath()
	if err != nil {
		return ""
	}
	if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
		return candidate
	}
	return ""
}

// Marshal renders f as YAML.
func (f *File) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}

// Validate checks the settings that are not checked when they are used.
func (f *File) Validate() error {
	if _, err := loader.ParseFormat(f.Input.Format); err != nil {
		return err
	}
	if _, err := formatter.ParseOutput(f.Output.Format); err != nil {
		return err
	}
	return f.Limits.Validate()
}

// TestSpec returns the filter specification selected by the config, or nil
// when none is set.
func (c TraverseConfig) TestSpec() (any, error) {
	set := 0
	for _, s := range []string{c.Test, c.Regex, c.Expr} {
		if s != "" {
			set++
		}
	}
	if set > 1 {
		return nil, ErrConflictingTests
	}
	switch {
	case c.Regex != "":
		re, err := regexp.Compile(c.Regex)
		if err != nil {
			return nil, fmt.Errorf("regex: %w", err)
		}
		return re, nil
	case c.Expr != "":
		return matcher.Expr(c.Expr), nil
	case c.Test != "":
		if key, ok := matcher.ParseRecursiveKey(c.Test); ok {
			return matcher.Key(key), nil
		}
		return matcher.GlobWith(c.Test, c.Glob), nil
	}
	return nil, nil
}

// Options converts the config into traversal options.
func (c TraverseConfig) Options() (traverse.Options, error) {
	spec, err := c.TestSpec()
	if err != nil {
		return traverse.Options{}, err
	}
	return traverse.Options{
		Recursive: c.Recursive,
		Nested:    c.Nested,
		Step:      c.Step,
		Test:      spec,
		MaxDepth:  c.MaxDepth,
	}, nil
}

// FormatterTheme converts the configured colors.
func (t ThemeConfig) FormatterTheme() formatter.Theme {
	return formatter.Theme{
		HeaderFG:       colorOf(t.HeaderFG),
		HeaderBG:       colorOf(t.HeaderBG),
		PathColor:      colorOf(t.Path),
		ValueColor:     colorOf(t.Value),
		SeparatorColor: colorOf(t.Separator),
	}
}

func colorOf(s string) color.Color {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return lipgloss.Color(s)
}

// FormatterOptions converts the output settings. width is used when the
// config leaves the width at 0.
func (o OutputConfig) FormatterOptions(width int) formatter.Options {
	if o.Width > 0 {
		width = o.Width
	}
	return formatter.Options{
		NoColor: o.NoColor,
		Width:   width,
		Indent:  o.Indent,
		Tree: formatter.TreeOptions{
			NoValues:     o.Tree.NoValues,
			MaxStringLen: o.Tree.MaxStringLen,
		},
	}
}
