package formatter

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rubeniskov/traverse-json/pkg/traverse"
)

// Output names a rendering.
type Output string

// Supported outputs.
const (
	OutputText   Output = "text"
	OutputJSON   Output = "json"
	OutputNDJSON Output = "ndjson"
	OutputYAML   Output = "yaml"
	OutputPaths  Output = "paths"
	OutputTree   Output = "tree"
)

// Outputs lists every supported output.
func Outputs() []Output {
	return []Output{OutputText, OutputJSON, OutputNDJSON, OutputYAML, OutputPaths, OutputTree}
}

// ParseOutput validates an output name. The empty string means text.
func ParseOutput(s string) (Output, error) {
	if s == "" {
		return OutputText, nil
	}
	for _, o := range Outputs() {
		if strings.EqualFold(s, string(o)) {
			return o, nil
		}
	}
	return "", fmt.Errorf("invalid output %q: valid values are %s", s, joinOutputs())
}

func joinOutputs() string {
	names := make([]string, 0, len(Outputs()))
	for _, o := range Outputs() {
		names = append(names, string(o))
	}
	return strings.Join(names, ", ")
}

// Options configures a Writer.
type Options struct {
	NoColor bool
	// Width caps text tables; 0 disables the cap.
	Width int
	// Indent is used by json and yaml; 0 means 2.
	Indent int
	Tree   TreeOptions
}

// Writer receives entries as they are pulled. Streaming outputs write each
// entry immediately; the others buffer until Flush.
type Writer interface {
	Write(e traverse.Entry) error
	Flush() error
}

// NewWriter returns a Writer rendering out to w.
func NewWriter(out Output, w io.Writer, opts Options) (Writer, error) {
	if opts.Indent <= 0 {
		opts.Indent = 2
	}
	switch out {
	case OutputText, "":
		return &bufferedWriter{w: w, render: func(es []traverse.Entry) (string, error) {
			rows := make([][2]string, len(es))
			for i, e := range es {
				rows[i] = [2]string{e.Path, Stringify(e.Value)}
			}
			return RenderTable(rows, opts.NoColor, opts.Width), nil
		}}, nil
	case OutputJSON:
		return &bufferedWriter{w: w, render: func(es []traverse.Entry) (string, error) {
			b, err := json.MarshalIndent(records(es), "", strings.Repeat(" ", opts.Indent))
			if err != nil {
				return "", err
			}
			return string(b) + "\n", nil
		}}, nil
	case OutputYAML:
		return &bufferedWriter{w: w, render: func(es []traverse.Entry) (string, error) {
			return FormatYAML(records(es), YAMLFormatOptions{Indent: opts.Indent, LiteralBlockStrings: true})
		}}, nil
	case OutputTree:
		b := newTreeBuilder(opts.Tree)
		return &treeWriter{w: w, b: b}, nil
	case OutputNDJSON:
		bw := bufio.NewWriter(w)
		return &lineWriter{w: bw, line: func(e traverse.Entry) (string, error) {
			b, err := json.Marshal(newRecord(e))
			return string(b), err
		}}, nil
	case OutputPaths:
		bw := bufio.NewWriter(w)
		return &lineWriter{w: bw, line: func(e traverse.Entry) (string, error) {
			return e.Path, nil
		}}, nil
	default:
		return nil, fmt.Errorf("invalid output %q: valid values are %s", out, joinOutputs())
	}
}

// record is the serialized form of an entry.
type record struct {
	Path  string `json:"path" yaml:"path"`
	Value any    `json:"value" yaml:"value"`
}

func newRecord(e traverse.Entry) record {
	return record{Path: e.Path, Value: e.Value}
}

func records(es []traverse.Entry) []record {
	out := make([]record, len(es))
	for i, e := range es {
		out[i] = newRecord(e)
	}
	return out
}

type bufferedWriter struct {
	w       io.Writer
	entries []traverse.Entry
	render  func([]traverse.Entry) (string, error)
}

func (b *bufferedWriter) Write(e traverse.Entry) error {
	b.entries = append(b.entries, e)
	return nil
}

func (b *bufferedWriter) Flush() error {
	s, err := b.render(b.entries)
	if err != nil {
		return err
	}
	b.entries = b.entries[:0]
	_, err = io.WriteString(b.w, s)
	return err
}

type lineWriter struct {
	w    *bufio.Writer
	line func(traverse.Entry) (string, error)
}

func (l *lineWriter) Write(e traverse.Entry) error {
	s, err := l.line(e)
	if err != nil {
		return err
	}
	if _, err := l.w.WriteString(s); err != nil {
		return err
	}
	return l.w.WriteByte('\n')
}

func (l *lineWriter) Flush() error {
	return l.w.Flush()
}

type treeWriter struct {
	w io.Writer
	b *treeBuilder
}

func (t *treeWriter) Write(e traverse.Entry) error {
	t.b.add(e)
	return nil
}

func (t *treeWriter) Flush() error {
	_, err := io.WriteString(t.w, t.b.String())
	return err
}
