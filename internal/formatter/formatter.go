// Package formatter renders traversal entries for the CLI.
package formatter

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/rubeniskov/traverse-json/pkg/container"
)

var (
	defaultHeaderFG   = lipgloss.Color("12")
	defaultHeaderBG   = lipgloss.Color("236")
	defaultPathColor  = lipgloss.Color("14")
	defaultValueColor = lipgloss.Color("248")
	defaultSeparator  = lipgloss.Color("240")

	headerStyle    lipgloss.Style
	pathStyle      lipgloss.Style
	valueStyle     lipgloss.Style
	separatorStyle lipgloss.Style
)

// Theme controls the colors of text output. Nil fields use the defaults.
type Theme struct {
	HeaderFG       color.Color
	HeaderBG       color.Color
	PathColor      color.Color
	ValueColor     color.Color
	SeparatorColor color.Color
}

// SetTheme replaces the styles used by text output.
func SetTheme(th Theme) {
	pick := func(c, def color.Color) color.Color {
		if c == nil {
			return def
		}
		return c
	}
	headerStyle = lipgloss.NewStyle().Bold(true).
		Foreground(pick(th.HeaderFG, defaultHeaderFG)).
		Background(pick(th.HeaderBG, defaultHeaderBG))
	pathStyle = lipgloss.NewStyle().Foreground(pick(th.PathColor, defaultPathColor))
	valueStyle = lipgloss.NewStyle().Foreground(pick(th.ValueColor, defaultValueColor))
	separatorStyle = lipgloss.NewStyle().Foreground(pick(th.SeparatorColor, defaultSeparator))
}

//nolint:gochecknoinits // default theme for package consumers
func init() {
	SetTheme(Theme{})
}

// Stringify returns a single-line representation of a value: strings with
// control characters escaped, containers as compact JSON.
func Stringify(v any) string {
	if v == nil {
		return "null"
	}
	switch t := v.(type) {
	case string:
		return escapeScalarString(t)
	case bool, int, int64, float64:
		return fmt.Sprint(t)
	case *container.Object, map[string]any, []any:
		if b, err := json.Marshal(t); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", t)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive // only composite kinds need JSON
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	case reflect.Ptr:
		if !rv.IsNil() {
			if b, err := json.Marshal(v); err == nil {
				return string(b)
			}
		}
	}
	return fmt.Sprintf("%v", v)
}

// escapeScalarString flattens line breaks so a row stays on one line.
func escapeScalarString(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return strings.ReplaceAll(s, "\t", "\\t")
}

// truncate shortens s to maxLen display cells, ending in "..." when there is
// room for it.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || runewidth.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}

// padRight pads s with spaces to width display cells.
func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

const defaultTermWidth = 120

// TerminalWidth returns the width of w when it is a terminal, then $COLUMNS,
// then 120.
func TerminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	if col := os.Getenv("COLUMNS"); col != "" {
		if width, err := strconv.Atoi(col); err == nil && width > 0 {
			return width
		}
	}
	return defaultTermWidth
}

// IsTerminal reports whether r or w is a file attached to a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// RenderTable renders PATH/VALUE rows sized to their content. maxWidth caps
// the table width, truncating the value column first; 0 disables the cap.
func RenderTable(rows [][2]string, noColor bool, maxWidth int) string {
	const sepWidth = 2
	sep := strings.Repeat(" ", sepWidth)

	pathWidth, valueWidth := len("PATH"), len("VALUE")
	for _, row := range rows {
		pathWidth = max(pathWidth, runewidth.StringWidth(row[0]))
		valueWidth = max(valueWidth, runewidth.StringWidth(row[1]))
	}

	if maxWidth > 0 && pathWidth+sepWidth+valueWidth > maxWidth {
		available := max(maxWidth-sepWidth, 10)
		// the path column gets at most 40%
		pathWidth = min(pathWidth, max(available*40/100, 5))
		valueWidth = max(available-pathWidth, 5)
	}

	style := func(st lipgloss.Style, s string) string {
		if noColor {
			return s
		}
		return st.Render(s)
	}

	var b strings.Builder
	b.WriteString(style(headerStyle, padRight("PATH", pathWidth)))
	b.WriteString(sep)
	b.WriteString(style(headerStyle, padRight("VALUE", valueWidth)))
	b.WriteByte('\n')
	b.WriteString(style(separatorStyle, strings.Repeat("─", pathWidth+sepWidth+valueWidth)))
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(style(pathStyle, padRight(truncate(row[0], pathWidth), pathWidth)))
		b.WriteString(sep)
		b.WriteString(style(valueStyle, padRight(truncate(row[1], valueWidth), valueWidth)))
		b.WriteByte('\n')
	}
	return b.String()
}
