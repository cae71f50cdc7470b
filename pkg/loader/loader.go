// Package loader turns raw documents into values a traversal can walk.
//
// JSON and YAML mappings decode into *container.Object so keys keep the order
// they were declared in. TOML tables decode into plain maps and are therefore
// visited in sorted key order.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/rubeniskov/traverse-json/pkg/container"
)

// Format names an input syntax.
type Format string

// Supported input formats. FormatAuto sniffs the content.
const (
	FormatAuto   Format = "auto"
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatYAML   Format = "yaml"
	FormatTOML   Format = "toml"
)

// ErrEmptyInput is returned for blank documents.
var ErrEmptyInput = errors.New("empty input")

// Formats lists the values accepted by ParseFormat.
func Formats() []Format {
	return []Format{FormatAuto, FormatJSON, FormatNDJSON, FormatYAML, FormatTOML}
}

// ParseFormat validates a format name. The empty string means FormatAuto.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatAuto, nil
	}
	f := Format(strings.ToLower(s))
	switch f {
	case FormatAuto, FormatJSON, FormatNDJSON, FormatYAML, FormatTOML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "jsonl":
		return FormatNDJSON, nil
	}
	return "", fmt.Errorf("unknown input format %q", s)
}

// FormatFromPath guesses the format from a file extension, falling back to
// FormatAuto.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	}
	return FormatAuto
}

// Detect sniffs the format of input. Multi-document YAML wins over NDJSON,
// TOML headers are told apart from JSON arrays, and anything else that does
// not open like JSON is read as YAML.
func Detect(input string) Format {
	input = strings.TrimSpace(input)
	if strings.Contains(input, "\n---") || strings.HasPrefix(input, "---") {
		return FormatYAML
	}
	if lines := strings.Split(input, "\n"); len(lines) > 1 && isLikelyNDJSON(lines) {
		return FormatNDJSON
	}
	if isLikelyTOML(input) {
		return FormatTOML
	}
	if strings.HasPrefix(input, "{") || strings.HasPrefix(input, "[") {
		return FormatJSON
	}
	return FormatYAML
}

// LoadData parses input into its documents. Single-document formats return
// one element.
func LoadData(input string) ([]any, error) {
	return LoadAs(input, FormatAuto)
}

// LoadAs parses input with an explicit format.
func LoadAs(input string, format Format) ([]any, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}
	if format == FormatAuto || format == "" {
		format = Detect(input)
	}
	switch format {
	case FormatJSON:
		docs, err := loadJSON(input)
		if err != nil {
			// {a} is not JSON but it is a YAML flow mapping.
			if ydocs, yerr := loadYAML(input); yerr == nil {
				return ydocs, nil
			}
			return nil, err
		}
		return docs, nil
	case FormatNDJSON:
		return loadNDJSON(input)
	case FormatYAML:
		return loadYAML(input)
	case FormatTOML:
		return loadTOML(input)
	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}
}

// LoadRoot parses input into a single root. Multi-document inputs become an
// array of documents.
func LoadRoot(input string, format Format) (any, error) {
	docs, err := LoadAs(input, format)
	if err != nil {
		return nil, err
	}
	if len(docs) == 1 {
		return docs[0], nil
	}
	return docs, nil
}

// LoadReader reads r to the end and parses it with LoadRoot.
func LoadReader(r io.Reader, format Format) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return LoadRoot(string(data), format)
}

// LoadFile reads path and parses it. With FormatAuto the extension is
// consulted before sniffing the content.
func LoadFile(path string, format Format) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if format == FormatAuto || format == "" {
		format = FormatFromPath(path)
	}
	root, err := LoadRoot(string(data), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, nil
}

func loadJSON(input string) ([]any, error) {
	dec := json.NewDecoder(strings.NewReader(input))
	dec.UseNumber()
	v, err := decodeJSON(dec)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid JSON: trailing data after offset %d", dec.InputOffset())
	}
	return []any{v}, nil
}

// loadYAML decodes every document of input. Empty documents are skipped
// when there is more than one.
func loadYAML(input string) ([]any, error) {
	var docs []any
	dec := yaml.NewDecoder(strings.NewReader(input))
	for {
		var n yaml.Node
		if err := dec.Decode(&n); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		v, err := container.FromYAML(&n)
		if err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		docs = append(docs, v)
	}
	if len(docs) > 1 {
		kept := docs[:0]
		for _, d := range docs {
			if d != nil {
				kept = append(kept, d)
			}
		}
		docs = kept
	}
	if len(docs) == 0 {
		return nil, errors.New("no documents found in YAML input")
	}
	return docs, nil
}

// loadNDJSON decodes one JSON value per line. Lines that are not JSON are
// kept as plain strings.
func loadNDJSON(input string) ([]any, error) {
	lines := strings.Split(input, "\n")
	docs := make([]any, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := loadJSON(line)
		if err != nil {
			docs = append(docs, line)
			continue
		}
		docs = append(docs, v[0])
	}
	if len(docs) == 0 {
		return nil, ErrEmptyInput
	}
	return docs, nil
}

func loadTOML(input string) ([]any, error) {
	var data map[string]any
	dec := toml.NewDecoder(bytes.NewReader([]byte(input)))
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	return []any{data}, nil
}

// isLikelyNDJSON requires several non-empty lines, most of them opening like
// a JSON object or array. YAML lists ("- name") never qualify.
func isLikelyNDJSON(lines []string) bool {
	jsonCount, nonEmpty := 0, 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmpty++
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			jsonCount++
		}
	}
	return nonEmpty > 1 && jsonCount > nonEmpty/2
}

var (
	// [server], [[items]], ["table name"], [database.credentials]; not [1, 2].
	tomlSection = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	// name = "value", database.host = "localhost"; not name: value.
	tomlKeyValue = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

func isLikelyTOML(input string) bool {
	sections, pairs, nonEmpty := 0, 0, 0
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmpty++
		if tomlSection.MatchString(line) {
			sections++
		}
		if tomlKeyValue.MatchString(line) {
			pairs++
		}
	}
	return sections > 0 || (nonEmpty > 0 && pairs > nonEmpty/2)
}
