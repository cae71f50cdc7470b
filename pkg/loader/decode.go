package loader

import (
	"github.com/rubeniskov/traverse-json/pkg/container"
)

// TryDecode parses a string leaf that holds a serialized document (JSON,
// YAML, TOML, NDJSON). It reports false unless the result is an object or
// array; plain words and numbers stay strings.
func TryDecode(value string) (any, bool) {
	if value == "" {
		return nil, false
	}
	parsed, err := LoadRoot(value, FormatAuto)
	if err != nil || !container.IsTraversable(parsed) {
		return nil, false
	}
	return parsed, true
}

const maxDecodeDepth = 20

// RecursiveDecode returns a copy of node in which every string leaf holding
// a serialized document is replaced by the decoded document, recursively.
// Objects keep their key order; other maps and slices are copied into
// *container.Object and []any.
func RecursiveDecode(node any) any {
	return recursiveDecode(node, 0)
}

func recursiveDecode(node any, depth int) any {
	if depth > maxDecodeDepth {
		return node
	}
	if s, ok := node.(string); ok {
		if decoded, ok := TryDecode(s); ok {
			return recursiveDecode(decoded, depth+1)
		}
		return s
	}
	if !container.IsTraversable(node) {
		return node
	}
	if container.IsArray(node) {
		out := make([]any, 0, container.Len(node))
		container.Each(node, func(_ string, child any) bool {
			out = append(out, recursiveDecode(child, depth+1))
			return true
		})
		return out
	}
	out := container.NewObject(container.Len(node))
	container.Each(node, func(key string, child any) bool {
		out.Set(key, recursiveDecode(child, depth+1))
		return true
	})
	return out
}
