// Package navigator resolves a starting node inside a loaded document.
package navigator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rubeniskov/traverse-json/pkg/container"
	"github.com/rubeniskov/traverse-json/pkg/pointer"
)

// ErrNotFound is returned when a path segment names a missing key or index.
var ErrNotFound = errors.New("path not found")

// EvaluateFunc evaluates an expression against root.
type EvaluateFunc func(expr string, root any) (any, error)

// NodeAtPath returns the node of root addressed by path. Three forms are
// accepted:
//
//	/items/0/tags      pointer path, the form traversal entries use
//	items[0].tags      dotted path with bracket indices
//	_.items.filter(x, x.available)
//	                   any other expression, handed to eval
//
// An empty path, "/" and "_" address root itself.
func NodeAtPath(root any, path string, eval EvaluateFunc) (any, error) {
	trimmed := strings.TrimSpace(path)
	switch {
	case trimmed == "" || trimmed == "_" || trimmed == "/":
		return root, nil
	case strings.HasPrefix(trimmed, "/"):
		return walk(root, pointer.Parse(trimmed))
	case !isExpression(trimmed):
		return walk(root, parseDotted(trimmed))
	}
	if eval == nil {
		return nil, fmt.Errorf("expression %q: no evaluator configured", trimmed)
	}
	out, err := eval(trimmed, root)
	if err != nil {
		return nil, fmt.Errorf("expression %q: %w", trimmed, err)
	}
	return out, nil
}

func walk(root any, segments []string) (any, error) {
	cur := root
	for i, seg := range segments {
		if !container.IsTraversable(cur) {
			return nil, fmt.Errorf("%w: cannot descend into %T at %s", ErrNotFound, cur, pointer.Format(segments[:i+1]...))
		}
		next, ok := container.Get(cur, seg)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, pointer.Format(segments[:i+1]...))
		}
		cur = next
	}
	return cur, nil
}

// isExpression reports whether path needs the evaluator rather than plain
// key lookups.
func isExpression(path string) bool {
	if strings.HasPrefix(path, `"`) || strings.HasPrefix(path, "{") {
		return true
	}
	if strings.HasPrefix(path, "[") {
		end := strings.Index(path, "]")
		if end < 0 {
			return true
		}
		inside := path[1:end]
		if _, err := strconv.Atoi(inside); err == nil {
			return false
		}
		return !isQuoted(inside)
	}
	if strings.HasPrefix(path, "_.") || strings.HasPrefix(path, "_[") {
		return true
	}
	if strings.Contains(path, "(") {
		return true
	}
	for _, op := range []string{"==", "!=", "<", ">", "&&", "||", "+", " "} {
		if strings.Contains(path, op) {
			return true
		}
	}
	return false
}

// parseDotted splits "items[0].tags" or `items["a.b"]` into segments.
func parseDotted(path string) []string {
	var parts []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(path); i++ {
		switch ch := path[i]; ch {
		case '.':
			flush()
		case '[':
			flush()
			end := strings.IndexByte(path[i+1:], ']')
			if end < 0 {
				cur.WriteString(path[i:])
				i = len(path)
				continue
			}
			seg := path[i+1 : i+1+end]
			if isQuoted(seg) {
				seg = seg[1 : len(seg)-1]
			}
			parts = append(parts, seg)
			i += end + 1
		default:
			cur.WriteByte(ch)
		}
	}
	flush()
	return parts
}

func isQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
}
