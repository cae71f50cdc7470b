// Package pointer builds and splits the slash-separated paths attached to
// traversal entries.
//
// Paths look like JSON Pointers ("/a/b/0") but no escaping is applied: a key
// containing "/" or "~" is written verbatim, so such keys cannot be told apart
// from nesting when a path is parsed back.
package pointer

import "strings"

// Sep separates path segments.
const Sep = "/"

// Format joins the non-empty segments with Sep, prefixes a leading Sep and
// collapses runs of separators, so Format("", "a") is "/a" and
// Format("/a/", "/b") is "/a/b". Format() returns "/".
func Format(segments ...string) string {
	var b strings.Builder
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		b.WriteString(Sep)
		b.WriteString(seg)
	}
	if b.Len() == 0 {
		return Sep
	}
	return collapse(b.String())
}

// Parse splits a path on runs of Sep and drops empty segments.
// Examples: "/a/b" -> ["a", "b"], "//a///b/" -> ["a", "b"], "/" -> [].
func Parse(path string) []string {
	parts := strings.Split(path, Sep)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Split returns the parent path and the last segment of path. The parent of
// a top-level path is "". Split("/") returns ("", "").
func Split(path string) (parent, last string) {
	segs := Parse(path)
	if len(segs) == 0 {
		return "", ""
	}
	last = segs[len(segs)-1]
	if len(segs) == 1 {
		return "", last
	}
	return Format(segs[:len(segs)-1]...), last
}

// Depth reports how many segments path has.
func Depth(path string) int {
	return len(Parse(path))
}

func collapse(s string) string {
	if !strings.Contains(s, Sep+Sep) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	prevSep := false
	for i := 0; i < len(s); i++ {
		isSep := s[i] == Sep[0]
		if isSep && prevSep {
			continue
		}
		b.WriteByte(s[i])
		prevSep = isSep
	}
	return b.String()
}
