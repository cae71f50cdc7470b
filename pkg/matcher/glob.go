package matcher

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/rubeniskov/traverse-json/pkg/pointer"
)

// Glob is a glob pattern plus pattern-engine options.
//
// Patterns follow doublestar syntax: "*" and "?" stay within one segment,
// "**" spans segments, "[...]" is a character class and "{a,b}" is an
// alternation. The pattern is matched against the whole entry path, so
// "**/depth" matches "/nested/nested/depth".
type Glob struct {
	Pattern string      `yaml:"pattern" json:"pattern"`
	Options GlobOptions `yaml:"options" json:"options"`
}

// GlobOptions tweaks glob matching.
type GlobOptions struct {
	// NoBrace treats "{" and "}" literally.
	NoBrace bool `yaml:"nobrace" json:"nobrace"`
	// NoCase matches case-insensitively.
	NoCase bool `yaml:"nocase" json:"nocase"`
	// NoGlobStar makes "**" behave like "*".
	NoGlobStar bool `yaml:"noglobstar" json:"noglobstar"`
	// MatchBase matches patterns without "/" against the last path segment.
	MatchBase bool `yaml:"matchBase" json:"matchBase"`
	// NoNegate disables the leading "!" negation.
	NoNegate bool `yaml:"nonegate" json:"nonegate"`
	// FlipNegate returns the opposite result for negated patterns.
	FlipNegate bool `yaml:"flipNegate" json:"flipNegate"`
}

// GlobWith pairs a pattern with options, mirroring the (pattern, options)
// tuple form.
func GlobWith(pattern string, opts GlobOptions) Glob {
	return Glob{Pattern: pattern, Options: opts}
}

func buildGlob(g Glob) (Func, error) {
	pattern, negated := g.Pattern, false
	if !g.Options.NoNegate {
		for strings.HasPrefix(pattern, "!") {
			pattern = pattern[1:]
			negated = !negated
		}
	}
	if g.Options.NoBrace {
		pattern = escapeBraces(pattern)
	}
	if g.Options.NoGlobStar {
		for strings.Contains(pattern, "**") {
			pattern = strings.ReplaceAll(pattern, "**", "*")
		}
	}
	if g.Options.NoCase {
		pattern = strings.ToLower(pattern)
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %q", ErrBadPattern, g.Pattern)
	}
	baseOnly := g.Options.MatchBase && !strings.Contains(pattern, pointer.Sep)
	flip := negated && g.Options.FlipNegate

	return func(path string, _ any) bool {
		subject := path
		if baseOnly {
			_, subject = pointer.Split(path)
		}
		if g.Options.NoCase {
			subject = strings.ToLower(subject)
		}
		ok := doublestar.MatchUnvalidated(pattern, subject)
		if negated {
			ok = !ok
		}
		if flip {
			ok = !ok
		}
		return ok
	}, nil
}

func escapeBraces(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern))
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c == '\\' && i+1 < len(pattern) {
			b.WriteByte(c)
			b.WriteByte(pattern[i+1])
			i++
			continue
		}
		if c == '{' || c == '}' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}
