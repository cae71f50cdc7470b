// Package matcher turns a filter specification into a single predicate over
// traversal entries.
//
// Accepted specifications:
//
//	nil                          no filtering (Build returns a nil Func)
//	Func / func(string, any) bool used as-is
//	*regexp.Regexp               matched against the entry path
//	string / Glob                glob matched against the entry path
//	Expr                         CEL expression over path, value, key, depth
//
// A string starting with "@" (or a Key) selects same-key recursive descent.
// That is a traversal mode rather than a predicate, so Build rejects it with
// ErrRecursiveKey; see ParseRecursiveKey.
package matcher

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-logr/logr"
)

var (
	// ErrUnsupportedSpec is returned for specification shapes Build does not know.
	ErrUnsupportedSpec = errors.New("unsupported matcher spec")
	// ErrBadPattern is returned for malformed glob patterns.
	ErrBadPattern = errors.New("invalid glob pattern")
	// ErrRecursiveKey is returned when Build receives a recursive-key spec.
	ErrRecursiveKey = errors.New("recursive key spec is not a predicate")
)

// RecursiveKeyPrefix marks a string spec as a recursive key selector.
const RecursiveKeyPrefix = "@"

// Func reports whether the entry at path holding value should be yielded.
type Func func(path string, value any) bool

// Key selects same-key recursive descent on the named key.
type Key string

// Expr is a CEL expression evaluated per entry. It must produce a bool.
type Expr string

// Option configures Build.
type Option func(*config)

type config struct {
	log logr.Logger
}

// WithLogger sets the logger used to report entries rejected because their
// expression failed to evaluate (at V(1)).
func WithLogger(log logr.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// Build compiles spec into a Func. A nil spec yields a nil Func, meaning
// "match everything". Errors are configuration errors and are reported here,
// never while matching.
func Build(spec any, opts ...Option) (Func, error) {
	cfg := config{log: logr.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}
	switch s := spec.(type) {
	case nil:
		return nil, nil
	case Func:
		return s, nil
	case func(string, any) bool:
		return s, nil
	case *regexp.Regexp:
		if s == nil {
			return nil, nil
		}
		return func(path string, _ any) bool { return s.MatchString(path) }, nil
	case Key:
		return nil, fmt.Errorf("%w: @%s", ErrRecursiveKey, string(s))
	case string:
		if key, ok := ParseRecursiveKey(s); ok {
			return nil, fmt.Errorf("%w: @%s", ErrRecursiveKey, key)
		}
		return buildGlob(Glob{Pattern: s})
	case Glob:
		return buildGlob(s)
	case *Glob:
		if s == nil {
			return nil, nil
		}
		return buildGlob(*s)
	case Expr:
		return buildExpr(string(s), cfg.log)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedSpec, spec)
	}
}

// MustBuild is like Build but panics on error.
func MustBuild(spec any, opts ...Option) Func {
	fn, err := Build(spec, opts...)
	if err != nil {
		panic(err)
	}
	return fn
}

// ParseRecursiveKey reports whether spec selects same-key recursive descent
// and returns the key. "@nested" and Key("nested") both select "nested".
// A bare "@" selects nothing.
func ParseRecursiveKey(spec any) (string, bool) {
	switch s := spec.(type) {
	case Key:
		return string(s), s != ""
	case string:
		if strings.HasPrefix(s, RecursiveKeyPrefix) && len(s) > len(RecursiveKeyPrefix) {
			return s[len(RecursiveKeyPrefix):], true
		}
	}
	return "", false
}

// Not inverts fn. A nil fn matches everything, so Not(nil) matches nothing.
func Not(fn Func) Func {
	if fn == nil {
		return func(string, any) bool { return false }
	}
	return func(path string, value any) bool { return !fn(path, value) }
}

// All matches when every non-nil fn matches.
func All(fns ...Func) Func {
	return func(path string, value any) bool {
		for _, fn := range fns {
			if fn != nil && !fn(path, value) {
				return false
			}
		}
		return true
	}
}

// Any matches when at least one non-nil fn matches.
func Any(fns ...Func) Func {
	return func(path string, value any) bool {
		for _, fn := range fns {
			if fn != nil && fn(path, value) {
				return true
			}
		}
		return false
	}
}
