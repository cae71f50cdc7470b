package traverse

import "github.com/go-logr/logr"

// DefaultMaxDepth bounds how deep a traversal may descend before it stops
// with ErrMaxDepth. Inputs are expected to be trees; the bound turns a cyclic
// input into an error instead of an endless expansion.
const DefaultMaxDepth = 10000

// Options controls a traversal. Start from DefaultOptions: the zero value
// disables recursion.
type Options struct {
	// Recursive descends into nested objects and arrays.
	Recursive bool `yaml:"recursive" json:"recursive"`
	// Nested also yields the containers themselves, right before their
	// first descendant.
	Nested bool `yaml:"nested" json:"nested"`
	// Step advances over this many entries after yielding a leaf (or a
	// container when Recursive is off). Values below 1 mean 1.
	Step int `yaml:"step" json:"step"`
	// Test filters entries. See matcher.Build for the accepted shapes; a
	// func(Entry) bool and "@key" strings are also accepted here.
	Test any `yaml:"test,omitempty" json:"test,omitempty"`
	// MaxDepth caps the depth of yielded entries. 0 means DefaultMaxDepth
	// and a negative value disables the check.
	MaxDepth int `yaml:"maxDepth" json:"maxDepth"`
	// Logger receives debug output about dives and injections (V(2)) and
	// rejected expression matches (V(1)).
	Logger logr.Logger `yaml:"-" json:"-"`
}

// DefaultOptions returns recursive, non-nested traversal with a step of 1,
// no filter and the default depth guard.
func DefaultOptions() Options {
	return Options{
		Recursive: true,
		Nested:    false,
		Step:      1,
		MaxDepth:  DefaultMaxDepth,
	}
}

// Option configures a traversal created with New.
type Option func(*Options)

// WithRecursive enables or disables descending into containers.
func WithRecursive(recursive bool) Option {
	return func(o *Options) {
		o.Recursive = recursive
	}
}

// WithNested enables or disables yielding containers.
func WithNested(nested bool) Option {
	return func(o *Options) {
		o.Nested = nested
	}
}

// WithStep sets the stride.
func WithStep(step int) Option {
	return func(o *Options) {
		o.Step = step
	}
}

// WithTest sets the filter specification.
func WithTest(spec any) Option {
	return func(o *Options) {
		o.Test = spec
	}
}

// WithMaxDepth sets the depth guard.
func WithMaxDepth(depth int) Option {
	return func(o *Options) {
		o.MaxDepth = depth
	}
}

// WithLogger sets the logger.
func WithLogger(log logr.Logger) Option {
	return func(o *Options) {
		o.Logger = log
	}
}

// WithOptions replaces every option at once.
func WithOptions(opts Options) Option {
	return func(o *Options) {
		*o = opts
	}
}

func (o Options) normalized() Options {
	if o.Step < 1 {
		o.Step = 1
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return o
}
