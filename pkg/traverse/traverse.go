// Package traverse enumerates the properties of nested objects and arrays
// depth-first, one entry per pull.
//
// Each entry pairs a slash-separated path ("/c/foo/bar/0") with the value
// found there. A Traversal keeps the entries still to visit on a frontier;
// expanding a container splices its children in front of the pending
// siblings, which yields depth-first order without recursion. Callers pace
// the traversal by calling Next and may feed extra subtrees mid-stream with
// Inject and InjectAt.
//
//	t, err := traverse.New(root, traverse.WithNested(true))
//	if err != nil {
//		return err
//	}
//	for path, value := range t.All() {
//		fmt.Println(path, value)
//	}
//
// A Traversal is not safe for concurrent use.
package traverse

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/rubeniskov/traverse-json/internal/frontier"
	"github.com/rubeniskov/traverse-json/pkg/container"
	"github.com/rubeniskov/traverse-json/pkg/matcher"
	"github.com/rubeniskov/traverse-json/pkg/pointer"
)

// Entry is one yielded property: its path and the value stored there.
type Entry struct {
	Path  string
	Value any
}

// Predicate filters entries. It is accepted by WithTest alongside the
// matcher specifications.
type Predicate func(Entry) bool

type item struct {
	entry Entry
	depth int
}

// Traversal is a resumable depth-first enumeration over one root value.
type Traversal struct {
	opts    Options
	match   Predicate
	rkey    string
	hasRKey bool

	pending *frontier.Frontier[item]
	last    Entry
	hasLast bool
	err     error

	log   logr.Logger
	debug bool
}

// New creates a traversal over root. A root that is not an object or array
// yields nothing. Only an unusable Test specification produces an error.
func New(root any, opts ...Option) (*Traversal, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return NewWithOptions(root, o)
}

// Filter is shorthand for New(root, WithTest(spec)).
func Filter(root any, spec any) (*Traversal, error) {
	return New(root, WithTest(spec))
}

// NewWithOptions creates a traversal from a complete option set.
func NewWithOptions(root any, opts Options) (*Traversal, error) {
	opts = opts.normalized()
	t := &Traversal{
		opts:    opts,
		pending: frontier.New[item](),
		log:     opts.Logger,
	}
	t.debug = t.log.V(2).Enabled()

	if key, ok := matcher.ParseRecursiveKey(opts.Test); ok {
		t.rkey, t.hasRKey = key, true
		t.opts.Nested = true
	} else {
		match, err := buildPredicate(opts.Test, t.log)
		if err != nil {
			return nil, fmt.Errorf("traverse: %w", err)
		}
		t.match = match
	}

	t.dive(root, "", 0)
	return t, nil
}

func buildPredicate(spec any, log logr.Logger) (Predicate, error) {
	switch fn := spec.(type) {
	case Predicate:
		return fn, nil
	case func(Entry) bool:
		return fn, nil
	}
	fn, err := matcher.Build(spec, matcher.WithLogger(log))
	if err != nil || fn == nil {
		return nil, err
	}
	return func(e Entry) bool { return fn(e.Path, e.Value) }, nil
}

// Next yields the next matching entry. It returns false once nothing is
// pending, or when the traversal stopped with an error (see Err). A
// traversal that returned false yields again only after an injection.
func (t *Traversal) Next() (Entry, bool) {
	for t.err == nil {
		it, ok := t.pending.Front()
		if !ok {
			return Entry{}, false
		}
		if t.opts.Recursive && container.IsTraversable(it.entry.Value) {
			t.pending.PopFront()
			t.dive(it.entry.Value, it.entry.Path, it.depth)
			if t.err != nil {
				return Entry{}, false
			}
			if !t.opts.Nested {
				continue
			}
		} else {
			t.pending.Drop(t.opts.Step)
		}
		if t.match != nil && !t.match(it.entry) {
			continue
		}
		t.last, t.hasLast = it.entry, true
		return it.entry, true
	}
	return Entry{}, false
}

// Inject dives into value under the path of the most recently yielded entry
// (the root when nothing was yielded yet). The injected entries come before
// everything still pending.
func (t *Traversal) Inject(value any) {
	prefix := ""
	if t.hasLast {
		prefix = t.last.Path
	}
	t.InjectAt(prefix, value)
}

// InjectAt dives into value under prefix. A value that is not a container is
// lifted first: injecting "2" at "/foo" yields ("/foo", "2").
func (t *Traversal) InjectAt(prefix string, value any) {
	if t.err != nil {
		return
	}
	depth := pointer.Depth(prefix)
	if depth > 0 && !container.IsTraversable(value) {
		prefix, value = lift(prefix, value)
		depth--
	}
	if t.debug {
		t.log.V(2).Info("inject", "prefix", prefix, "depth", depth, "pending", t.pending.Len())
	}
	t.dive(value, prefix, depth)
}

// PullWith injects value at the current path and pulls the next entry.
func (t *Traversal) PullWith(value any) (Entry, bool) {
	t.Inject(value)
	return t.Next()
}

// PullAt injects value under prefix and pulls the next entry.
func (t *Traversal) PullAt(prefix string, value any) (Entry, bool) {
	t.InjectAt(prefix, value)
	return t.Next()
}

// dive expands value, found at prefix and depth, onto the frontier. In
// recursive-key mode the frontier is replaced by the single child under the
// key; otherwise the children are placed ahead of the pending entries.
func (t *Traversal) dive(value any, prefix string, depth int) {
	if !container.IsTraversable(value) {
		if t.hasRKey {
			t.pending.Reset()
		}
		return
	}
	if t.opts.MaxDepth > 0 && depth+1 > t.opts.MaxDepth {
		t.err = fmt.Errorf("%w: %s (limit %d)", ErrMaxDepth, pointer.Format(prefix), t.opts.MaxDepth)
		t.pending.Reset()
		t.log.Error(t.err, "traversal stopped", "path", pointer.Format(prefix))
		return
	}

	if t.hasRKey {
		child, ok := container.Get(value, t.rkey)
		if !ok {
			t.pending.Reset()
			return
		}
		t.pending.Reset(item{
			entry: Entry{Path: pointer.Format(prefix, t.rkey), Value: child},
			depth: depth + 1,
		})
		return
	}

	n := t.pending.PushFrontSeq(func(yield func(item) bool) {
		container.Each(value, func(key string, child any) bool {
			return yield(item{
				entry: Entry{Path: pointer.Format(prefix, key), Value: child},
				depth: depth + 1,
			})
		})
	})
	if t.debug {
		t.log.V(2).Info("dive", "prefix", prefix, "children", n, "pending", t.pending.Len())
	}
}

// lift wraps a leaf found at path into a single-key object keyed by the last
// segment of path, returning the parent path. It lets a leaf be expanded like
// a container: lift("/a/b", 1) is ("/a", {"b": 1}).
func lift(path string, value any) (string, *container.Object) {
	parent, last := pointer.Split(path)
	return parent, container.ObjectOf(last, value)
}

// Err returns the error that stopped the traversal, if any. Running out of
// entries is not an error.
func (t *Traversal) Err() error {
	return t.err
}

// Pending reports how many entries are waiting on the frontier. Containers
// count once until they are expanded.
func (t *Traversal) Pending() int {
	return t.pending.Len()
}

// Last returns the most recently yielded entry.
func (t *Traversal) Last() (Entry, bool) {
	return t.last, t.hasLast
}

// Options returns the resolved options.
func (t *Traversal) Options() Options {
	return t.opts
}

// RecursiveKey returns the key followed in recursive-key mode.
func (t *Traversal) RecursiveKey() (string, bool) {
	return t.rkey, t.hasRKey
}
