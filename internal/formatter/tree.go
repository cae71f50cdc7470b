package formatter

import (
	"github.com/xlab/treeprint"

	"github.com/rubeniskov/traverse-json/pkg/container"
	"github.com/rubeniskov/traverse-json/pkg/pointer"
	"github.com/rubeniskov/traverse-json/pkg/traverse"
)

// TreeOptions controls tree output.
type TreeOptions struct {
	// NoValues prints keys only.
	NoValues bool
	// MaxStringLen truncates leaf values; 0 disables truncation.
	MaxStringLen int
}

// treeBuilder grows an ASCII tree from entries in the order they arrive.
// Missing ancestors are created on demand, so filtered or leaf-only streams
// still hang off the right branches.
type treeBuilder struct {
	opts     TreeOptions
	root     treeprint.Tree
	branches map[string]treeprint.Tree
}

func newTreeBuilder(opts TreeOptions) *treeBuilder {
	root := treeprint.NewWithRoot(pointer.Sep)
	return &treeBuilder{
		opts:     opts,
		root:     root,
		branches: map[string]treeprint.Tree{"": root},
	}
}

func (b *treeBuilder) branch(path string) treeprint.Tree {
	if br, ok := b.branches[path]; ok {
		return br
	}
	parent, last := pointer.Split(path)
	br := b.branch(parent).AddBranch(last)
	b.branches[path] = br
	return br
}

func (b *treeBuilder) add(e traverse.Entry) {
	if container.IsTraversable(e.Value) {
		b.branch(e.Path)
		return
	}
	parent, last := pointer.Split(e.Path)
	if b.opts.NoValues {
		b.branch(parent).AddNode(last)
		return
	}
	b.branch(parent).AddNode(last + ": " + truncate(Stringify(e.Value), b.opts.MaxStringLen))
}

func (b *treeBuilder) String() string {
	return b.root.String()
}

// FormatAsTree renders entries as an ASCII tree keyed by path segment.
func FormatAsTree(entries []traverse.Entry, opts TreeOptions) string {
	b := newTreeBuilder(opts)
	for _, e := range entries {
		b.add(e)
	}
	return b.String()
}
