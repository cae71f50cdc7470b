// Package frontier holds the pending work of a depth-first traversal.
//
// Items are kept in a slice used as a stack whose top is the front of the
// queue, so taking the next item is O(1) and splicing a block of children in
// front of the pending items costs O(len(block)).
package frontier

import (
	"iter"
	"slices"
)

type Frontier[T any] struct {
	items []T
}

func New[T any]() *Frontier[T] {
	return &Frontier[T]{}
}

// NewWithCapacity reduces allocations when the approximate size is known.
func NewWithCapacity[T any](capacity int) *Frontier[T] {
	return &Frontier[T]{
		items: make([]T, 0, capacity),
	}
}

// PushFront places block ahead of everything pending, keeping block's order:
// block[0] becomes the new front.
func (f *Frontier[T]) PushFront(block ...T) {
	for i := len(block) - 1; i >= 0; i-- {
		f.items = append(f.items, block[i])
	}
}

// PushFrontSeq places the items produced by seq ahead of everything pending,
// in the order seq yields them, and reports how many were added.
func (f *Frontier[T]) PushFrontSeq(seq iter.Seq[T]) int {
	start := len(f.items)
	for item := range seq {
		f.items = append(f.items, item)
	}
	slices.Reverse(f.items[start:])
	return len(f.items) - start
}

// Front returns the next item without removing it.
func (f *Frontier[T]) Front() (T, bool) {
	if len(f.items) == 0 {
		var zero T
		return zero, false
	}
	return f.items[len(f.items)-1], true
}

// PopFront removes the next item.
func (f *Frontier[T]) PopFront() (T, bool) {
	if len(f.items) == 0 {
		var zero T
		return zero, false
	}
	index := len(f.items) - 1
	item := f.items[index]
	var zero T
	f.items[index] = zero
	f.items = f.items[:index]
	return item, true
}

// Drop removes up to n items from the front and reports how many were removed.
func (f *Frontier[T]) Drop(n int) int {
	if n > len(f.items) {
		n = len(f.items)
	}
	if n <= 0 {
		return 0
	}
	keep := len(f.items) - n
	clear(f.items[keep:])
	f.items = f.items[:keep]
	return n
}

// Reset discards every pending item and then pushes block.
func (f *Frontier[T]) Reset(block ...T) {
	clear(f.items)
	f.items = f.items[:0]
	f.PushFront(block...)
}

func (f *Frontier[T]) IsEmpty() bool {
	return len(f.items) == 0
}

func (f *Frontier[T]) Len() int {
	return len(f.items)
}

// ToSlice returns the pending items front first.
func (f *Frontier[T]) ToSlice() []T {
	out := slices.Clone(f.items)
	slices.Reverse(out)
	return out
}
