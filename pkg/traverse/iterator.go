package traverse

import "iter"

// Iterator adapts a Traversal to the scanner style:
//
//	it := traverse.NewIterator(t)
//	for it.Next() {
//		e := it.Entry()
//	}
//	if err := it.Err(); err != nil {
//		return err
//	}
type Iterator struct {
	t     *Traversal
	entry Entry
	done  bool
}

// NewIterator returns a single-pass iterator over t.
func NewIterator(t *Traversal) *Iterator {
	return &Iterator{t: t}
}

// Next advances to the next entry. Once it returns false it keeps returning
// false.
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}
	e, ok := it.t.Next()
	if !ok {
		it.done = true
		it.entry = Entry{}
		return false
	}
	it.entry = e
	return true
}

// Entry returns the entry produced by the last call to Next.
func (it *Iterator) Entry() Entry {
	return it.entry
}

// Err returns the error that stopped the underlying traversal.
func (it *Iterator) Err() error {
	return it.t.Err()
}

// All yields the remaining entries as (path, value) pairs. Breaking out of
// the loop leaves the traversal where it stopped, so a later All or Next
// resumes from there.
func (t *Traversal) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for {
			e, ok := t.Next()
			if !ok || !yield(e.Path, e.Value) {
				return
			}
		}
	}
}

// Entries yields the remaining entries.
func (t *Traversal) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for {
			e, ok := t.Next()
			if !ok || !yield(e) {
				return
			}
		}
	}
}

// Collect drains t.
func Collect(t *Traversal) ([]Entry, error) {
	var out []Entry
	for e := range t.Entries() {
		out = append(out, e)
	}
	return out, t.Err()
}
