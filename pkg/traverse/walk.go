package traverse

import (
	"context"
	"errors"
)

// WalkFunc is called for every entry pulled by WalkContext. Returning
// SkipAll stops the walk without an error.
type WalkFunc func(Entry) error

// SkipAll can be returned by a WalkFunc to stop early.
var SkipAll = errors.New("skip all entries")

// WalkContext pulls entries from t until it is exhausted, fn fails or ctx is
// done. The context is checked between pulls.
func WalkContext(ctx context.Context, t *Traversal, fn WalkFunc) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		e, ok := t.Next()
		if !ok {
			return t.Err()
		}
		if err := fn(e); err != nil {
			if errors.Is(err, SkipAll) {
				return nil
			}
			return err
		}
	}
}
