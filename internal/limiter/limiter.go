// Package limiter windows a stream of entries with --offset, --limit and
// --tail.
package limiter

import (
	"fmt"
	"iter"
)

// Config holds the windowing parameters. Zero values disable each one.
type Config struct {
	Limit  int `yaml:"limit" json:"limit"`   // keep at most this many entries
	Offset int `yaml:"offset" json:"offset"` // skip the first N entries
	Tail   int `yaml:"tail" json:"tail"`     // keep only the last N entries
}

// Validate rejects negative values and combining --limit with --tail.
// Offset is ignored when Tail is set.
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must be non-negative, got %d", c.Limit)
	}
	if c.Offset < 0 {
		return fmt.Errorf("--offset must be non-negative, got %d", c.Offset)
	}
	if c.Tail < 0 {
		return fmt.Errorf("--tail must be non-negative, got %d", c.Tail)
	}
	if c.Limit > 0 && c.Tail > 0 {
		return fmt.Errorf("--limit and --tail are mutually exclusive")
	}
	return nil
}

// IsActive reports whether any windowing is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0 || c.Tail > 0
}

// bounds returns the [start, end) window over length items.
func (c Config) bounds(length int) (int, int) {
	if c.Tail > 0 {
		return max(length-c.Tail, 0), length
	}
	start := min(c.Offset, length)
	end := length
	if c.Limit > 0 {
		end = min(start+c.Limit, length)
	}
	return start, end
}

// Slice windows a materialized slice.
func Slice[T any](c Config, items []T) []T {
	if !c.IsActive() {
		return items
	}
	start, end := c.bounds(len(items))
	return items[start:end]
}

// Seq windows a stream. Offset and Limit stop pulling from seq as soon as
// the window is full; Tail has to drain seq and keeps a ring of Tail items.
func Seq[T any](c Config, seq iter.Seq[T]) iter.Seq[T] {
	if !c.IsActive() {
		return seq
	}
	if c.Tail > 0 {
		return tail(c.Tail, seq)
	}
	return func(yield func(T) bool) {
		skipped, emitted := 0, 0
		for item := range seq {
			if skipped < c.Offset {
				skipped++
				continue
			}
			if !yield(item) {
				return
			}
			emitted++
			if c.Limit > 0 && emitted >= c.Limit {
				return
			}
		}
	}
}

func tail[T any](n int, seq iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		ring := make([]T, 0, n)
		next := 0
		for item := range seq {
			if len(ring) < n {
				ring = append(ring, item)
				continue
			}
			ring[next] = item
			next = (next + 1) % n
		}
		for i := range ring {
			if !yield(ring[(next+i)%len(ring)]) {
				return
			}
		}
	}
}
