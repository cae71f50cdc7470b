// Package container decides which values a traversal descends into and
// enumerates their entries in a stable order.
//
// Traversable values are plain containers: *Object, map[string]any, []any,
// and through reflection any map with string keys and any slice or array.
// Everything else, including structs such as time.Time, pointers and []byte,
// is a leaf.
package container

import (
	"iter"
	"reflect"
	"sort"
	"strconv"
)

// IsTraversable reports whether v is a plain container with enumerable
// entries. It never panics and has no side effects.
func IsTraversable(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case *Object:
		return t != nil
	case map[string]any, []any:
		return true
	case []byte, string:
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive // only container kinds are traversable
	case reflect.Map:
		return rv.Type().Key().Kind() == reflect.String
	case reflect.Slice, reflect.Array:
		return rv.Type().Elem().Kind() != reflect.Uint8
	default:
		return false
	}
}

// IsArray reports whether v is a traversable array or slice, whose keys are
// decimal indices.
func IsArray(v any) bool {
	if _, ok := v.([]any); ok {
		return true
	}
	if !IsTraversable(v) {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// Len returns the number of entries of a traversable value and 0 otherwise.
func Len(v any) int {
	switch t := v.(type) {
	case *Object:
		return t.Len()
	case map[string]any:
		return len(t)
	case []any:
		return len(t)
	}
	if !IsTraversable(v) {
		return 0
	}
	return reflect.ValueOf(v).Len()
}

// Each calls fn for every own entry of v in declaration order, stopping early
// when fn returns false. Objects keep insertion order, arrays use decimal
// indices and Go maps, which carry no order, are visited by ascending key.
// Non-traversable values have no entries.
func Each(v any, fn func(key string, child any) bool) {
	switch t := v.(type) {
	case *Object:
		if t == nil {
			return
		}
		for _, k := range t.keys {
			if !fn(k, t.values[k]) {
				return
			}
		}
		return
	case map[string]any:
		for _, k := range sortedKeys(t) {
			if !fn(k, t[k]) {
				return
			}
		}
		return
	case []any:
		for i, child := range t {
			if !fn(strconv.Itoa(i), child) {
				return
			}
		}
		return
	}
	if !IsTraversable(v) {
		return
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive // IsTraversable already narrowed the kinds
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		for _, k := range keys {
			if !fn(k.String(), rv.MapIndex(k).Interface()) {
				return
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if !fn(strconv.Itoa(i), rv.Index(i).Interface()) {
				return
			}
		}
	}
}

// All returns the entries of v as a sequence of key/child pairs, in the same
// order as Each.
func All(v any) iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		Each(v, yield)
	}
}

// Get looks up a single key. Array keys must be canonical decimal indices
// ("1", not "01" or "+1").
func Get(v any, key string) (any, bool) {
	switch t := v.(type) {
	case *Object:
		return t.Get(key)
	case map[string]any:
		child, ok := t[key]
		return child, ok
	case []any:
		idx, ok := index(key, len(t))
		if !ok {
			return nil, false
		}
		return t[idx], true
	}
	if !IsTraversable(v) {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() { //nolint:exhaustive // IsTraversable already narrowed the kinds
	case reflect.Map:
		child := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !child.IsValid() {
			return nil, false
		}
		return child.Interface(), true
	case reflect.Slice, reflect.Array:
		idx, ok := index(key, rv.Len())
		if !ok {
			return nil, false
		}
		return rv.Index(idx).Interface(), true
	}
	return nil, false
}

// ToPlain deep-converts Objects into map[string]any so values can be handed
// to code that only understands plain Go maps. Maps and slices are copied;
// scalars are returned unchanged.
func ToPlain(v any) any {
	switch t := v.(type) {
	case *Object:
		if t == nil {
			return nil
		}
		m := make(map[string]any, len(t.keys))
		for _, k := range t.keys {
			m[k] = ToPlain(t.values[k])
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, child := range t {
			m[k] = ToPlain(child)
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = ToPlain(child)
		}
		return out
	default:
		return v
	}
}

func index(key string, length int) (int, bool) {
	idx, err := strconv.Atoi(key)
	if err != nil || idx < 0 || idx >= length || strconv.Itoa(idx) != key {
		return 0, false
	}
	return idx, true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
