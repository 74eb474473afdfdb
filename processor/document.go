package processor

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ZaguanLabs/tlunit"
	"github.com/ZaguanLabs/tlunit/blacklist"
)

// Flatten returns every string leaf of doc keyed by its path, with property
// names joined by tlunit.KeySeparator and array elements keyed by index.
// Leaves whose public key ends with one of the blacklist patterns are left
// out. Numbers, booleans and nulls are not text and are never emitted.
func Flatten(doc any, patterns []string) map[string]string {
	entries := FlattenEntries(doc, patterns)
	flat := make(map[string]string, len(entries))
	for _, e := range entries {
		flat[e.Key] = e.Value
	}
	return flat
}

// FlattenEntries is Flatten in document order.
func FlattenEntries(doc any, patterns []string) []tlunit.Entry {
	var entries []tlunit.Entry
	walkStrings(doc, nil, func(path []string, value string) {
		key := pathKey(path)
		if blacklist.Matches(key, patterns) {
			return
		}
		entries = append(entries, tlunit.Entry{Key: key, Value: value})
	})
	return entries
}

// walkStrings calls fn for every string leaf below v. A top-level string has
// no path and is not a leaf.
func walkStrings(v any, path []string, fn func(path []string, value string)) {
	if obj, ok := objectOf(v); ok {
		for _, k := range obj.Keys() {
			child, _ := obj.Get(k)
			walkChild(child, childPath(path, k), fn)
		}
		return
	}
	if arr, ok := v.([]any); ok {
		for i, child := range arr {
			walkChild(child, childPath(path, strconv.Itoa(i)), fn)
		}
	}
}

func walkChild(v any, path []string, fn func(path []string, value string)) {
	if s, ok := v.(string); ok {
		fn(path, s)
		return
	}
	walkStrings(v, path, fn)
}

// childPath extends path without sharing its backing array with siblings.
func childPath(path []string, name string) []string {
	return append(path[:len(path):len(path)], name)
}

// pathKey joins a property path with tlunit.KeySeparator. An empty property
// name still takes its own segment, so {"": {"a": ..}} flattens to ":::a".
func pathKey(path []string) string {
	return strings.Join(path, tlunit.KeySeparator)
}

// Unflatten rebuilds a nested document from flattened keys. Every level is
// an object, including levels that were arrays before flattening; Overlay
// keeps the original shape instead. Keys are inserted in sorted order.
func Unflatten(flat map[string]string) *Object {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]tlunit.Entry, len(keys))
	for i, k := range keys {
		entries[i] = tlunit.Entry{Key: k, Value: flat[k]}
	}
	return UnflattenEntries(entries)
}

// UnflattenEntries is Unflatten keeping the order of entries.
func UnflattenEntries(entries []tlunit.Entry) *Object {
	root := NewObject()
	for _, e := range entries {
		parts := strings.Split(e.Key, tlunit.KeySeparator)
		cur := root
		for _, part := range parts[:len(parts)-1] {
			next, ok := cur.Get(part)
			child, isObj := next.(*Object)
			if !ok || !isObj {
				child = NewObject()
				cur.Set(part, child)
			}
			cur = child
		}
		cur.Set(parts[len(parts)-1], e.Value)
	}
	return root
}

// Overlay returns a deep copy of doc with string leaves replaced by the
// non-empty values of flat at the same path. Paths absent from doc are
// ignored, and arrays, numbers, booleans and nulls keep their shape.
func Overlay(doc any, flat map[string]string) any {
	return overlay(doc, nil, flat)
}

func overlay(v any, path []string, flat map[string]string) any {
	if s, ok := v.(string); ok {
		if len(path) > 0 {
			if t, ok := flat[pathKey(path)]; ok && t != "" {
				return t
			}
		}
		return s
	}
	if obj, ok := objectOf(v); ok {
		out := NewObject()
		for _, k := range obj.Keys() {
			child, _ := obj.Get(k)
			out.Set(k, overlay(child, childPath(path, k), flat))
		}
		return out
	}
	if arr, ok := v.([]any); ok {
		out := make([]any, len(arr))
		for i, child := range arr {
			out[i] = overlay(child, childPath(path, strconv.Itoa(i)), flat)
		}
		return out
	}
	return v
}

// CheckKeys reports the first property whose flattened key does not split
// back into the path it came from. That happens when a name contains
// tlunit.KeySeparator, or when a colon at the edge of a name runs into the
// separator, and it makes two distinct paths flatten to the same key.
func CheckKeys(doc any) error {
	var walk func(v any, path []string) error
	walk = func(v any, path []string) error {
		if obj, ok := objectOf(v); ok {
			for _, k := range obj.Keys() {
				p := childPath(path, k)
				if !splitsBack(p) {
					return &tlunit.PathCollisionError{Key: tlunit.PublicKey(pathKey(p))}
				}
				child, _ := obj.Get(k)
				if err := walk(child, p); err != nil {
					return err
				}
			}
			return nil
		}
		if arr, ok := v.([]any); ok {
			for i, child := range arr {
				if err := walk(child, childPath(path, strconv.Itoa(i))); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return walk(doc, nil)
}

func splitsBack(path []string) bool {
	parts := strings.Split(pathKey(path), tlunit.KeySeparator)
	if len(parts) != len(path) {
		return false
	}
	for i := range parts {
		if parts[i] != path[i] {
			return false
		}
	}
	return true
}

// IsBabele reports whether doc looks like a Babele compendium translation:
// a label plus entries or a mapping.
func IsBabele(doc any) bool {
	obj, ok := objectOf(doc)
	if !ok {
		return false
	}
	_, hasLabel := obj.Get("label")
	_, hasEntries := obj.Get("entries")
	_, hasMapping := obj.Get("mapping")
	return hasLabel && (hasEntries || hasMapping)
}
