package domain

import "unique"

// PathKey is an interned absolute path. Keys are cheap to copy and compare,
// which lets the node table reference parents and children by key instead of
// by pointer. The zero key refers to nothing.
type PathKey struct {
	h unique.Handle[string]
}

// KeyFor interns a path and returns its key.
func KeyFor(path string) PathKey {
	return PathKey{h: unique.Make(path)}
}

// String returns the underlying path, or "" for the zero key.
func (k PathKey) String() string {
	if k.IsZero() {
		return ""
	}
	return k.h.Value()
}

// IsZero reports whether the key refers to nothing.
func (k PathKey) IsZero() bool {
	return k.h == (unique.Handle[string]{})
}
