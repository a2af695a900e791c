package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Key identifies a cache entry. Elements are strings or numbers; numbers of
// different Go types with the same value name the same entry.
type Key []any

// K builds a Key.
func K(parts ...any) Key { return Key(parts) }

func (k Key) parts() []string {
	out := make([]string, len(k))
	for i, p := range k {
		raw, err := json.Marshal(p)
		if err != nil {
			raw = []byte(fmt.Sprintf("%q", fmt.Sprint(p)))
		}
		out[i] = string(raw)
	}
	return out
}

func (k Key) hash() string {
	return strings.Join(k.parts(), "\x1f")
}

// String renders the key for logs.
func (k Key) String() string {
	return "[" + strings.Join(k.parts(), ",") + "]"
}

// HasPrefix reports whether the first len(prefix) elements of k equal prefix.
func (k Key) HasPrefix(prefix Key) bool {
	return hasPrefix(k.parts(), prefix.parts())
}

func hasPrefix(parts, prefix []string) bool {
	if len(prefix) > len(parts) {
		return false
	}
	for i := range prefix {
		if parts[i] != prefix[i] {
			return false
		}
	}
	return true
}
