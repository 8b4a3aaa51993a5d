package stache

import (
	"fmt"
	"strings"
)

// Key is a parsed Mustache lookup path: either the implicit iterator "."
// or a non-empty sequence of dotted segments.
type Key struct {
	Segments []string
	Implicit bool
}

func (k Key) String() string {
	if k.Implicit {
		return "."
	}
	return strings.Join(k.Segments, ".")
}

// Equal reports whether two keys name the same path. Used by the parser to
// match a Close tag's key against the section it's closing.
func (k Key) Equal(other Key) bool {
	if k.Implicit != other.Implicit {
		return false
	}
	if len(k.Segments) != len(other.Segments) {
		return false
	}
	for i, s := range k.Segments {
		if s != other.Segments[i] {
			return false
		}
	}
	return true
}

// ParseKey splits and validates a raw key against the delimiter pair
// active when its tag was lexed. A lone "." is the implicit iterator;
// otherwise the key is split on "." and every segment must be non-empty
// and free of whitespace, "{", "}", "=", and the active delimiters.
func ParseKey(raw, open, close string) (Key, error) {
	if raw == "." {
		return Key{Implicit: true}, nil
	}
	if raw == "" {
		return Key{}, &Error{Kind: ErrEmptyKey, Message: "key must not be empty"}
	}

	segments := strings.Split(raw, ".")
	for _, seg := range segments {
		if seg == "" {
			return Key{}, &Error{Kind: ErrInvalidKey, Message: fmt.Sprintf("key %q has an empty segment", raw)}
		}
		if (open != "" && strings.Contains(seg, open)) || (close != "" && strings.Contains(seg, close)) {
			return Key{}, &Error{Kind: ErrInvalidKey, Message: fmt.Sprintf("key %q contains the active delimiter", raw)}
		}
		for _, r := range seg {
			switch r {
			case ' ', '\t', '\n', '\r', '{', '}', '=':
				return Key{}, &Error{Kind: ErrInvalidKey, Message: fmt.Sprintf("key %q contains an invalid character %q", raw, r)}
			}
		}
	}
	return Key{Segments: segments}, nil
}
