package model

import (
	"errors"
	"fmt"
)

// ErrInvalidKey is returned when a lookup field other than "url" or "title"
// is requested.
var ErrInvalidKey = errors.New("invalid key")

// Key is the bookmark field used for grouping and searching.
type Key string

const (
	KeyURL   Key = "url"
	KeyTitle Key = "title"
)

// ParseKey validates a key name.
func ParseKey(s string) (Key, error) {
	switch Key(s) {
	case KeyURL, KeyTitle:
		return Key(s), nil
	}
	return "", fmt.Errorf("%w: expected \"url\" or \"title\", got %q", ErrInvalidKey, s)
}

// Value returns the node's raw value for the key.
func (k Key) Value(n *Node) string {
	if k == KeyURL {
		return n.URLString()
	}
	return n.Title
}
