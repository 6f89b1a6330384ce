package model

import (
	"encoding/json"
	"strings"
)

// RawNode is a bookmark tree node as handed out by the external store.
// Every field is optional; per-browser variations are tolerated.
type RawNode struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	URL          *string    `json:"url,omitempty"`
	DateAdded    int64      `json:"dateAdded,omitempty"`
	Type         string     `json:"type,omitempty"`
	Unmodifiable Flag       `json:"unmodifiable,omitempty"`
	Children     []*RawNode `json:"children,omitempty"`
}

// Flag decodes the unmodifiable marker, which is a bool in some stores and
// a reason string ("managed") in others.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = Flag(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = Flag(s != "")
		return nil
	}
	// null or anything else
	*f = false
	return nil
}

const separatorType = "separator"

// Normalize converts raw nodes into the normalized tree.
// Separators are dropped entirely; every other node is kept and folders are
// normalized recursively. A node carrying both a URL and children is kept as
// a bookmark.
func Normalize(raw []*RawNode) Tree {
	out := make(Tree, 0, len(raw))
	for _, r := range raw {
		if r == nil || strings.EqualFold(r.Type, separatorType) {
			continue
		}
		n := &Node{
			ID:           r.ID,
			Title:        r.Title,
			DateAdded:    r.DateAdded,
			Unmodifiable: bool(r.Unmodifiable),
		}
		if r.URL != nil {
			url := *r.URL
			n.URL = &url
		}
		if len(r.Children) > 0 {
			n.Children = Normalize(r.Children)
		}
		if n.IsFolder() && n.Children == nil {
			n.Children = []*Node{}
		}
		out = append(out, n)
	}
	return out
}

// RootChildren unwraps a snapshot that consists of a single untitled root
// node, the way browsers return getTree(). Anything else is returned as is.
func RootChildren(raw []*RawNode) []*RawNode {
	if len(raw) == 1 && raw[0] != nil && raw[0].URL == nil && raw[0].Title == "" && raw[0].Children != nil {
		return raw[0].Children
	}
	return raw
}
