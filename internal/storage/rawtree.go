package storage

import "github.com/nikbrunner/burst/internal/model"

// findRaw returns the node with id, searching depth-first.
func findRaw(nodes []*model.RawNode, id string) *model.RawNode {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if n.ID == id {
			return n
		}
		if found := findRaw(n.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// removeRaw drops the node with id (and its subtree).
func removeRaw(nodes []*model.RawNode, id string) ([]*model.RawNode, bool) {
	for i, n := range nodes {
		if n == nil {
			continue
		}
		if n.ID == id {
			out := make([]*model.RawNode, 0, len(nodes)-1)
			out = append(out, nodes[:i]...)
			return append(out, nodes[i+1:]...), true
		}
		if children, ok := removeRaw(n.Children, id); ok {
			n.Children = children
			return nodes, true
		}
	}
	return nodes, false
}

// applyFields validates and applies a title/url change.
func applyFields(n *model.RawNode, fields model.Fields) error {
	if n.Unmodifiable {
		return ErrUnmodifiable
	}
	if fields.URL != nil && n.URL == nil {
		return ErrFolderURL
	}
	if fields.Title != nil {
		n.Title = *fields.Title
	}
	if fields.URL != nil {
		url := *fields.URL
		n.URL = &url
	}
	return nil
}

// detached copies a node without its children, for returning to callers.
func detached(n *model.RawNode) *model.RawNode {
	out := *n
	out.Children = nil
	if n.URL != nil {
		url := *n.URL
		out.URL = &url
	}
	return &out
}
